package commands

import (
	"context"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	_ "modernc.org/sqlite"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/configutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/osutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/restyutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/sqliteutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store/db"
)

type PortalConfig struct {
	BaseUrl string `json:"base_url"`
	// Origin is the attachment listing page the DOM strategies scan.
	Origin string `json:"origin"`
	// DownloadToken marks download routes in intercepted URLs, e.g.
	// "CustomsBook/Attachment".
	DownloadToken    string `json:"download_token"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	MinDocumentBytes int    `json:"min_document_bytes"`
	// Labels are extra document link texts to recognize on top of the
	// roman numeral section labels.
	Labels []string `json:"labels"`
	// AcceptForeignTabs also takes unsolicited new tabs as document
	// sources. The portal sometimes opens unrelated ones, off by
	// default.
	AcceptForeignTabs bool `json:"accept_foreign_tabs"`
}

type StoreConfig struct {
	Database   sqliteutil.Config `json:"database"`
	BlobDir    string            `json:"blob_dir"`
	PublicBase string            `json:"public_base"`
}

type EnumerationConfig struct {
	DetailUrlTemplate string  `json:"detail_url_template"`
	IndexUrl          string  `json:"index_url"`
	IndexIdPattern    string  `json:"index_id_pattern"`
	SeedIds           []int64 `json:"seed_ids"`
	RangeStart        int64   `json:"range_start"`
	RangeEnd          int64   `json:"range_end"`
	MinTextLen        int     `json:"min_text_len"`
	DelayMs           int     `json:"delay_ms"`
	JitterMs          int     `json:"jitter_ms"`
}

type Config struct {
	Portal PortalConfig `json:"portal"`
	Store  StoreConfig  `json:"store"`
	// Manifest overrides the built-in known document list when set.
	Manifest    []shaarolami.ManifestEntry `json:"manifest"`
	Enumeration EnumerationConfig          `json:"enumeration"`
	// Debug dumps every portal request and response to .dev/resty.
	Debug bool `json:"debug"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openStore(cfg StoreConfig) *store.SqliteStore {
	sqlite, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		osutil.Fatal("failed to open metadata store", err)
	}
	return store.NewSqliteStore(sqlite, cfg.BlobDir, cfg.PublicBase)
}

func createClient(ctx context.Context, cfg Config) *shaarolami.Client {
	client, err := shaarolami.NewClient(ctx, shaarolami.ClientOptions{
		BaseUrl:          cfg.Portal.BaseUrl,
		Timeout:          time.Duration(cfg.Portal.TimeoutSeconds) * time.Second,
		MinDocumentBytes: cfg.Portal.MinDocumentBytes,
	})
	if err != nil {
		osutil.Fatal("failed to initialize portal client", err)
	}
	if cfg.Debug {
		client.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/customs-scanner"))
	}
	return client
}

func recognizers(cfg PortalConfig) []shaarolami.Recognizer {
	out := []shaarolami.Recognizer{shaarolami.RomanNumeral()}
	for _, label := range cfg.Labels {
		out = append(out, shaarolami.ExactLabel(label))
	}
	return out
}

func openBrowser(ctx context.Context, client *shaarolami.Client, origin string) browser.Browser {
	b := browser.NewStaticBrowser(client.Http)
	err := b.Navigate(ctx, origin)
	if err != nil {
		osutil.Fatal("failed to open origin page", err)
	}
	return b
}

func printSummary(summary ingest.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Uploaded", "Skipped", "Failed"})
	t.AppendRow(table.Row{summary.Uploaded, summary.Skipped, summary.Failed})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
