package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/osutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest"
)

var scanStrategy *string

func init() {
	scanStrategy = scanCmd.Flags().String(
		"strategy", "manifest",
		"How to discover documents: manifest, domscan or intercept.",
	)
	rootCmd.AddCommand(scanCmd)
}

func createDiscovery(cmd *cobra.Command, cfg Config, client *shaarolami.Client) (shaarolami.Discovery, browser.Browser) {
	switch *scanStrategy {
	case "manifest":
		entries := cfg.Manifest
		if len(entries) == 0 {
			entries = shaarolami.DefaultManifest()
		}
		return shaarolami.NewManifestDiscovery(entries), nil
	case "domscan":
		b := openBrowser(cmd.Context(), client, cfg.Portal.Origin)
		return shaarolami.NewDOMScanDiscovery(b, cfg.Portal.Origin, shaarolami.DOMScanOptions{
			Recognizers:       recognizers(cfg.Portal),
			DownloadToken:     cfg.Portal.DownloadToken,
			AcceptForeignTabs: cfg.Portal.AcceptForeignTabs,
		}), b
	case "intercept":
		b := openBrowser(cmd.Context(), client, cfg.Portal.Origin)
		return shaarolami.NewInterceptDiscovery(b, cfg.Portal.Origin, shaarolami.InterceptOptions{
			Recognizers:       recognizers(cfg.Portal),
			DownloadToken:     cfg.Portal.DownloadToken,
			AcceptForeignTabs: cfg.Portal.AcceptForeignTabs,
		}), b
	default:
		osutil.Fatal("unknown strategy", fmt.Errorf("%q is not one of manifest, domscan, intercept", *scanStrategy))
		return nil, nil
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan [--strategy <manifest|domscan|intercept>]",
	Short: "Discovers customs book documents and ingests the new ones.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		s := openStore(cfg.Store)
		defer s.Close()
		client := createClient(cmd.Context(), cfg)

		discovery, b := createDiscovery(cmd, cfg, client)
		if b != nil {
			defer b.Close()
		}

		pipeline := ingest.Pipeline{
			Store:     s,
			Discovery: discovery,
			Retriever: client,
			Browser:   b,
			Origin:    cfg.Portal.Origin,
		}

		t1 := time.Now()
		summary := pipeline.Run(cmd.Context())
		slog.Info("scan time", "seconds", time.Since(t1).Seconds())

		printSummary(summary)
	},
}
