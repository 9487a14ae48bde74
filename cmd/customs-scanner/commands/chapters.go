package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/osutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest"
)

var chapterSource *string

func init() {
	chapterSource = chaptersCmd.Flags().String(
		"source", "import",
		"Which customs book to sweep: import, export or autonomy.",
	)
	rootCmd.AddCommand(chaptersCmd)
}

func parseSource(raw string) ingest.ChapterSource {
	switch raw {
	case "import":
		return ingest.SourceImport
	case "export":
		return ingest.SourceExport
	case "autonomy":
		return ingest.SourceAutonomy
	}
	osutil.Fatal("unknown source", fmt.Errorf("%q is not one of import, export, autonomy", raw))
	return ""
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters [--source <import|export|autonomy>]",
	Short: "Sweeps tariff chapter pages and snapshots their text and HS codes.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		source := parseSource(*chapterSource)
		s := openStore(cfg.Store)
		defer s.Close()
		client := createClient(cmd.Context(), cfg)

		discovery := shaarolami.NewEnumerationDiscovery(client, shaarolami.EnumerationOptions{
			DetailUrlTemplate: cfg.Enumeration.DetailUrlTemplate,
			IndexUrl:          cfg.Enumeration.IndexUrl,
			IndexIdPattern:    cfg.Enumeration.IndexIdPattern,
			SeedIds:           cfg.Enumeration.SeedIds,
			RangeStart:        cfg.Enumeration.RangeStart,
			RangeEnd:          cfg.Enumeration.RangeEnd,
			MinTextLen:        cfg.Enumeration.MinTextLen,
			Delay:             time.Duration(cfg.Enumeration.DelayMs) * time.Millisecond,
			JitterMs:          cfg.Enumeration.JitterMs,
		})

		pipeline := ingest.ChapterPipeline{
			Store:     s,
			Discovery: discovery,
			Source:    source,
		}

		t1 := time.Now()
		summary := pipeline.Run(cmd.Context())
		slog.Info("sweep time", "seconds", time.Since(t1).Seconds(), "source", source)

		printSummary(summary)
	},
}
