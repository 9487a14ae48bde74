package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
)

// ChapterDiscovery yields populated chapter pages, already fetched and
// text-projected, until shaarolami.ErrExhausted.
type ChapterDiscovery interface {
	Next(ctx context.Context) (shaarolami.ChapterPage, error)
}

// ChapterPipeline is the HTML-extraction mode: instead of ingesting
// PDF artifacts it snapshots tariff chapter pages as text plus HS
// codes, keyed by (source, chapter id). Writes are upserts, a rescan
// refreshes the snapshot rather than duplicating it.
type ChapterPipeline struct {
	Store     store.Store
	Discovery ChapterDiscovery
	Source    ChapterSource
}

func (p ChapterPipeline) Run(ctx context.Context) Summary {
	ctx, span := tracer.Start(ctx, "ChapterPipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(p.Source)))

	var summary Summary
	for {
		page, err := p.Discovery.Next(ctx)
		if errors.Is(err, shaarolami.ErrExhausted) {
			break
		}
		if err != nil {
			slog.ErrorContext(ctx, "chapter discovery failed, ending run", "err", err)
			break
		}

		err = p.save(ctx, page)
		if err != nil {
			summary.Failed++
			slog.ErrorContext(ctx, "failed", "chapter", page.ID, "err", err)
			continue
		}
		summary.Uploaded++
		slog.InfoContext(ctx, "saved", "chapter", page.ID, "codes", page.CodeCount)
	}

	p.writeSummary(ctx, summary)
	return summary
}

func (p ChapterPipeline) save(ctx context.Context, page shaarolami.ChapterPage) error {
	record := ChapterRecord{
		ChapterId:   strconv.FormatInt(page.ID, 10),
		ChapterName: page.Name,
		Source:      p.Source,
		Content:     page.Content,
		HSCodes:     page.HSCodes,
		CodeCount:   page.CodeCount,
		ScannedAt:   time.Now(),
	}
	err := p.Store.Upsert(ctx, CollectionChapters, record.Key(), record.Fields())
	if err != nil {
		return fmt.Errorf("upsert chapter: %w", err)
	}
	return nil
}

func (p ChapterPipeline) writeSummary(ctx context.Context, summary Summary) {
	_, err := p.Store.Insert(ctx, CollectionRunSummaries, summary.fields(time.Now()))
	if err != nil {
		slog.WarnContext(ctx, "failed to write run summary", "err", err)
	}
}
