package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
)

var tracer = otel.Tracer("customs-scanner.services.ingest")

var errDiscoveryMiss = errors.New("candidate did not resolve to a locator")

// Retriever fetches raw document bytes for a candidate locator.
type Retriever interface {
	Retrieve(ctx context.Context, url string) ([]byte, error)
}

// Pipeline processes candidates strictly sequentially: the portal
// trips on concurrent automation and the browser session is shared
// state. All collaborators are injected, nothing is looked up from
// package globals.
type Pipeline struct {
	Store     store.Store
	Discovery shaarolami.Discovery
	Retriever Retriever
	// Browser, when set, is navigated back to Origin after any
	// candidate that dragged the session off the origin page, so the
	// next DOM match sees a clean document.
	Browser browser.Browser
	Origin  string
}

// Run drains the discovery sequence, ingesting each candidate to
// completion before the next. Per-candidate errors become counter
// increments, they never abort the run. The final summary write is
// best effort.
func (p Pipeline) Run(ctx context.Context) Summary {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	var summary Summary
	for {
		candidate, err := p.Discovery.Next(ctx)
		if errors.Is(err, shaarolami.ErrExhausted) {
			break
		}
		if err != nil {
			slog.ErrorContext(ctx, "discovery failed, ending run", "err", err)
			break
		}

		err = p.ingest(ctx, candidate)
		switch {
		case errors.Is(err, errAlreadyIngested):
			summary.Skipped++
			slog.InfoContext(ctx, "skipped", "candidate", candidate.DisplayName)
		case err != nil:
			summary.Failed++
			slog.ErrorContext(ctx, "failed", "candidate", candidate.DisplayName, "err", err)
		default:
			summary.Uploaded++
			slog.InfoContext(ctx, "uploaded", "candidate", candidate.DisplayName)
		}

		p.resetOrigin(ctx)
	}

	span.SetAttributes(
		attribute.Int("uploaded", summary.Uploaded),
		attribute.Int("skipped", summary.Skipped),
		attribute.Int("failed", summary.Failed),
	)
	p.writeSummary(ctx, summary)
	return summary
}

var errAlreadyIngested = errors.New("already ingested")

func (p Pipeline) ingest(ctx context.Context, candidate shaarolami.Candidate) error {
	ctx, span := tracer.Start(ctx, "Pipeline.ingest")
	defer span.End()
	span.SetAttributes(attribute.String("candidate", candidate.DisplayName))

	name := candidate.NormalizedFileName()

	// gate before retrieval, a skipped candidate must cost no fetch
	if DocumentExists(ctx, p.Store, name) {
		return errAlreadyIngested
	}

	if candidate.URL == "" {
		return errDiscoveryMiss
	}

	data, err := p.Retriever.Retrieve(ctx, candidate.URL)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	category := shaarolami.Classify(name)

	blobRef, err := p.Store.PutBlob(ctx, "documents/"+name, data, mimePdf)
	if err != nil {
		return fmt.Errorf("put blob: %w", err)
	}

	// blob-then-metadata is not transactional: a failure here leaves
	// an orphaned blob behind, which is accepted and not compensated
	_, err = p.Store.Insert(ctx, CollectionDocuments, IngestedDocument{
		Name:         name,
		SizeBytes:    len(data),
		Category:     category,
		BlobLocation: p.Store.PublicURL(blobRef),
		UploadedAt:   time.Now(),
	}.Fields())
	if err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}
	return nil
}

func (p Pipeline) resetOrigin(ctx context.Context) {
	if p.Browser == nil || p.Origin == "" {
		return
	}
	if p.Browser.Location() == p.Origin {
		return
	}
	err := p.Browser.Navigate(ctx, p.Origin)
	if err != nil {
		slog.WarnContext(ctx, "failed to renavigate to origin", "origin", p.Origin, "err", err)
	}
}

func (p Pipeline) writeSummary(ctx context.Context, summary Summary) {
	_, err := p.Store.Insert(ctx, CollectionRunSummaries, summary.fields(time.Now()))
	if err != nil {
		// the audit record is best effort, its failure never changes
		// the run's outcome
		slog.WarnContext(ctx, "failed to write run summary", "err", err)
	}
}
