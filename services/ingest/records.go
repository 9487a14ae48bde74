// Package ingest orchestrates one scan run: discovery, the existence
// gate, retrieval, classification and store writes, with per-run
// counters and a final audit record.
package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
)

const (
	CollectionDocuments    = "documents"
	CollectionChapters     = "chapters"
	CollectionRunSummaries = "run_summaries"

	// SourceTag identifies this pipeline in every record it writes.
	SourceTag = "rpa-port-customs-scanner"

	mimePdf = "application/pdf"

	// the store chokes on unbounded arrays, keep the first thousand
	// codes and record the true count separately
	maxStoredCodes = 1000
)

type IngestedDocument struct {
	Name         string
	SizeBytes    int
	Category     shaarolami.Category
	BlobLocation string
	UploadedAt   time.Time
}

func (d IngestedDocument) Fields() store.Record {
	return store.Record{
		"name":          d.Name,
		"size_bytes":    d.SizeBytes,
		"mime_type":     mimePdf,
		"category":      string(d.Category),
		"blob_location": d.BlobLocation,
		"uploaded_at":   d.UploadedAt.Unix(),
		"source":        SourceTag,
	}
}

// ChapterSource names which customs book the chapter sweep walked.
type ChapterSource string

const (
	SourceImport   ChapterSource = "import"
	SourceExport   ChapterSource = "export"
	SourceAutonomy ChapterSource = "autonomy"
)

type ChapterRecord struct {
	ChapterId   string
	ChapterName string
	Source      ChapterSource
	Content     string
	HSCodes     []string
	CodeCount   int
	ScannedAt   time.Time
}

func (c ChapterRecord) Key() store.Record {
	return store.Record{
		"source":     string(c.Source),
		"chapter_id": c.ChapterId,
	}
}

func (c ChapterRecord) Fields() store.Record {
	content := c.Content
	if len([]rune(content)) > store.MaxTextField {
		content = string([]rune(content)[:store.MaxTextField])
	}
	codes := c.HSCodes
	if len(codes) > maxStoredCodes {
		codes = codes[:maxStoredCodes]
	}
	encoded, err := json.Marshal(codes)
	if err != nil {
		encoded = []byte("[]")
	}
	return store.Record{
		"chapter_name":  c.ChapterName,
		"content":       content,
		"hs_codes":      string(encoded),
		"hs_code_count": c.CodeCount,
		"scanned_at":    c.ScannedAt.Unix(),
	}
}

// Summary holds one run's outcome counters. Uploaded doubles as
// "saved" for chapter runs.
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
}

func (s Summary) fields(finishedAt time.Time) store.Record {
	return store.Record{
		"id":          uuid.NewString(),
		"uploaded":    s.Uploaded,
		"skipped":     s.Skipped,
		"failed":      s.Failed,
		"finished_at": finishedAt.Unix(),
	}
}
