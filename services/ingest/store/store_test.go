package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/testutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store/db"
)

func setupStore(t *testing.T) *SqliteStore {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest/store",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	blobDir, err := os.MkdirTemp("", "blobs")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(blobDir) })

	return NewSqliteStore(result.DB, blobDir, "")
}

func TestInsertAndFindByField(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "documents", Record{
		"name":          "Section_I.pdf",
		"size_bytes":    2000,
		"mime_type":     "application/pdf",
		"category":      "tariff",
		"blob_location": "documents/Section_I.pdf",
		"uploaded_at":   1700000000,
		"source":        "rpa-port-customs-scanner",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.FindByField(ctx, "documents", "name", "Section_I.pdf")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tariff", records[0]["category"])

	records, err = s.FindByField(ctx, "documents", "name", "Section_II.pdf")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestInsertPropagatesBackendError(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.Close())

	id, err := s.Insert(context.Background(), "run_summaries", Record{
		"id": "run-1", "uploaded": 0, "skipped": 0, "failed": 0, "finished_at": 0,
	})
	require.Error(t, err)
	require.Empty(t, id)
}

func TestFindByFieldRejectsUnknownNames(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.FindByField(ctx, "documents; DROP TABLE documents", "name", "x")
	require.Error(t, err)

	_, err = s.FindByField(ctx, "documents", "name = name OR 1", "x")
	require.Error(t, err)
}

func TestUpsertChapters(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	key := Record{"source": "import", "chapter_id": "85"}

	err := s.Upsert(ctx, "chapters", key, Record{
		"chapter_name":  "מכונות חשמליות",
		"content":       "first scan",
		"hs_codes":      `["8504409000"]`,
		"hs_code_count": 1,
		"scanned_at":    1700000000,
	})
	require.NoError(t, err)

	err = s.Upsert(ctx, "chapters", key, Record{
		"chapter_name":  "מכונות חשמליות",
		"content":       "second scan",
		"hs_codes":      `["8504409000","8504401000"]`,
		"hs_code_count": 2,
		"scanned_at":    1700000500,
	})
	require.NoError(t, err)

	records, err := s.FindByField(ctx, "chapters", "chapter_id", "85")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "second scan", records[0]["content"])
	require.EqualValues(t, 2, records[0]["hs_code_count"])
}

func TestUpsertAppendOnlyCollection(t *testing.T) {
	s := setupStore(t)

	err := s.Upsert(context.Background(), "documents", Record{"name": "x"}, Record{})
	require.Error(t, err)
}

func TestPutBlob(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	ref, err := s.PutBlob(ctx, "documents/Section_I.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	stored, err := os.ReadFile(s.PublicURL(ref))
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4"), stored)
}

func TestPublicURLWithBase(t *testing.T) {
	s := NewSqliteStore(nil, "", "https://cdn.example.com/scans/")
	require.Equal(
		t,
		"https://cdn.example.com/scans/documents/Section_I.pdf",
		s.PublicURL(BlobRef("documents/Section_I.pdf")),
	)
}
