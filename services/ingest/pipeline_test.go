package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/testutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store/db"
)

func setupStore(t *testing.T) *store.SqliteStore {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	blobDir, err := os.MkdirTemp("", "blobs")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(blobDir) })

	return store.NewSqliteStore(result.DB, blobDir, "")
}

type fakeDiscovery struct {
	candidates []shaarolami.Candidate
	index      int
}

func (d *fakeDiscovery) Next(ctx context.Context) (shaarolami.Candidate, error) {
	if d.index >= len(d.candidates) {
		return shaarolami.Candidate{}, shaarolami.ErrExhausted
	}
	c := d.candidates[d.index]
	d.index++
	return c, nil
}

type fakeRetriever struct {
	payloads map[string][]byte
	calls    int
}

func (r *fakeRetriever) Retrieve(ctx context.Context, url string) ([]byte, error) {
	r.calls++
	payload, ok := r.payloads[url]
	if !ok {
		return nil, fmt.Errorf("retrieve %s: %w", url, shaarolami.ErrUndersizedPayload)
	}
	return payload, nil
}

func TestPipelineEndToEnd(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	retriever := &fakeRetriever{payloads: map[string][]byte{
		// section II's payload is under the document size floor, the
		// retriever rejects it
		"https://portal/Section_I.pdf": make([]byte, 2000),
	}}
	pipeline := Pipeline{
		Store: s,
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "I", URL: "https://portal/Section_I.pdf"},
			{DisplayName: "II", URL: "https://portal/Section_II.pdf"},
		}},
		Retriever: retriever,
	}

	summary := pipeline.Run(ctx)
	require.Equal(t, Summary{Uploaded: 1, Skipped: 0, Failed: 1}, summary)

	records, err := s.FindByField(ctx, CollectionDocuments, "name", "Section_I.pdf")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.EqualValues(t, 2000, records[0]["size_bytes"])
	require.Equal(t, "tariff", records[0]["category"])
	require.Equal(t, SourceTag, records[0]["source"])

	records, err = s.FindByField(ctx, CollectionDocuments, "name", "Section_II.pdf")
	require.NoError(t, err)
	require.Empty(t, records)

	// one run summary was appended
	summaries, err := s.FindByField(ctx, CollectionRunSummaries, "uploaded", 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.EqualValues(t, 1, summaries[0]["failed"])
}

func TestPipelineSkipsExistingWithoutRetrieval(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, CollectionDocuments, IngestedDocument{
		Name:         "Section_I.pdf",
		SizeBytes:    2000,
		Category:     shaarolami.CategoryTariff,
		BlobLocation: "documents/Section_I.pdf",
	}.Fields())
	require.NoError(t, err)

	retriever := &fakeRetriever{payloads: map[string][]byte{}}
	pipeline := Pipeline{
		Store: s,
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "I", URL: "https://portal/Section_I.pdf"},
		}},
		Retriever: retriever,
	}

	summary := pipeline.Run(ctx)
	require.Equal(t, Summary{Uploaded: 0, Skipped: 1, Failed: 0}, summary)
	require.Zero(t, retriever.calls)
}

func TestPipelineCountsDiscoveryMiss(t *testing.T) {
	s := setupStore(t)

	pipeline := Pipeline{
		Store: s,
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "נעלם", URL: ""},
		}},
		Retriever: &fakeRetriever{},
	}

	summary := pipeline.Run(context.Background())
	require.Equal(t, Summary{Uploaded: 0, Skipped: 0, Failed: 1}, summary)
}

func TestPipelineClassifiesSupplement(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	pipeline := Pipeline{
		Store: s,
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "תוספת שלישית WTO", URL: "https://portal/supp3.pdf"},
		}},
		Retriever: &fakeRetriever{payloads: map[string][]byte{
			"https://portal/supp3.pdf": make([]byte, 4000),
		}},
	}

	summary := pipeline.Run(ctx)
	require.Equal(t, 1, summary.Uploaded)

	records, err := s.FindByField(ctx, CollectionDocuments, "name", "תוספת_שלישית_WTO.pdf")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "supplement", records[0]["category"])
}

type writeFailStore struct {
	store.Store
	failBlob   bool
	failInsert bool
}

func (s writeFailStore) PutBlob(ctx context.Context, path string, data []byte, contentType string) (store.BlobRef, error) {
	if s.failBlob {
		return "", errors.New("blob backend unavailable")
	}
	return s.Store.PutBlob(ctx, path, data, contentType)
}

func (s writeFailStore) Insert(ctx context.Context, collection string, fields store.Record) (string, error) {
	if s.failInsert && collection == CollectionDocuments {
		return "", errors.New("metadata backend unavailable")
	}
	return s.Store.Insert(ctx, collection, fields)
}

func TestPipelineCountsBlobWriteFailure(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	pipeline := Pipeline{
		Store: writeFailStore{Store: s, failBlob: true},
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "I", URL: "https://portal/Section_I.pdf"},
		}},
		Retriever: &fakeRetriever{payloads: map[string][]byte{
			"https://portal/Section_I.pdf": make([]byte, 2000),
		}},
	}

	summary := pipeline.Run(ctx)
	require.Equal(t, Summary{Uploaded: 0, Skipped: 0, Failed: 1}, summary)

	records, err := s.FindByField(ctx, CollectionDocuments, "name", "Section_I.pdf")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestPipelineCountsMetadataWriteFailure(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	pipeline := Pipeline{
		Store: writeFailStore{Store: s, failInsert: true},
		Discovery: &fakeDiscovery{candidates: []shaarolami.Candidate{
			{DisplayName: "I", URL: "https://portal/Section_I.pdf"},
		}},
		Retriever: &fakeRetriever{payloads: map[string][]byte{
			"https://portal/Section_I.pdf": make([]byte, 2000),
		}},
	}

	// the blob lands, metadata does not: the orphaned blob is accepted
	// and the candidate counts failed
	summary := pipeline.Run(ctx)
	require.Equal(t, Summary{Uploaded: 0, Skipped: 0, Failed: 1}, summary)

	records, err := s.FindByField(ctx, CollectionDocuments, "name", "Section_I.pdf")
	require.NoError(t, err)
	require.Empty(t, records)
}

type brokenStore struct {
	store.Store
}

func (brokenStore) FindByField(ctx context.Context, collection, field string, value any) ([]store.Record, error) {
	return nil, errors.New("store unreachable")
}

func TestExistenceCheckDefaultsToNotExisting(t *testing.T) {
	exists := DocumentExists(context.Background(), brokenStore{}, "Section_I.pdf")
	require.False(t, exists)
}
