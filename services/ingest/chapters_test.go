package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/scrapers/shaarolami"
)

type fakeChapterDiscovery struct {
	pages []shaarolami.ChapterPage
	index int
}

func (d *fakeChapterDiscovery) Next(ctx context.Context) (shaarolami.ChapterPage, error) {
	if d.index >= len(d.pages) {
		return shaarolami.ChapterPage{}, shaarolami.ErrExhausted
	}
	p := d.pages[d.index]
	d.index++
	return p, nil
}

func TestChapterPipelineSavesPages(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	pipeline := ChapterPipeline{
		Store:  s,
		Source: SourceImport,
		Discovery: &fakeChapterDiscovery{pages: []shaarolami.ChapterPage{
			{ID: 85, Name: "פרק 85", Content: "מכונות וציוד חשמלי 8544.49.90.00", HSCodes: []string{"8544499000"}, CodeCount: 1},
			{ID: 39, Name: "פרק 39", Content: "פלסטיק ומוצריו", CodeCount: 0},
		}},
	}

	summary := pipeline.Run(ctx)
	require.Equal(t, Summary{Uploaded: 2}, summary)

	records, err := s.FindByField(ctx, CollectionChapters, "chapter_id", "85")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "פרק 85", records[0]["chapter_name"])
	require.Equal(t, `["8544499000"]`, records[0]["hs_codes"])
	require.EqualValues(t, 1, records[0]["hs_code_count"])
}

func TestChapterPipelineRescanRefreshes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first := ChapterPipeline{
		Store:  s,
		Source: SourceImport,
		Discovery: &fakeChapterDiscovery{pages: []shaarolami.ChapterPage{
			{ID: 85, Name: "פרק 85", Content: "טיוטה", CodeCount: 0},
		}},
	}
	first.Run(ctx)

	second := ChapterPipeline{
		Store:  s,
		Source: SourceImport,
		Discovery: &fakeChapterDiscovery{pages: []shaarolami.ChapterPage{
			{ID: 85, Name: "פרק 85", Content: "נוסח מעודכן", HSCodes: []string{"8501100000"}, CodeCount: 1},
		}},
	}
	summary := second.Run(ctx)
	require.Equal(t, Summary{Uploaded: 1}, summary)

	records, err := s.FindByField(ctx, CollectionChapters, "chapter_id", "85")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "נוסח מעודכן", records[0]["content"])
	require.EqualValues(t, 1, records[0]["hs_code_count"])
}

func TestChapterPipelineKeyedPerSource(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, source := range []ChapterSource{SourceImport, SourceExport} {
		pipeline := ChapterPipeline{
			Store:  s,
			Source: source,
			Discovery: &fakeChapterDiscovery{pages: []shaarolami.ChapterPage{
				{ID: 1, Name: "פרק 1", Content: "בעלי חיים"},
			}},
		}
		pipeline.Run(ctx)
	}

	records, err := s.FindByField(ctx, CollectionChapters, "chapter_id", "1")
	require.NoError(t, err)
	require.Len(t, records, 2)
}
