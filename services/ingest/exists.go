package ingest

import (
	"context"
	"log/slog"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/services/ingest/store"
)

// DocumentExists is the skip gate: it reports whether a document with
// the normalized file name was already ingested. A store failure
// answers false on purpose, a transient outage should cause at worst a
// duplicate ingest, never a silently skipped new document.
func DocumentExists(ctx context.Context, s store.Store, name string) bool {
	records, err := s.FindByField(ctx, CollectionDocuments, "name", name)
	if err != nil {
		slog.WarnContext(ctx, "existence check failed, treating as new", "name", name, "err", err)
		return false
	}
	return len(records) > 0
}
