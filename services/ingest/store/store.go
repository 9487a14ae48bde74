// Package store is the metadata/blob store the scanner writes into.
// The interface mirrors a remote document store: keyed collections of
// loosely structured records plus blob storage with public URLs.
package store

import "context"

// MaxTextField is the store's per-field size limit in characters.
// Callers truncate before writing, the store does not.
const MaxTextField = 900_000

// Record is one loosely structured document-store record.
type Record map[string]any

// BlobRef points at a stored blob within the store's namespace.
type BlobRef string

type Store interface {
	// FindByField returns every record in the collection whose field
	// equals the value.
	FindByField(ctx context.Context, collection, field string, value any) ([]Record, error)
	// Insert appends a record and returns its id.
	Insert(ctx context.Context, collection string, fields Record) (string, error)
	// Upsert writes the record identified by the key fields, creating
	// or replacing as needed.
	Upsert(ctx context.Context, collection string, key Record, fields Record) error
	// PutBlob stores raw bytes under the given path.
	PutBlob(ctx context.Context, path string, data []byte, contentType string) (BlobRef, error)
	// PublicURL renders a blob reference as a fetchable location.
	PublicURL(ref BlobRef) string
}
