package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// collection schemas double as a whitelist: collection and field names
// are interpolated into SQL, so anything not listed here is rejected.
type collectionSchema struct {
	columns map[string]bool
	// keyColumns drive upsert conflict resolution
	keyColumns []string
}

var collections = map[string]collectionSchema{
	"documents": {
		columns: set("id", "name", "size_bytes", "mime_type", "category", "blob_location", "uploaded_at", "source"),
	},
	"chapters": {
		columns:    set("source", "chapter_id", "chapter_name", "content", "hs_codes", "hs_code_count", "scanned_at"),
		keyColumns: []string{"source", "chapter_id"},
	},
	"run_summaries": {
		columns: set("id", "uploaded", "skipped", "failed", "finished_at"),
	},
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// SqliteStore implements Store over a sqlite database (a local file or
// a remote libsql url) with blobs on the filesystem next to it.
type SqliteStore struct {
	db      *sql.DB
	blobDir string
	// publicBase, when set, prefixes blob paths in PublicURL.
	publicBase string
}

func NewSqliteStore(db *sql.DB, blobDir, publicBase string) *SqliteStore {
	return &SqliteStore{db: db, blobDir: blobDir, publicBase: publicBase}
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) schemaFor(collection string) (collectionSchema, error) {
	schema, ok := collections[collection]
	if !ok {
		return collectionSchema{}, fmt.Errorf("unknown collection: %s", collection)
	}
	return schema, nil
}

func (s *SqliteStore) FindByField(ctx context.Context, collection, field string, value any) ([]Record, error) {
	schema, err := s.schemaFor(collection)
	if err != nil {
		return nil, err
	}
	if !schema.columns[field] {
		return nil, fmt.Errorf("unknown field %s in collection %s", field, collection)
	}

	rows, err := s.db.QueryContext(
		ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", collection, field),
		value,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		err = rows.Scan(scanTargets...)
		if err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SqliteStore) Insert(ctx context.Context, collection string, fields Record) (string, error) {
	schema, err := s.schemaFor(collection)
	if err != nil {
		return "", err
	}

	columns, values, err := splitFields(schema, fields)
	if err != nil {
		return "", err
	}

	result, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			collection,
			strings.Join(columns, ", "),
			placeholders(len(columns)),
		),
		values...,
	)
	if err != nil {
		return "", err
	}

	if id, ok := fields["id"]; ok {
		return fmt.Sprint(id), nil
	}
	rowId, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return strconv.FormatInt(rowId, 10), nil
}

func (s *SqliteStore) Upsert(ctx context.Context, collection string, key Record, fields Record) error {
	schema, err := s.schemaFor(collection)
	if err != nil {
		return err
	}
	if len(schema.keyColumns) == 0 {
		return fmt.Errorf("collection %s is append-only", collection)
	}

	merged := make(Record, len(key)+len(fields))
	for k, v := range key {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	columns, values, err := splitFields(schema, merged)
	if err != nil {
		return err
	}

	keyed := set(schema.keyColumns...)
	var updates []string
	for _, col := range columns {
		if keyed[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	_, err = s.db.ExecContext(
		ctx,
		fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			collection,
			strings.Join(columns, ", "),
			placeholders(len(columns)),
			strings.Join(schema.keyColumns, ", "),
			strings.Join(updates, ", "),
		),
		values...,
	)
	return err
}

func (s *SqliteStore) PutBlob(ctx context.Context, path string, data []byte, contentType string) (BlobRef, error) {
	fullPath := filepath.Join(s.blobDir, filepath.FromSlash(path))
	err := os.MkdirAll(filepath.Dir(fullPath), 0777)
	if err != nil {
		return "", err
	}
	err = os.WriteFile(fullPath, data, 0600)
	if err != nil {
		return "", err
	}
	return BlobRef(path), nil
}

func (s *SqliteStore) PublicURL(ref BlobRef) string {
	if s.publicBase != "" {
		return strings.TrimSuffix(s.publicBase, "/") + "/" + string(ref)
	}
	return filepath.Join(s.blobDir, filepath.FromSlash(string(ref)))
}

func splitFields(schema collectionSchema, fields Record) ([]string, []any, error) {
	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !schema.columns[col] {
			return nil, nil, fmt.Errorf("unknown field: %s", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = fields[col]
	}
	return columns, values, nil
}

func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ", ")
}
