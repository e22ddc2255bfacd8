package datastore

import "context"

// Store is a row sink for the recommendation log, either a local SQLite file
// or a remote Datasette instance.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a table with the given schema if it doesn't exist
	CreateTable(ctx context.Context, schema string) error

	// BatchInsert inserts records into table. All records must share the same keys.
	BatchInsert(ctx context.Context, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
