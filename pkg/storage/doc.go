// Package storage persists expanded intent templates.
//
// Rows are keyed by (domain, intent, language). An upsert inserts new keys,
// overwrites the service, patterns, source and default parameters of
// existing keys, and skips rows that expanded to no patterns. Every upsert
// runs in a single transaction and reports how many rows took each path.
//
// # Backends
//
//   - SQLite: the persistent backend. Two drivers are supported, selected
//     by storage.driver: "sqlite" (modernc.org/sqlite, pure Go, the
//     default) and "sqlite3" (github.com/mattn/go-sqlite3, cgo).
//   - Memory: a map-backed store for tests and dry runs.
//
// # Basic Usage
//
//	store, err := storage.New(&cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	result, err := store.Upsert(ctx, rows)
//	if err != nil {
//	    return err // *storage.StorageError
//	}
//	log.Printf("inserted=%d updated=%d skipped=%d",
//	    result.Inserted, result.Updated, result.Skipped)
//
// Patterns and default parameters are stored as JSON text. Absent default
// parameters are stored as "{}".
package storage
