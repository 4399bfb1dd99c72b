// Package sqlite provides a SQLite-backed implementation of driven.BlobStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Blobs live in a single table keyed by name;
// each Write is one upsert, so readers see either the old or the new bytes.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.reqlens/data/reqlens.db
package sqlite
