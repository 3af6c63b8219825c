// Package sqlite stores sources, Notion pages with their chunks and tags,
// sync cursors and credentials in a single SQLite database, using the
// pure Go modernc.org/sqlite driver.
//
// The database lives at ~/.notion-nlp/data/metadata.db unless another
// data directory is given. It is opened in WAL mode so the MCP server can
// serve reads while a sync is writing.
//
// Schema changes are numbered NNN_name.up.sql files in migrations/; the
// applied versions are recorded in schema_migrations.
package sqlite
