package sqlite

import "database/sql"

// schema holds the key-value table. These statements run on startup to
// ensure the table exists.
const schema = `
CREATE TABLE IF NOT EXISTS entries (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
