package db

import (
	_ "embed"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is written with
// IF NOT EXISTS so re-running against an existing database is harmless.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}
