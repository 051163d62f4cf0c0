package project

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/montavis/atelier/pkg/types"
)

// ReadIdentity opens the database at dbPath read-only and reads the
// document's stable id, display title, revision, and default language.
func ReadIdentity(dbPath string) (types.Identity, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return types.Identity{}, fmt.Errorf("opening database for identity: %w", err)
	}
	defer db.Close()
	return ReadIdentityDB(db)
}

// ReadIdentityDB reads the document identity from an open handle. A
// database without an instructions row is not a valid project.
func ReadIdentityDB(db *sql.DB) (types.Identity, error) {
	var id types.Identity
	var language sql.NullString
	err := db.QueryRow(
		"SELECT id, title, revision, language FROM instructions LIMIT 1").
		Scan(&id.ID, &id.Title, &id.Revision, &language)
	if err == sql.ErrNoRows {
		return types.Identity{}, types.ErrDatabaseNotFound
	}
	if err != nil {
		return types.Identity{}, fmt.Errorf("reading document identity: %w", err)
	}
	if language.Valid {
		id.Language = language.String
	}
	return id, nil
}
