// Package project resolves, creates, and reads instruction projects
// under the managed root. A project is one folder holding exactly one
// SQLite database file and a media subtree; its identity is the
// document id inside the database, never the folder name.
package project

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/montavis/atelier/internal/paths"
	"github.com/montavis/atelier/pkg/types"
)

// On-disk layout of one project folder.
const (
	DatabaseFileName = "project.db"
	MediaDirName     = "media"
)

//go:embed schema.sql
var schemaSQL string

// Project is an open handle on one project's database and directory.
type Project struct {
	Folder string
	Dir    string
	db     *sql.DB
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Open resolves folder under root, verifies containment and existence,
// and opens the project database.
func Open(root, folder string) (*Project, error) {
	dir, err := paths.ProjectDir(root, folder)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", types.ErrProjectNotFound, folder)
	}

	dbPath := filepath.Join(dir, DatabaseFileName)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrDatabaseNotFound, folder)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening project database: %w", err)
	}
	return &Project{Folder: folder, Dir: dir, db: db}, nil
}

// DB exposes the underlying database handle.
func (p *Project) DB() *sql.DB {
	return p.db
}

// MediaDir returns the project's media directory.
func (p *Project) MediaDir() string {
	return filepath.Join(p.Dir, MediaDirName)
}

// Close releases the database handle. Idempotent.
func (p *Project) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Create makes a fresh project folder under root: schema applied, one
// instructions row with a newly generated stable id, empty media
// directory. The folder name derives from title, de-duplicated against
// existing folders. Returns the folder name chosen.
func Create(root, title, language string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating managed root: %w", err)
	}

	folder, err := UniqueFolderName(root, title)
	if err != nil {
		return "", err
	}
	dir, err := paths.ProjectDir(root, folder)
	if err != nil {
		return "", err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("%w: %s", types.ErrProjectExists, folder)
		}
		return "", fmt.Errorf("creating project folder: %w", err)
	}

	if err := initProject(dir, title, language); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return folder, nil
}

func initProject(dir, title, language string) error {
	if err := os.Mkdir(filepath.Join(dir, MediaDirName), 0o755); err != nil {
		return fmt.Errorf("creating media directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseFileName))
	if err != nil {
		return fmt.Errorf("opening new project database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("applying project schema: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	var lang any
	if language != "" {
		lang = language
	}
	_, err = db.Exec(
		"INSERT INTO instructions (id, title, revision, language, created_at, updated_at) VALUES (?, ?, 0, ?, ?, ?)",
		newUUID(), title, lang, now, now)
	if err != nil {
		return fmt.Errorf("inserting document row: %w", err)
	}
	return nil
}

// List scans every project folder under root and reads its document
// identity. Hidden folders and folders without a readable database are
// skipped, not errors: the managed root may hold unfinished imports and
// stray files.
func List(root string) ([]types.ProjectInfo, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading managed root: %w", err)
	}

	var infos []types.ProjectInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dbPath := filepath.Join(root, entry.Name(), DatabaseFileName)
		stat, err := os.Stat(dbPath)
		if err != nil {
			continue
		}
		identity, err := ReadIdentity(dbPath)
		if err != nil {
			continue
		}
		infos = append(infos, types.ProjectInfo{
			Folder:   entry.Name(),
			Identity: identity,
			Modified: stat.ModTime(),
		})
	}
	return infos, nil
}

// FindByID returns the folder holding the document with the given
// stable id, or ErrProjectNotFound.
func FindByID(root, documentID string) (string, error) {
	infos, err := List(root)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.Identity.ID == documentID {
			return info.Folder, nil
		}
	}
	return "", types.ErrProjectNotFound
}

// SafeFolderName derives a filesystem-safe folder name from a display
// title: letters, digits, dashes and underscores survive, spaces become
// dashes, everything else is dropped. An empty result falls back to
// "project".
func SafeFolderName(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == ' ', r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		return "project"
	}
	return name
}

// UniqueFolderName returns SafeFolderName(title), suffixed with -1, -2,
// ... until it collides with no existing entry under root.
func UniqueFolderName(root, title string) (string, error) {
	base := SafeFolderName(title)
	name := base
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(root, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing folder name: %w", err)
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}
