// Package media attaches image files to document entities. The file
// copy and the dependent database rows sit under one failure boundary:
// the filesystem and the database end up either both mutated or both
// unmutated. A copied-but-unlinked file is not an acceptable terminal
// state.
package media

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/montavis/atelier/internal/paths"
	"github.com/montavis/atelier/internal/project"
	"github.com/montavis/atelier/pkg/types"
)

// acceptedExtensions are the image types an attachment source may have.
var acceptedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Creator attaches media files to steps of projects under Root.
// Sources must lie inside UserArea, never an arbitrary filesystem
// path, so a crafted request cannot read files outside the user's own
// profile.
type Creator struct {
	Root     string
	UserArea string

	// Transcoder, when set, renders a derivative preview into the area
	// directory after the original is copied.
	Transcoder *Transcoder
}

// NewCreator returns a Creator with UserArea defaulting to the user's
// home directory.
func NewCreator(root string) (*Creator, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving user area: %w", err)
	}
	return &Creator{Root: root, UserArea: home}, nil
}

// Attach copies sourcePath into a fresh per-area media directory of the
// given project and, in one transaction, inserts the media-area row
// (crop defaulting to the full unit square), the junction row linking
// it to ownerID, and updates the owner's preview pointer. If the
// transaction fails after the copy succeeded, the copied file and its
// directory are removed.
func (c *Creator) Attach(folder, ownerID, sourcePath string, crop *types.Crop) (types.Attachment, error) {
	if err := c.validateSource(sourcePath); err != nil {
		return types.Attachment{}, err
	}

	p, err := project.Open(c.Root, folder)
	if err != nil {
		return types.Attachment{}, err
	}
	defer p.Close()

	areaID := uuid.Must(uuid.NewV7()).String()
	areaDir := filepath.Join(p.MediaDir(), areaID)
	fileName := filepath.Base(sourcePath)

	if err := os.MkdirAll(areaDir, 0o755); err != nil {
		return types.Attachment{}, fmt.Errorf("creating area directory: %w", err)
	}
	if err := copyFile(sourcePath, filepath.Join(areaDir, fileName)); err != nil {
		os.RemoveAll(areaDir)
		return types.Attachment{}, err
	}

	if c.Transcoder != nil {
		effective := types.FullCrop()
		if crop != nil {
			effective = *crop
		}
		preview := filepath.Join(areaDir, "preview.jpg")
		if err := c.Transcoder.Render(filepath.Join(areaDir, fileName), preview, effective, previewWidth, 0); err != nil {
			os.RemoveAll(areaDir)
			return types.Attachment{}, err
		}
	}

	att, err := c.insertRows(p.DB(), ownerID, areaID, fileName, crop)
	if err != nil {
		os.RemoveAll(areaDir)
		return types.Attachment{}, err
	}
	return att, nil
}

const previewWidth = 640

func (c *Creator) validateSource(sourcePath string) error {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !acceptedExtensions[ext] {
		return fmt.Errorf("%w: %s", types.ErrUnsupportedFileType, ext)
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return fmt.Errorf("resolving source path: %w", err)
	}
	if !paths.Inside(c.UserArea, abs) {
		return fmt.Errorf("%w: %s", types.ErrSourceOutsideUserArea, sourcePath)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}
	return nil
}

func (c *Creator) insertRows(db *sql.DB, ownerID, areaID, fileName string, crop *types.Crop) (types.Attachment, error) {
	effective := types.FullCrop()
	if crop != nil {
		effective = *crop
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return types.Attachment{}, fmt.Errorf("enabling foreign keys: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("beginning transaction: %w", err)
	}

	att, err := insertAttachment(tx, ownerID, areaID, fileName, effective)
	if err != nil {
		_ = tx.Rollback()
		return types.Attachment{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Attachment{}, fmt.Errorf("committing attachment: %w", err)
	}
	return att, nil
}

func insertAttachment(tx *sql.Tx, ownerID, areaID, fileName string, crop types.Crop) (types.Attachment, error) {
	now := time.Now().Format(time.RFC3339)

	_, err := tx.Exec(`
		INSERT INTO media_areas (id, file_name, kind, crop_x, crop_y, crop_width, crop_height, created_at)
		VALUES (?, ?, 'image', ?, ?, ?, ?, ?)`,
		areaID, fileName, crop.X, crop.Y, crop.Width, crop.Height, now)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("inserting media area: %w", err)
	}

	junctionID := uuid.Must(uuid.NewV7()).String()
	_, err = tx.Exec(`
		INSERT INTO step_media (id, step_id, area_id, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM step_media WHERE step_id = ?))`,
		junctionID, ownerID, areaID, ownerID)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("linking media area to step: %w", err)
	}

	if _, err := tx.Exec(
		"UPDATE steps SET preview_area_id = ? WHERE id = ?", areaID, ownerID); err != nil {
		return types.Attachment{}, fmt.Errorf("updating step preview: %w", err)
	}

	return types.Attachment{AreaID: areaID, JunctionID: junctionID}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating media file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying media file: %w", err)
	}
	return out.Sync()
}
