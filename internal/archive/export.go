package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/montavis/atelier/internal/paths"
	"github.com/montavis/atelier/pkg/types"
)

// Export packages the project folder into a zip at destPath: the
// database file and the media subtree, stored relative to the folder so
// the archive re-imports at top level. A partial archive is removed on
// failure.
func Export(root, folder, destPath string) error {
	dir, err := paths.ProjectDir(root, folder)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", types.ErrProjectNotFound, folder)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	if err := writeArchive(out, dir); err != nil {
		out.Close()
		os.Remove(destPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

func writeArchive(out io.Writer, dir string) error {
	w := zip.NewWriter(out)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(w, path, filepath.ToSlash(rel))
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("packaging project: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func addFile(w *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
