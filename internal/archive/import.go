// Package archive packages whole projects as zip files and imports
// them back, de-duplicating by stable document identity. Importing the
// same archive twice never produces a second on-disk copy of the same
// logical document.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/montavis/atelier/internal/paths"
	"github.com/montavis/atelier/internal/project"
	"github.com/montavis/atelier/pkg/types"
)

// Import extracts the archive at archivePath into the managed root.
// If a project holding the same document id already exists, the fresh
// copy is discarded and the existing folder is returned. Otherwise the
// extracted content is renamed into a folder derived from the document
// title. Every failure path removes the temporary extraction directory.
func Import(root, archivePath string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating managed root: %w", err)
	}

	// The leading dot keeps the extraction directory out of project
	// listings while it exists.
	tmp := filepath.Join(root, ".import-"+uuid.Must(uuid.NewV7()).String())
	if err := os.Mkdir(tmp, 0o755); err != nil {
		return "", fmt.Errorf("creating extraction directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := extract(archivePath, tmp); err != nil {
		return "", err
	}

	contentDir, err := locateContent(tmp)
	if err != nil {
		return "", err
	}

	identity, err := project.ReadIdentity(filepath.Join(contentDir, project.DatabaseFileName))
	if err != nil {
		return "", fmt.Errorf("reading imported document identity: %w", err)
	}

	// Dedup on the stable document id, never on folder names.
	if folder, err := project.FindByID(root, identity.ID); err == nil {
		return folder, nil
	} else if err != types.ErrProjectNotFound {
		return "", err
	}

	folder, err := project.UniqueFolderName(root, identity.Title)
	if err != nil {
		return "", err
	}
	dest, err := paths.ProjectDir(root, folder)
	if err != nil {
		return "", err
	}
	if err := os.Rename(contentDir, dest); err != nil {
		return "", fmt.Errorf("relocating imported project: %w", err)
	}
	return folder, nil
}

// extract unpacks the zip into destDir. Entry paths are resolved under
// destDir and checked for containment before any write, so a crafted
// archive cannot escape the extraction directory.
func extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if !paths.Inside(destDir, target) {
			return fmt.Errorf("%w: archive entry %q", types.ErrPathOutsideRoot, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extracting directory %s: %w", f.Name, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return nil
}

// locateContent finds the directory holding the project database:
// either the extraction root itself or exactly one nested directory.
// Zero candidates or more than one is a structural error.
func locateContent(dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, project.DatabaseFileName)); err == nil {
		return dir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning extracted archive: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(nested, project.DatabaseFileName)); err == nil {
			candidates = append(candidates, nested)
		}
	}

	if len(candidates) != 1 {
		return "", fmt.Errorf("%w: %d candidate database locations",
			types.ErrStructuralImport, len(candidates))
	}
	return candidates[0], nil
}
