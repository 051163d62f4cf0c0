// Package paths resolves the managed root directory that holds every
// project, and enforces that all derived paths stay inside it. Any
// operation touching a project's disk location must route through
// ProjectDir or Inside before filesystem or database access.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/montavis/atelier/pkg/types"
)

// DefaultRootDirName is the CWD-relative fallback root.
const DefaultRootDirName = ".atelier"

// EnvRootDir overrides the managed root directory.
const EnvRootDir = "ATELIER_ROOT"

// DefaultRoot returns the platform-specific default managed root.
//
// Linux:   $XDG_DATA_HOME/atelier (fallback ~/.local/share/atelier)
// macOS:   ~/Library/Application Support/atelier
// Windows: %APPDATA%/atelier
func DefaultRoot() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "atelier"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "atelier"), nil
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "atelier"), nil
	}
}

// ResolveRoot returns the managed root following the precedence chain:
// flag > config value > ATELIER_ROOT env > platform default.
func ResolveRoot(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvRootDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultRoot()
}

// ProjectDir resolves a project folder name under root and verifies the
// result stays inside root. Folder names carrying separators or parent
// references resolve outside and fail with ErrPathOutsideRoot before
// any disk access.
func ProjectDir(root, folder string) (string, error) {
	if folder == "" {
		return "", types.ErrProjectNotFound
	}
	dir := filepath.Join(root, folder)
	if !Inside(root, dir) {
		return "", types.ErrPathOutsideRoot
	}
	return dir, nil
}

// Inside reports whether path resolves lexically inside root. The
// comparison is trailing-separator aware and case-insensitive on
// platforms whose filesystems are.
func Inside(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if caseInsensitiveFS() {
		absRoot = strings.ToLower(absRoot)
		absPath = strings.ToLower(absPath)
	}
	if absPath == absRoot {
		return true
	}
	return strings.HasPrefix(absPath, absRoot+string(filepath.Separator))
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "windows"
}
