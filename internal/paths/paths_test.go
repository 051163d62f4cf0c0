package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montavis/atelier/pkg/types"
)

func TestDefaultRoot_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_DATA_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
		got, err := DefaultRoot()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/atelier", got)
	})

	t.Run("falls back to ~/.local/share when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := DefaultRoot()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".local", "share", "atelier"), got)
	})
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		configVal string
		envVal    string
		want      string
	}{
		{
			name:      "flag wins over config and env",
			flag:      "/explicit/root",
			configVal: "/config/root",
			envVal:    "/env/root",
			want:      "/explicit/root",
		},
		{
			name:      "config wins when flag empty",
			configVal: "/config/root",
			envVal:    "/env/root",
			want:      "/config/root",
		},
		{
			name:   "env wins when flag and config empty",
			envVal: "/env/root",
			want:   "/env/root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRootDir, tt.envVal)
			got, err := ResolveRoot(tt.flag, tt.configVal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectDir(t *testing.T) {
	root := t.TempDir()

	t.Run("plain folder resolves under root", func(t *testing.T) {
		dir, err := ProjectDir(root, "gearbox-assembly")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "gearbox-assembly"), dir)
	})

	t.Run("empty folder name fails", func(t *testing.T) {
		_, err := ProjectDir(root, "")
		assert.ErrorIs(t, err, types.ErrProjectNotFound)
	})

	t.Run("traversal fails before disk access", func(t *testing.T) {
		for _, folder := range []string{"..", "../../etc", "a/../../b", "../sibling"} {
			_, err := ProjectDir(root, folder)
			assert.ErrorIs(t, err, types.ErrPathOutsideRoot, "folder %q", folder)
		}
	})

	t.Run("nested folder name stays contained", func(t *testing.T) {
		// Separators in a folder name are unusual but not an escape.
		dir, err := ProjectDir(root, "a/b")
		require.NoError(t, err)
		assert.True(t, Inside(root, dir))
	})
}

func TestInside(t *testing.T) {
	root := t.TempDir()

	assert.True(t, Inside(root, root))
	assert.True(t, Inside(root, filepath.Join(root, "p")))
	assert.True(t, Inside(root, filepath.Join(root, "p", "media", "x.png")))

	// Sibling directory sharing the root as a name prefix must not pass
	// the containment check.
	assert.False(t, Inside(root, root+"-sibling"))
	assert.False(t, Inside(root, filepath.Dir(root)))
	assert.False(t, Inside(root, "/etc"))
}
