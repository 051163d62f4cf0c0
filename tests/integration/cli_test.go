// CLI integration tests for atelier. Each test drives the built binary
// against an isolated managed root.
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var atelierBin string

// TestMain builds the atelier binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "atelier-test-*")
	if err != nil {
		os.Exit(1)
	}
	atelierBin = filepath.Join(tmpDir, "atelier")

	cmd := exec.Command("go", "build", "-o", atelierBin, "./cmd/atelier")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Stderr.WriteString(string(output))
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// findProjectRoot walks up from the working directory to the module root.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

type testEnv struct {
	t    *testing.T
	root string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{t: t, root: t.TempDir()}
}

// run executes the binary with an isolated root and config dir.
func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	full := append([]string{"--root", e.root, "--config-dir", filepath.Join(e.root, ".config")}, args...)
	cmd := exec.Command(atelierBin, full...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(stdin, args...)
	if err != nil {
		e.t.Fatalf("atelier %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("", "version")
	if !strings.HasPrefix(out, "atelier v") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	folder := strings.TrimSpace(env.mustRun("", "create", "Garden Bench", "--language", "en"))
	if folder != "Garden-Bench" {
		t.Errorf("create printed %q, want Garden-Bench", folder)
	}

	out := env.mustRun("", "list", "--json")
	var infos []map[string]any
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("list --json produced invalid JSON: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("list returned %d projects, want 1", len(infos))
	}
}

func TestApplyAndShow(t *testing.T) {
	env := newTestEnv(t)
	folder := strings.TrimSpace(env.mustRun("", "create", "Bench", "--language", "en"))

	// Read the document id from show.
	out := env.mustRun("", "show", folder)
	var doc map[string][]map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("show produced invalid JSON: %v", err)
	}
	if len(doc["instructions"]) != 1 {
		t.Fatalf("show returned %d instruction rows, want 1", len(doc["instructions"]))
	}
	docID, _ := doc["instructions"][0]["id"].(string)
	if docID == "" {
		t.Fatal("show returned no document id")
	}

	changes := `{
		"changed": {
			"steps": [
				{"id": "s1", "instruction_id": "` + docID + `", "position": 1, "title": "Cut boards"}
			]
		},
		"deleted": {}
	}`
	env.mustRun(changes, "apply", folder)

	out = env.mustRun("", "show", folder)
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("show produced invalid JSON: %v", err)
	}
	if len(doc["steps"]) != 1 {
		t.Fatalf("show returned %d steps after apply, want 1", len(doc["steps"]))
	}
	if title := doc["steps"][0]["title"]; title != "Cut boards" {
		t.Errorf("step title = %v, want Cut boards", title)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestEnv(t)
	folder := strings.TrimSpace(src.mustRun("", "create", "Bench", "--language", "en"))

	archivePath := filepath.Join(t.TempDir(), "bench.zip")
	src.mustRun("", "export", folder, archivePath)

	dest := newTestEnv(t)
	imported := strings.TrimSpace(dest.mustRun("", "import", archivePath))
	if imported != "Bench" {
		t.Errorf("import printed %q, want Bench", imported)
	}

	// A second import of the same archive lands on the same folder.
	again := strings.TrimSpace(dest.mustRun("", "import", archivePath))
	if again != imported {
		t.Errorf("re-import printed %q, want %q", again, imported)
	}
}

func TestApplyRejectsMalformedChangeSet(t *testing.T) {
	env := newTestEnv(t)
	folder := strings.TrimSpace(env.mustRun("", "create", "Bench"))

	_, errOut, err := env.run("not json", "apply", folder)
	if err == nil {
		t.Fatal("apply accepted malformed JSON")
	}
	if !strings.Contains(errOut, "change-set") {
		t.Errorf("unexpected error output %q", errOut)
	}
}
