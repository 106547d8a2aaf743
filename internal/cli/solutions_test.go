package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSolutionFilesRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	file := filepath.Join(t.TempDir(), "q.sql")

	if err := rememberSolutionFile(dataDir, 7, file); err != nil {
		t.Fatalf("rememberSolutionFile returned error: %v", err)
	}
	mapping, err := loadSolutionFiles(dataDir)
	if err != nil {
		t.Fatalf("loadSolutionFiles returned error: %v", err)
	}
	if !filepath.IsAbs(mapping[7]) || filepath.Base(mapping[7]) != "q.sql" {
		t.Fatalf("expected absolute path to q.sql, got %q", mapping[7])
	}

	var buf bytes.Buffer
	if err := listSolutionFiles(&buf, dataDir); err != nil {
		t.Fatalf("listSolutionFiles returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("7: ")) {
		t.Errorf("unexpected listing %q", buf.String())
	}

	if err := forgetSolutionFile(dataDir, 7); err != nil {
		t.Fatalf("forgetSolutionFile returned error: %v", err)
	}
	if _, err := os.Stat(solutionsFile(dataDir)); !os.IsNotExist(err) {
		t.Errorf("expected mapping file to be removed, stat err = %v", err)
	}
}

func TestLoadSolutionFilesMissing(t *testing.T) {
	mapping, err := loadSolutionFiles(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping, got %v", mapping)
	}
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", `code --wait "--user-data-dir=/tmp/my dir"`)
	args, err := editorCommand()
	if err != nil {
		t.Fatalf("editorCommand returned error: %v", err)
	}
	want := []string{"code", "--wait", "--user-data-dir=/tmp/my dir"}
	if len(args) != len(want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}

	t.Setenv("EDITOR", "")
	if args, _ = editorCommand(); len(args) != 1 || args[0] != defaultEditor {
		t.Errorf("expected default editor, got %v", args)
	}
}
