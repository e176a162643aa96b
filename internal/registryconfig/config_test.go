package registryconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %s", path, err)
	}
	return path
}

func TestLoadParsesAliasesAndFunctions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".tql.yml", `
aliases:
  h1s: "h1"
functions:
  - name: double
    arity: 0
    expr: "current * 2"
    description: doubles a number
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if cfg.Aliases["h1s"] != "h1" {
		t.Errorf("expected alias h1s -> h1, got %+v", cfg.Aliases)
	}
	if len(cfg.Functions) != 1 || cfg.Functions[0].Name != "double" {
		t.Fatalf("expected 1 function named double, got %+v", cfg.Functions)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".tql.yml", "aliases: [this, is, not, a, map]\n")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestFindWalksUpDirectoryHierarchy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".tql.yml", "aliases: {}\n")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %s", err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	want := filepath.Join(root, ".tql.yml")
	if found != want {
		t.Errorf("expected %q, got %q", want, found)
	}
}

func TestFindReturnsErrorWhenNoneExists(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir); err == nil {
		t.Error("expected an error when no .tql.yml exists anywhere up the tree")
	}
}

func TestFindAcceptsFilePathStartingPoint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".tql.yml", "aliases: {}\n")
	docPath := writeFile(t, root, "doc.md", "# hi\n")

	found, err := Find(docPath)
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	if found != filepath.Join(root, ".tql.yml") {
		t.Errorf("expected the config beside doc.md, got %q", found)
	}
}
