package registryconfig

import (
	"path/filepath"
	"testing"
)

func TestCreateDefaultFileWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tql.yml")
	if err := CreateDefaultFile(path); err != nil {
		t.Fatalf("CreateDefaultFile: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of generated file: %s", err)
	}
	if cfg.Aliases["grab"] != "text" {
		t.Errorf("expected the starter alias grab -> text, got %+v", cfg.Aliases)
	}
	if len(cfg.Functions) != 1 || cfg.Functions[0].Name != "shout" {
		t.Fatalf("expected the starter shout function, got %+v", cfg.Functions)
	}
}
