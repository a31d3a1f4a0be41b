package config

import (
	"path/filepath"
	"testing"
)

func TestRoot(t *testing.T) {
	t.Setenv("DOCINDEX_ROOT", "")
	if got := Root(); got != DefaultRoot {
		t.Errorf("Root() = %q", got)
	}

	t.Setenv("DOCINDEX_ROOT", "/srv/docs")
	if got := Root(); got != "/srv/docs" {
		t.Errorf("Root() = %q", got)
	}
}

func TestPathsDeriveFromRoot(t *testing.T) {
	t.Setenv("DOCINDEX_REGISTRY", "")
	t.Setenv("DOCINDEX_TWINS", "")
	t.Setenv("DOCINDEX_INDEX_DB", "")
	t.Setenv("DOCINDEX_RULES", "")

	root := "/srv/docs"
	if got := RegistryPath(root); got != filepath.Join(root, ".docindex", "registry.json") {
		t.Errorf("RegistryPath = %q", got)
	}
	if got := TwinsDir(root); got != filepath.Join(root, ".docindex", "twins") {
		t.Errorf("TwinsDir = %q", got)
	}
	if got := IndexPath(root); got != filepath.Join(root, ".docindex", "index.db") {
		t.Errorf("IndexPath = %q", got)
	}
	if got := RulesPath(root); got != filepath.Join(root, "docindex.rules.yml") {
		t.Errorf("RulesPath = %q", got)
	}
}

func TestFloatEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"unset", "", DefaultConfidenceThreshold},
		{"valid", "0.75", 0.75},
		{"not a number", "high", DefaultConfidenceThreshold},
		{"zero rejected", "0", DefaultConfidenceThreshold},
		{"above one rejected", "1.5", DefaultConfidenceThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCINDEX_CONFIDENCE_THRESHOLD", tt.value)
			if got := ConfidenceThreshold(); got != tt.want {
				t.Errorf("ConfidenceThreshold() = %v, want %v", got, tt.want)
			}
		})
	}
}
