// Package config reads engine settings from the environment. Tunables
// like thresholds ship as documented defaults, never hard-coded
// "correct" values.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// DefaultRoot is where project documents live unless overridden.
	DefaultRoot = "./project-documents"

	// DefaultConfidenceThreshold gates tier-3 classifier answers.
	DefaultConfidenceThreshold = 0.6

	// DefaultSimilarityThreshold folds near-duplicate category names.
	DefaultSimilarityThreshold = 0.8

	// DefaultTokenizer is the tiktoken encoding used for accounting.
	DefaultTokenizer = "cl100k_base"

	// DefaultModel is the claude CLI model for tier-3 classification.
	DefaultModel = "haiku"
)

// Root returns the documents root from DOCINDEX_ROOT, falling back to
// DefaultRoot.
func Root() string {
	if env := os.Getenv("DOCINDEX_ROOT"); env != "" {
		return env
	}
	return DefaultRoot
}

// RegistryPath returns the registry file location for a documents root.
// Overridable via DOCINDEX_REGISTRY.
func RegistryPath(root string) string {
	if env := os.Getenv("DOCINDEX_REGISTRY"); env != "" {
		return env
	}
	return filepath.Join(root, ".docindex", "registry.json")
}

// TwinsDir returns where JSON twins are written, mirroring the category
// tree. Overridable via DOCINDEX_TWINS.
func TwinsDir(root string) string {
	if env := os.Getenv("DOCINDEX_TWINS"); env != "" {
		return env
	}
	return filepath.Join(root, ".docindex", "twins")
}

// IndexPath returns the SQLite search index location. Overridable via
// DOCINDEX_INDEX_DB.
func IndexPath(root string) string {
	if env := os.Getenv("DOCINDEX_INDEX_DB"); env != "" {
		return env
	}
	return filepath.Join(root, ".docindex", "index.db")
}

// RulesPath returns the optional tier-2 rules file. Overridable via
// DOCINDEX_RULES.
func RulesPath(root string) string {
	if env := os.Getenv("DOCINDEX_RULES"); env != "" {
		return env
	}
	return filepath.Join(root, "docindex.rules.yml")
}

// ConfidenceThreshold reads DOCINDEX_CONFIDENCE_THRESHOLD.
func ConfidenceThreshold() float64 {
	return floatEnv("DOCINDEX_CONFIDENCE_THRESHOLD", DefaultConfidenceThreshold)
}

// SimilarityThreshold reads DOCINDEX_SIMILARITY_THRESHOLD.
func SimilarityThreshold() float64 {
	return floatEnv("DOCINDEX_SIMILARITY_THRESHOLD", DefaultSimilarityThreshold)
}

// Tokenizer reads DOCINDEX_TOKENIZER ("heuristic" selects the chars/4
// estimator).
func Tokenizer() string {
	if env := os.Getenv("DOCINDEX_TOKENIZER"); env != "" {
		return env
	}
	return DefaultTokenizer
}

// Model reads DOCINDEX_MODEL for the claude CLI classifier.
func Model() string {
	if env := os.Getenv("DOCINDEX_MODEL"); env != "" {
		return env
	}
	return DefaultModel
}

func floatEnv(name string, fallback float64) float64 {
	env := os.Getenv(name)
	if env == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(env, 64)
	if err != nil || value <= 0 || value > 1 {
		return fallback
	}
	return value
}
