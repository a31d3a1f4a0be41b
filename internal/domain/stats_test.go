package domain

import (
	"math"
	"testing"
)

func TestStats_TokenSavings(t *testing.T) {
	r := NewRegistry()
	entries := []RegistryEntry{
		{Category: "requirements", ID: "prd", Path: "requirements/prd.md",
			Tokens: TokenCounts{MD: 1000, JSON: 150}, HasJSON: true},
		{Category: "planning", ID: "roadmap", Path: "planning/roadmap.md",
			Tokens: TokenCounts{MD: 500, JSON: 100}, HasJSON: true},
		{Category: "planning", ID: "notes", Path: "planning/notes.md",
			Tokens: TokenCounts{MD: 500, JSON: 0}},
	}
	for _, e := range entries {
		if _, err := r.Upsert(e); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	stats := r.Stats()
	if stats.DocumentCount != 3 {
		t.Errorf("expected 3 documents, got %d", stats.DocumentCount)
	}
	if stats.MDTokens != 2000 || stats.JSONTokens != 250 {
		t.Errorf("token sums wrong: md=%d json=%d", stats.MDTokens, stats.JSONTokens)
	}

	wantSavings := 1 - 250.0/2000.0
	if math.Abs(stats.TokenSavings-wantSavings) > 1e-9 {
		t.Errorf("expected savings %.4f, got %.4f", wantSavings, stats.TokenSavings)
	}
	wantCoverage := 2.0 / 3.0
	if math.Abs(stats.JSONCoverage-wantCoverage) > 1e-9 {
		t.Errorf("expected coverage %.4f, got %.4f", wantCoverage, stats.JSONCoverage)
	}

	planning := stats.Categories["planning"]
	if planning.Documents != 2 || planning.MDTokens != 1000 || planning.WithJSON != 1 {
		t.Errorf("planning category stats wrong: %+v", planning)
	}
}

func TestStats_EmptyRegistryHasZeroSavings(t *testing.T) {
	stats := NewRegistry().Stats()
	if stats.TokenSavings != 0 {
		t.Errorf("empty registry should report 0 savings, got %.4f", stats.TokenSavings)
	}
	if stats.JSONCoverage != 0 {
		t.Errorf("empty registry should report 0 coverage, got %.4f", stats.JSONCoverage)
	}
}

func TestStats_NoTwinsMeansZeroSavings(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Upsert(RegistryEntry{
		Category: "planning", ID: "notes", Path: "planning/notes.md",
		Tokens: TokenCounts{MD: 400},
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if got := r.Stats().TokenSavings; got != 0 {
		t.Errorf("no twins should mean 0 savings, got %.4f", got)
	}
}
