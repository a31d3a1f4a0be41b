package router

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules_MissingFileYieldsDefaults(t *testing.T) {
	exact, rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("missing rules file must not be an error: %v", err)
	}
	if exact["prd.md"] != "requirements" {
		t.Errorf("default exact table missing prd.md: %v", exact)
	}
	if len(rules) != len(DefaultRules()) {
		t.Errorf("expected default rules, got %d", len(rules))
	}
}

func TestLoadRules_MergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docindex.rules.yml")
	content := `exact:
  PRD.md: product
  brief.md: briefs
rules:
  - name: legal
    category: legal
    priority: 60
    keywords: [contract, liability]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exact, rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	// File entries override and extend the defaults, keys lowercased.
	if exact["prd.md"] != "product" {
		t.Errorf("exact override not applied: %q", exact["prd.md"])
	}
	if exact["brief.md"] != "briefs" {
		t.Errorf("exact addition missing: %v", exact)
	}

	if len(rules) != len(DefaultRules())+1 {
		t.Fatalf("expected %d rules, got %d", len(DefaultRules())+1, len(rules))
	}
	legal := rules[len(rules)-1]
	if legal.Name != "legal" || legal.Priority != 60 {
		t.Errorf("file rule not loaded: %+v", legal)
	}
}

func TestLoadRules_BadPatternFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")
	content := `rules:
  - name: broken
    category: x
    pattern: "("
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, _, err := LoadRules(path); err == nil {
		t.Error("expected error for unparseable pattern")
	}
}

func TestLoadRules_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, _, err := LoadRules(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestRuleMatch_PatternAgainstFilenameAndContent(t *testing.T) {
	rule := Rule{Name: "arch", Category: "architecture", Pattern: `sequence diagram`}
	if err := rule.compile(); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if ok, _ := rule.match("sequence diagram.md", "nothing"); !ok {
		t.Error("pattern should match the filename")
	}
	if ok, _ := rule.match("x.md", "see the sequence diagram below"); !ok {
		t.Error("pattern should match the content")
	}
	if ok, _ := rule.match("x.md", "nothing relevant"); ok {
		t.Error("pattern should not match")
	}
}

func TestRuleMatch_KeywordHits(t *testing.T) {
	rule := Rule{Name: "ops", Category: "operations",
		Keywords: []string{"deploy", "rollback", "incident"}}

	ok, hits := rule.match("x.md", "the deploy failed, rollback started")
	if !ok || hits != 2 {
		t.Errorf("match = %v, hits = %d", ok, hits)
	}

	ok, hits = rule.match("x.md", "quarterly review")
	if ok || hits != 0 {
		t.Errorf("match = %v, hits = %d", ok, hits)
	}
}
