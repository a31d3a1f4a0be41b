package router

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one tier-2 matcher: a regex pattern and/or a keyword set that
// maps to a category. Rules are evaluated in priority order; within a
// priority, ties break on matched-keyword count, then declaration order.
type Rule struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Priority int      `yaml:"priority"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`

	re *regexp.Regexp
}

// compile prepares the case-insensitive pattern matcher.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q: bad pattern: %w", r.Name, err)
	}
	r.re = re
	return nil
}

// match reports whether the rule applies to the document and how many of
// its keywords were found, for tie-breaking.
func (r *Rule) match(filename, lowerContent string) (bool, int) {
	hits := 0
	for _, keyword := range r.Keywords {
		if strings.Contains(lowerContent, strings.ToLower(keyword)) {
			hits++
		}
	}
	if r.re != nil && (r.re.MatchString(filename) || r.re.MatchString(lowerContent)) {
		return true, hits
	}
	return hits > 0, hits
}

// DefaultExactTable maps well-known filenames and title slugs to their
// canonical categories for tier 1.
func DefaultExactTable() map[string]string {
	return map[string]string{
		"prd.md":                            "requirements",
		"requirements.md":                   "requirements",
		"product-requirements-document":     "requirements",
		"product-requirements":              "requirements",
		"architecture.md":                   "architecture",
		"adr.md":                            "architecture",
		"system-architecture":               "architecture",
		"design.md":                         "design",
		"design-doc":                        "design",
		"business-plan.md":                  "business-strategy",
		"pitch-deck.md":                     "business-strategy",
		"roadmap.md":                        "business-strategy",
		"test-plan.md":                      "testing",
		"testing.md":                        "testing",
		"runbook.md":                        "operations",
		"operations.md":                     "operations",
		"readme.md":                         "overview",
	}
}

// DefaultRules returns the built-in tier-2 rule table covering the
// common project-document corpus.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "requirements", Category: "requirements", Priority: 50,
			Pattern:  `user stor(y|ies)|acceptance criteria`,
			Keywords: []string{"requirement", "user story", "acceptance", "must have", "shall"}},
		{Name: "architecture", Category: "architecture", Priority: 50,
			Pattern:  `architecture|sequence diagram`,
			Keywords: []string{"architecture", "component", "microservice", "data flow", "adr"}},
		{Name: "business", Category: "business-strategy", Priority: 40,
			Pattern:  `pricing|revenue`,
			Keywords: []string{"pricing", "revenue", "market", "competitor", "go-to-market"}},
		{Name: "design", Category: "design", Priority: 40,
			Keywords: []string{"wireframe", "mockup", "ux", "user interface", "design system"}},
		{Name: "testing", Category: "testing", Priority: 30,
			Pattern:  `test plan|test case`,
			Keywords: []string{"test", "coverage", "qa", "regression", "assertion"}},
		{Name: "operations", Category: "operations", Priority: 30,
			Keywords: []string{"deploy", "rollback", "incident", "monitoring", "runbook", "on-call"}},
	}
}

// rulesFile is the on-disk shape of docindex.rules.yml
type rulesFile struct {
	Exact map[string]string `yaml:"exact"`
	Rules []Rule            `yaml:"rules"`
}

// LoadRules merges the rules file at path over the built-in defaults. A
// missing file yields the defaults alone; a malformed file is an error.
func LoadRules(path string) (map[string]string, []Rule, error) {
	exact := DefaultExactTable()
	rules := DefaultRules()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var file rulesFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
			}
			for name, category := range file.Exact {
				exact[strings.ToLower(name)] = category
			}
			rules = append(rules, file.Rules...)
		} else if !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
		}
	}

	for i := range rules {
		if err := rules[i].compile(); err != nil {
			return nil, nil, err
		}
	}
	return exact, rules, nil
}
