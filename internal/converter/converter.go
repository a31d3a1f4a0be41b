// Package converter produces token-optimized JSON twins of markdown
// documents, with drill-down references back to the source.
package converter

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"docindex/internal/domain"
	"docindex/internal/ports"
)

// DefaultTargetRatio is the compression target: twin tokens should stay
// at or below this fraction of the source tokens. A missed target is a
// warning, never a failure.
const DefaultTargetRatio = 0.15

const (
	maxBulletsPerSection = 5
	maxRowsPerSection    = 4
	maxBulletLength      = 120
)

// SourceRef points from a twin back to the full source content
type SourceRef struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

// TwinSection summarizes one section and references its line range for
// drill-down retrieval.
type TwinSection struct {
	Title   string   `json:"t"`
	Level   int      `json:"l,omitempty"`
	Range   [2]int   `json:"r"` // 1-based start and end line in the source
	Bullets []string `json:"b,omitempty"`
	Rows    []string `json:"tbl,omitempty"`
}

// Twin is the JSON, token-optimized counterpart of a markdown document.
// Field names are deliberately short; the twin exists to be cheap to
// re-read, not to be pretty.
type Twin struct {
	Title    string            `json:"title,omitempty"`
	Metadata map[string]string `json:"meta,omitempty"`
	Source   SourceRef         `json:"src"`
	Sections []TwinSection     `json:"sec,omitempty"`
}

// Result is the outcome of converting one document
type Result struct {
	Twin       Twin
	JSON       []byte // marshaled twin
	MDTokens   int
	JSONTokens int
	Ratio      float64 // jsonTokens / mdTokens
	Warning    *domain.Warning
}

// Converter turns markdown documents into JSON twins using one
// tokenizer, so ratios stay comparable across a registry instance.
type Converter struct {
	tokenizer   ports.Tokenizer
	targetRatio float64
}

// Option configures the Converter
type Option func(*Converter)

// WithTargetRatio overrides the compression target.
func WithTargetRatio(ratio float64) Option {
	return func(c *Converter) {
		if ratio > 0 {
			c.targetRatio = ratio
		}
	}
}

// New creates a Converter backed by the given tokenizer.
func New(tokenizer ports.Tokenizer, opts ...Option) *Converter {
	c := &Converter{
		tokenizer:   tokenizer,
		targetRatio: DefaultTargetRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToJSON builds the twin for a document. path is the source location
// recorded in the drill-down reference, relative to the documents root.
// Conversion is pure: no shared mutable state, safe to run in parallel
// across files.
func (c *Converter) ToJSON(path, content string) (*Result, error) {
	outline := domain.ParseOutline(content)

	twin := Twin{
		Title:  outline.Title,
		Source: SourceRef{Path: path, Lines: outline.LineCount},
	}
	if len(outline.Metadata) > 0 {
		twin.Metadata = outline.Metadata
	}

	for _, section := range outline.Sections {
		twin.Sections = append(twin.Sections, summarizeSection(section))
	}

	data, err := json.Marshal(twin)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal twin for %s: %w", path, err)
	}

	result := &Result{
		Twin:       twin,
		JSON:       data,
		MDTokens:   c.tokenizer.Count(content),
		JSONTokens: c.tokenizer.Count(string(data)),
	}
	if result.MDTokens > 0 {
		result.Ratio = float64(result.JSONTokens) / float64(result.MDTokens)
	}
	if result.Ratio > c.targetRatio {
		w := domain.Warningf(domain.WarnConversionShortfall,
			"%s: twin is %.0f%% of source tokens (target %.0f%%)",
			path, result.Ratio*100, c.targetRatio*100)
		result.Warning = &w
	}
	return result, nil
}

func summarizeSection(section domain.Section) TwinSection {
	ts := TwinSection{
		Title: section.Title,
		Range: [2]int{section.StartLine, section.EndLine},
	}
	if section.Level > 1 {
		ts.Level = section.Level
	}

	for _, bullet := range section.Bullets {
		if len(ts.Bullets) == maxBulletsPerSection {
			break
		}
		ts.Bullets = append(ts.Bullets, truncate(bullet, maxBulletLength))
	}

	for _, row := range section.TableRows {
		if len(ts.Rows) == maxRowsPerSection {
			break
		}
		if isDividerRow(row) {
			continue
		}
		ts.Rows = append(ts.Rows, row)
	}
	return ts
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func isDividerRow(row string) bool {
	return strings.Trim(row, "|-: ") == ""
}

// FromJSON regenerates a human-readable stub from a twin. The stub is
// for consistency checking only; this direction is intentionally lossy
// and never reconstructs the original.
func (c *Converter) FromJSON(data []byte) (string, error) {
	var twin Twin
	if err := json.Unmarshal(data, &twin); err != nil {
		return "", fmt.Errorf("failed to parse twin: %w", err)
	}

	var sb strings.Builder
	if twin.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", twin.Title)
	}
	fmt.Fprintf(&sb, "> stub of %s (%d lines)\n", twin.Source.Path, twin.Source.Lines)

	for _, section := range twin.Sections {
		level := section.Level
		if level < 2 {
			level = 2
		}
		fmt.Fprintf(&sb, "\n%s %s\n", strings.Repeat("#", level), section.Title)
		fmt.Fprintf(&sb, "<!-- lines %d-%d -->\n", section.Range[0], section.Range[1])
		for _, bullet := range section.Bullets {
			fmt.Fprintf(&sb, "- %s\n", bullet)
		}
		for _, row := range section.Rows {
			fmt.Fprintf(&sb, "%s\n", row)
		}
	}
	return sb.String(), nil
}
