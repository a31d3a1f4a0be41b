package domain

import (
	"reflect"
	"testing"
)

const sampleDoc = `---
title: "Payment Service PRD"
status: draft
---
# Payment Service PRD

Intro paragraph.

## Goals

- Support card payments
- Support refunds

## Rollout

| Phase | Date |
|-------|------|
| Beta  | Q3   |

TODO: confirm rollout dates

## Open Items
`

func TestParseOutline_Structure(t *testing.T) {
	outline := ParseOutline(sampleDoc)

	if outline.Title != "Payment Service PRD" {
		t.Errorf("title = %q", outline.Title)
	}
	if outline.Metadata["status"] != "draft" {
		t.Errorf("metadata = %v", outline.Metadata)
	}

	if len(outline.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d: %+v", len(outline.Sections), outline.Sections)
	}

	goals := outline.Sections[1]
	if goals.Title != "Goals" || goals.Level != 2 {
		t.Errorf("goals section wrong: %+v", goals)
	}
	if want := []string{"Support card payments", "Support refunds"}; !reflect.DeepEqual(goals.Bullets, want) {
		t.Errorf("goals bullets = %v, want %v", goals.Bullets, want)
	}

	rollout := outline.Sections[2]
	if len(rollout.TableRows) != 3 {
		t.Errorf("expected 3 table rows, got %v", rollout.TableRows)
	}

	if len(outline.Markers) != 1 || outline.Markers[0] != "TODO: confirm rollout dates" {
		t.Errorf("markers = %v", outline.Markers)
	}
}

func TestParseOutline_EmptySectionDetection(t *testing.T) {
	outline := ParseOutline(sampleDoc)

	last := outline.Sections[len(outline.Sections)-1]
	if last.Title != "Open Items" {
		t.Fatalf("last section = %q", last.Title)
	}
	if !last.IsEmpty() {
		t.Error("heading with no body should be empty")
	}
	if outline.Sections[0].IsEmpty() {
		t.Error("section with prose should not be empty")
	}
}

func TestParseOutline_CodeFenceBody(t *testing.T) {
	doc := "# Usage\n\n```go\nfmt.Println(\"hi\")\n```\n"
	outline := ParseOutline(doc)

	if len(outline.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(outline.Sections))
	}
	if outline.Sections[0].IsEmpty() {
		t.Error("code inside a fence counts as body")
	}
	if len(outline.Sections[0].Bullets) != 0 {
		t.Errorf("fence content must not be parsed as bullets: %v", outline.Sections[0].Bullets)
	}
}

func TestParseOutline_UnterminatedFrontmatter(t *testing.T) {
	doc := "---\nbroken frontmatter\n# Heading\n\nbody\n"
	outline := ParseOutline(doc)

	if len(outline.Metadata) != 0 {
		t.Errorf("unterminated frontmatter should yield no metadata: %v", outline.Metadata)
	}
	if outline.Title != "Heading" {
		t.Errorf("title = %q", outline.Title)
	}
}

func TestParseOutline_TitleFromFrontmatter(t *testing.T) {
	doc := "---\ntitle: Fallback Title\n---\n\nNo headings here.\n"
	outline := ParseOutline(doc)

	if outline.Title != "Fallback Title" {
		t.Errorf("title = %q", outline.Title)
	}
}

func TestExtractDependencies(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			"wiki links",
			"See [[Roadmap]] and [[API Design|the API doc]].",
			[]string{"roadmap", "api-design"},
		},
		{
			"relative md links",
			"Read [the plan](./planning/roadmap.md) and [arch](../architecture/overview.md).",
			[]string{"roadmap", "overview"},
		},
		{
			"deduplicated",
			"[[roadmap]] then [again](./roadmap.md)",
			[]string{"roadmap"},
		},
		{
			"external links ignored",
			"See [docs](https://example.com/page) instead.",
			nil,
		},
		{
			"external md links ignored",
			"See [hosted guide](https://example.com/docs/guide.md) but keep [local](./guide.md).",
			[]string{"guide"},
		},
		{
			"none",
			"Plain text only.",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDependencies(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractDependencies() = %v, want %v", got, tt.want)
			}
		})
	}
}
