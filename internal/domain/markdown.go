package domain

import (
	"regexp"
	"strings"
)

// Section is one heading of a markdown document together with the line
// range it spans, for drill-down references from the JSON twin.
type Section struct {
	Title     string
	Level     int
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	Bullets   []string
	TableRows []string
	BodyLines int // non-blank lines below the heading
}

// Outline is the structural summary of a markdown document
type Outline struct {
	Title     string
	Metadata  map[string]string // YAML frontmatter key: value pairs
	Sections  []Section
	Markers   []string // unresolved TODO/FIXME/TBD lines
	LineCount int
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	bulletPattern  = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)
	markerPattern  = regexp.MustCompile(`\b(TODO|FIXME|TBD|XXX)\b`)
	wikiLink       = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)
	mdLink         = regexp.MustCompile(`\]\(\.{0,2}/?([^)#]+?)\.md[^)]*\)`)
	frontmatterKV  = regexp.MustCompile(`^([A-Za-z][\w-]*)\s*:\s*(.+)$`)
)

// ParseOutline extracts the structural summary of a markdown document:
// frontmatter metadata, section headings with line ranges, key bullets and
// table rows, and unresolved completeness markers.
func ParseOutline(content string) Outline {
	lines := strings.Split(content, "\n")
	outline := Outline{
		Metadata:  map[string]string{},
		LineCount: len(lines),
	}

	start := parseFrontmatter(lines, &outline)

	var current *Section
	inCode := false
	for i := start; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			if current != nil && strings.TrimSpace(line) != "" {
				current.BodyLines++
			}
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.EndLine = i
				outline.Sections = append(outline.Sections, *current)
			}
			current = &Section{
				Title:     m[2],
				Level:     len(m[1]),
				StartLine: i + 1,
				EndLine:   len(lines),
			}
			if outline.Title == "" && len(m[1]) == 1 {
				outline.Title = m[2]
			}
			continue
		}

		if markerPattern.MatchString(line) {
			outline.Markers = append(outline.Markers, strings.TrimSpace(line))
		}

		if current == nil {
			continue
		}
		if strings.TrimSpace(line) != "" {
			current.BodyLines++
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			current.Bullets = append(current.Bullets, m[1])
		} else if isTableRow(line) {
			current.TableRows = append(current.TableRows, strings.TrimSpace(line))
		}
	}
	if current != nil {
		outline.Sections = append(outline.Sections, *current)
	}

	if outline.Title == "" {
		if t, ok := outline.Metadata["title"]; ok {
			outline.Title = t
		}
	}
	return outline
}

// parseFrontmatter fills Metadata from a leading --- block and returns the
// index of the first content line.
func parseFrontmatter(lines []string, outline *Outline) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i + 1
		}
		if m := frontmatterKV.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			outline.Metadata[strings.ToLower(m[1])] = strings.Trim(m[2], `"'`)
		}
	}
	// Unterminated frontmatter: treat the whole thing as content.
	outline.Metadata = map[string]string{}
	return 0
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") && len(trimmed) > 2
}

// IsEmpty reports whether a section has no content beyond its heading.
func (s Section) IsEmpty() bool {
	return s.BodyLines == 0
}

// ExtractDependencies returns the document ids referenced from content via
// [[wiki]] links or relative markdown links to .md files, deduplicated in
// order of first appearance.
func ExtractDependencies(content string) []string {
	var deps []string
	seen := map[string]bool{}

	add := func(raw string) {
		id := DocumentID(strings.TrimSpace(raw))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		deps = append(deps, id)
	}

	for _, m := range wikiLink.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, m := range mdLink.FindAllStringSubmatch(content, -1) {
		// External URLs are not dependencies, even when they end in .md.
		if strings.Contains(m[1], "://") {
			continue
		}
		// Keep only the base name; links may point into other categories.
		parts := strings.Split(m[1], "/")
		add(parts[len(parts)-1])
	}
	return deps
}
