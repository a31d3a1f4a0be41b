package converter

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"docindex/internal/domain"
)

// wordTokenizer makes token counts predictable in tests.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }
func (wordTokenizer) Name() string          { return "words" }

const sourceDoc = `# Checkout Flow

The checkout flow handles cart review, payment, and confirmation for
every storefront. This paragraph exists to give the source document
enough bulk that the structural twin lands well under the compression
target, the way a real prose-heavy design document would.

## Steps

- Review cart contents
- Enter payment details
- Confirm the order
- Receive the receipt by email

## Error Rates

| Step    | Rate |
|---------|------|
| Payment | 2.1% |
| Confirm | 0.4% |
`

func TestToJSON_TwinStructure(t *testing.T) {
	c := New(wordTokenizer{})

	result, err := c.ToJSON("design/checkout-flow.md", sourceDoc)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	twin := result.Twin
	if twin.Title != "Checkout Flow" {
		t.Errorf("title = %q", twin.Title)
	}
	if twin.Source.Path != "design/checkout-flow.md" {
		t.Errorf("source path = %q", twin.Source.Path)
	}
	if twin.Source.Lines == 0 {
		t.Error("source line count missing")
	}
	if len(twin.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(twin.Sections))
	}

	steps := twin.Sections[1]
	if steps.Title != "Steps" || len(steps.Bullets) != 4 {
		t.Errorf("steps section = %+v", steps)
	}
	if steps.Range[0] == 0 || steps.Range[1] < steps.Range[0] {
		t.Errorf("bad drill-down range: %v", steps.Range)
	}

	rates := twin.Sections[2]
	// Divider row dropped, data rows kept.
	if len(rates.Rows) != 3 {
		t.Errorf("table rows = %v", rates.Rows)
	}
	for _, row := range rates.Rows {
		if strings.Trim(row, "|-: ") == "" {
			t.Errorf("divider row survived: %q", row)
		}
	}
}

func TestToJSON_RoundTripsAsJSON(t *testing.T) {
	c := New(wordTokenizer{})

	result, err := c.ToJSON("a.md", sourceDoc)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded Twin
	if err := json.Unmarshal(result.JSON, &decoded); err != nil {
		t.Fatalf("twin is not valid JSON: %v", err)
	}
	if decoded.Title != result.Twin.Title || len(decoded.Sections) != len(result.Twin.Sections) {
		t.Errorf("decoded twin differs: %+v", decoded)
	}
}

func TestToJSON_CapsBullets(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Long List\n\n## Items\n\n")
	for i := 0; i < 20; i++ {
		sb.WriteString("- item ")
		sb.WriteString(strings.Repeat("x", 200))
		sb.WriteString("\n")
	}

	c := New(wordTokenizer{})
	result, err := c.ToJSON("list.md", sb.String())
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	items := result.Twin.Sections[1]
	if len(items.Bullets) != maxBulletsPerSection {
		t.Errorf("expected %d bullets, got %d", maxBulletsPerSection, len(items.Bullets))
	}
	for _, bullet := range items.Bullets {
		if len(bullet) > maxBulletLength {
			t.Errorf("bullet not truncated: %d chars", len(bullet))
		}
	}
}

func TestToJSON_TruncatesBulletsOnRuneBoundary(t *testing.T) {
	// One leading ASCII byte shifts the multi-byte runes off the byte
	// limit, so a byte-indexed cut would land mid-rune.
	bullet := "x" + strings.Repeat("日", 60)
	doc := "# Doc\n\n## Items\n\n- " + bullet + "\n"

	c := New(wordTokenizer{})
	result, err := c.ToJSON("doc.md", doc)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	got := result.Twin.Sections[1].Bullets[0]
	if len(got) > maxBulletLength {
		t.Errorf("bullet not truncated: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("replacement character in bullet: %q", got)
	}
}

func TestToJSON_ShortfallIsWarningNotError(t *testing.T) {
	// A tiny document cannot compress to 15% of itself.
	c := New(wordTokenizer{})

	result, err := c.ToJSON("tiny.md", "# Tiny\n\nTwo words.\n")
	if err != nil {
		t.Fatalf("shortfall must not be an error: %v", err)
	}
	if result.Warning == nil {
		t.Fatal("expected a conversion shortfall warning")
	}
	if result.Warning.Kind != domain.WarnConversionShortfall {
		t.Errorf("warning kind = %q", result.Warning.Kind)
	}
	if result.JSON == nil {
		t.Error("twin must still be produced on shortfall")
	}
}

func TestToJSON_MeetsTargetOnProseHeavyDoc(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Big Doc\n\n## Body\n\nkept line\n\n")
	for i := 0; i < 400; i++ {
		sb.WriteString("filler prose line that only adds source tokens here\n")
	}

	c := New(wordTokenizer{})
	result, err := c.ToJSON("big.md", sb.String())
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if result.Warning != nil {
		t.Errorf("unexpected shortfall warning: %s", result.Warning)
	}
	if result.Ratio <= 0 || result.Ratio > DefaultTargetRatio {
		t.Errorf("ratio = %.4f", result.Ratio)
	}
}

func TestFromJSON_Stub(t *testing.T) {
	c := New(wordTokenizer{})
	result, err := c.ToJSON("design/checkout-flow.md", sourceDoc)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	stub, err := c.FromJSON(result.JSON)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !strings.Contains(stub, "# Checkout Flow") {
		t.Errorf("stub missing title:\n%s", stub)
	}
	if !strings.Contains(stub, "design/checkout-flow.md") {
		t.Errorf("stub missing source reference:\n%s", stub)
	}
	if !strings.Contains(stub, "- Review cart contents") {
		t.Errorf("stub missing bullets:\n%s", stub)
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	c := New(wordTokenizer{})
	if _, err := c.FromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed twin")
	}
}
