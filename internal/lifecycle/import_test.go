package lifecycle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docindex/internal/adapters/registryfile"
	"docindex/internal/domain"
)

// wordTokenizer keeps token counts deterministic in tests.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }
func (wordTokenizer) Name() string          { return "words" }

func writeFixture(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func newTestManager(t *testing.T, root string) *Manager {
	t.Helper()
	store := registryfile.NewStore(filepath.Join(root, ".docindex", "registry.json"))
	m, err := New(Config{
		Root:      root,
		TwinsDir:  filepath.Join(root, ".docindex", "twins"),
		Store:     store,
		Locker:    registryfile.NewFileLock(store.Path()),
		Tokenizer: wordTokenizer{},
		Workers:   1,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

const sprintGoalsDoc = `# Sprint Goals

Ship the beta and close the remaining launch blockers.
`

const pricingDoc = `# Pricing Notes

Our pricing and revenue targets for the coming year, by segment.
`

func TestImport_RegistersTree(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, "pricing-notes.md", pricingDoc)
	writeFixture(t, root, "planning/diagram.png", "not markdown")

	m := newTestManager(t, root)
	report, err := m.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if report.Scanned != 2 {
		t.Errorf("scanned = %d", report.Scanned)
	}
	if report.Imported != 2 {
		t.Errorf("imported = %d", report.Imported)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v", report.Errors)
	}

	// Folder placement is an implicit exact match; the root-level file
	// routes through the pattern tier.
	if report.Routed[domain.TierExact] != 1 || report.Routed[domain.TierPattern] != 1 {
		t.Errorf("routed = %v", report.Routed)
	}

	snapshot := m.Snapshot()
	if entry, ok := snapshot.Get("planning", "sprint-goals"); !ok || entry.Path != "planning/sprint-goals.md" {
		t.Errorf("planning entry missing: %+v ok=%v", entry, ok)
	}
	entry, ok := snapshot.Get("business-strategy", "pricing-notes")
	if !ok {
		t.Fatal("pricing entry not routed to business-strategy")
	}
	if !entry.HasJSON || entry.Tokens.MD == 0 {
		t.Errorf("entry not converted: %+v", entry)
	}

	// Twin written under the category mirror.
	twinPath := filepath.Join(root, ".docindex", "twins", "business-strategy", "pricing-notes.json")
	if _, err := os.Stat(twinPath); err != nil {
		t.Errorf("twin not written: %v", err)
	}
}

func TestImport_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, "pricing-notes.md", pricingDoc)

	m := newTestManager(t, root)
	if _, err := m.Import(context.Background()); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}

	registryPath := filepath.Join(root, ".docindex", "registry.json")
	before, err := os.ReadFile(registryPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Fresh manager over the same tree: everything is already registered.
	m2 := newTestManager(t, root)
	report, err := m2.Import(context.Background())
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if report.Imported != 0 {
		t.Errorf("unchanged tree re-imported %d entries", report.Imported)
	}
	if report.Skipped != report.Scanned {
		t.Errorf("skipped = %d, scanned = %d", report.Skipped, report.Scanned)
	}

	after, err := os.ReadFile(registryPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("re-import of an unchanged tree rewrote the registry")
	}
}

func TestImport_SkipsDotDirectories(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, ".obsidian/workspace.md", "# Internal\n\nstate\n")

	m := newTestManager(t, root)
	report, err := m.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Scanned != 1 || report.Imported != 1 {
		t.Errorf("dot directory not skipped: scanned=%d imported=%d", report.Scanned, report.Imported)
	}
}

func TestImport_PlacementConflictIsSurfacedNotResolved(t *testing.T) {
	root := t.TempDir()
	// Same derived (category, id), different paths.
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, "planning/archive/sprint-goals.md", sprintGoalsDoc)

	m := newTestManager(t, root)
	report, err := m.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if report.Imported != 1 {
		t.Errorf("imported = %d", report.Imported)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %v", report.Conflicts)
	}
	if report.Conflicts[0].Kind != domain.WarnPlacementConflict {
		t.Errorf("conflict kind = %q", report.Conflicts[0].Kind)
	}

	// The winner keeps its registration.
	if entry, ok := m.Snapshot().Get("planning", "sprint-goals"); !ok || entry.Path == "" {
		t.Errorf("surviving entry lost: %+v ok=%v", entry, ok)
	}
}

func TestImport_UnreadableFileSkipsNotAborts(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, "planning/locked.md", "# Locked\n\nbody\n")
	if err := os.Chmod(filepath.Join(root, "planning/locked.md"), 0o000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	t.Cleanup(func() {
		os.Chmod(filepath.Join(root, "planning/locked.md"), 0o644)
	})
	if os.Getuid() == 0 {
		t.Skip("chmod 000 is not enforced for root")
	}

	m := newTestManager(t, root)
	report, err := m.Import(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not abort the batch: %v", err)
	}
	if report.Imported != 1 {
		t.Errorf("imported = %d", report.Imported)
	}
	if len(report.Errors) != 1 {
		t.Errorf("expected 1 file error, got %v", report.Errors)
	}
}

func TestImport_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(t, root)
	if _, err := m.Import(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestImport_EmptyTree(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	report, err := m.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Scanned != 0 || report.Imported != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestStats_AfterImport(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)
	writeFixture(t, root, "pricing-notes.md", pricingDoc)

	m := newTestManager(t, root)
	if _, err := m.Import(context.Background()); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	stats := m.Stats()
	if stats.Registry.DocumentCount != 2 {
		t.Errorf("document count = %d", stats.Registry.DocumentCount)
	}
	if stats.Registry.MDTokens == 0 {
		t.Error("md token sum missing")
	}
	if stats.Tokenizer != "words" {
		t.Errorf("tokenizer = %q", stats.Tokenizer)
	}
	if stats.Router.TierUses[domain.TierPattern] != 1 {
		t.Errorf("router stats = %+v", stats.Router)
	}
}

func TestMap_AfterImport(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "planning/sprint-goals.md", sprintGoalsDoc)

	m := newTestManager(t, root)
	if _, err := m.Import(context.Background()); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	tree := m.Map()
	if len(tree.Children) != 1 || tree.Children[0].Name != "planning" {
		t.Fatalf("map tree = %+v", tree.Children)
	}
	docs := tree.Children[0].Children
	if len(docs) != 1 || docs[0].Name != "sprint-goals" {
		t.Errorf("documents = %+v", docs)
	}
}
