// Package folders decides where unmatched documents land: it derives
// candidate category names and deduplicates them against existing
// categories so near-identical folders never accumulate.
package folders

import (
	"sort"
	"strings"
	"sync"

	"docindex/internal/domain"
)

// DefaultSimilarityThreshold is the normalized edit-distance ratio above
// which a candidate category is folded into an existing one. Exposed as
// configuration; this is a documented default, not a claimed optimum.
const DefaultSimilarityThreshold = 0.8

// maxSlugWords caps derived category slugs so long titles don't become
// unwieldy folder names.
const maxSlugWords = 3

// stopwords are dropped when deriving a category slug from free text.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "notes": true,
	"of": true, "on": true, "the": true, "to": true, "with": true,
}

// Consolidation records a candidate category that was folded into an
// existing one instead of creating a near-duplicate folder.
type Consolidation struct {
	Candidate  string
	Existing   string
	Similarity float64
}

// Counters reports folder manager activity for the stats surface
type Counters struct {
	Created        int
	Reused         int
	Consolidations []Consolidation
}

// Manager implements the folder creation strategy behind routing tier 4.
type Manager struct {
	threshold float64

	mu             sync.Mutex
	known          []string // sorted existing category slugs
	created        int
	reused         int
	consolidations []Consolidation
}

// NewManager creates a Manager seeded with the existing categories.
func NewManager(existing []string, threshold float64) *Manager {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	known := make([]string, 0, len(existing))
	seen := map[string]bool{}
	for _, category := range existing {
		slug := domain.Slugify(category)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		known = append(known, slug)
	}
	sort.Strings(known)
	return &Manager{threshold: threshold, known: known}
}

// Resolve derives a category for the given content hint (a title or
// filename stem). If the derived slug is similar enough to an existing
// category, that category is reused and a consolidation candidate is
// recorded; otherwise the new category is registered and returned.
func (m *Manager) Resolve(contentHint string) string {
	candidate := DeriveSlug(contentHint)
	if candidate == "" {
		candidate = "uncategorized"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	best, bestScore := "", 0.0
	for _, category := range m.known {
		if score := domain.Similarity(candidate, category); score > bestScore {
			best, bestScore = category, score
		}
	}

	if best != "" && bestScore >= m.threshold {
		m.reused++
		if candidate != best {
			m.consolidations = append(m.consolidations, Consolidation{
				Candidate:  candidate,
				Existing:   best,
				Similarity: bestScore,
			})
		}
		return best
	}

	m.created++
	m.known = append(m.known, candidate)
	sort.Strings(m.known)
	return candidate
}

// Observe registers a category that came into existence outside tier 4
// (folder hints, tiers 1-3) so later Resolve calls can reuse it.
func (m *Manager) Observe(category string) {
	slug := domain.Slugify(category)
	if slug == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, known := range m.known {
		if known == slug {
			return
		}
	}
	m.known = append(m.known, slug)
	sort.Strings(m.known)
}

// Counters returns a copy of the activity counters.
func (m *Manager) Counters() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Counters{
		Created:        m.created,
		Reused:         m.reused,
		Consolidations: append([]Consolidation(nil), m.consolidations...),
	}
}

// DeriveSlug builds a category slug from free text: slugify, drop
// stopwords, keep the first few significant words. Deterministic for
// identical input.
func DeriveSlug(hint string) string {
	var words []string
	for _, word := range strings.Split(domain.Slugify(hint), "-") {
		if word == "" || stopwords[word] {
			continue
		}
		words = append(words, word)
		if len(words) == maxSlugWords {
			break
		}
	}
	return strings.Join(words, "-")
}
