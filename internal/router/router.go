// Package router classifies documents into categories using four
// cascading match strategies of increasing cost. Routing stops at the
// first tier producing a confident match and is deterministic for
// identical (content, rule-table) pairs.
package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"docindex/internal/domain"
	"docindex/internal/folders"
	"docindex/internal/ports"
)

// DefaultConfidenceThreshold gates tier-3 classifier answers.
const DefaultConfidenceThreshold = 0.6

// Fixed confidences reported per tier so routing outcomes stay
// deterministic and comparable.
const (
	exactConfidence   = 1.0
	patternConfidence = 0.8
	deriveConfidence  = 0.0
)

// Input is one routing request: file content plus optional hints.
type Input struct {
	Filename string // base name, used by tiers 1-2
	Content  string
	Hint     string // optional content hint for tier 4 (title or stem)
}

// Stats exposes the router's monitoring counters
type Stats struct {
	TierUses         map[domain.Tier]int
	SlowTiers        map[domain.Tier]int
	ClassifierErrors int
}

// Router is the four-tier cascading classifier.
type Router struct {
	exact      map[string]string
	rules      []Rule
	classifier ports.Classifier
	folders    *folders.Manager
	threshold  float64

	mu               sync.Mutex
	tierUses         map[domain.Tier]int
	slowTiers        map[domain.Tier]int
	classifierErrors int
}

// Option configures the Router
type Option func(*Router)

// WithConfidenceThreshold overrides the tier-3 acceptance threshold.
func WithConfidenceThreshold(threshold float64) Option {
	return func(r *Router) {
		if threshold > 0 && threshold <= 1 {
			r.threshold = threshold
		}
	}
}

// WithClassifier injects the external tier-3 classifier.
func WithClassifier(classifier ports.Classifier) Option {
	return func(r *Router) {
		r.classifier = classifier
	}
}

// New creates a Router over the given tables and folder manager. rules
// must already be compiled (see LoadRules).
func New(exact map[string]string, rules []Rule, folderMgr *folders.Manager, opts ...Option) *Router {
	ordered := append([]Rule(nil), rules...)
	// Stable sort keeps declaration order within a priority, which the
	// tie-break depends on.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	r := &Router{
		exact:     exact,
		rules:     ordered,
		folders:   folderMgr,
		threshold: DefaultConfidenceThreshold,
		tierUses:  make(map[domain.Tier]int),
		slowTiers: make(map[domain.Tier]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies one document. It never fails: tier 4 always derives a
// category when nothing above it matched.
func (r *Router) Route(ctx context.Context, input Input) domain.ClassificationResult {
	start := time.Now()

	// Tier 1: exact filename/title lookup.
	tierStart := time.Now()
	if category, ok := r.exactMatch(input); ok {
		r.record(domain.TierExact, time.Since(tierStart))
		return result(domain.TierExact, category, exactConfidence, start)
	}
	r.observeBudget(domain.TierExact, time.Since(tierStart))

	// Tier 2: ordered pattern/keyword rules.
	tierStart = time.Now()
	if category, ok := r.ruleMatch(input); ok {
		r.record(domain.TierPattern, time.Since(tierStart))
		return result(domain.TierPattern, category, patternConfidence, start)
	}
	r.observeBudget(domain.TierPattern, time.Since(tierStart))

	// Tier 3: external classifier, accepted only above the threshold.
	// Any failure is treated as "no confident match", never an abort.
	tierStart = time.Now()
	if category, confidence, ok := r.classify(ctx, input.Content); ok {
		r.record(domain.TierSemantic, time.Since(tierStart))
		return result(domain.TierSemantic, category, confidence, start)
	}
	r.observeBudget(domain.TierSemantic, time.Since(tierStart))

	// Tier 4: derive a category. The filename fallback is stripped to its
	// stem so the extension never leaks into a category slug.
	tierStart = time.Now()
	hint := input.Hint
	if hint == "" {
		hint = domain.DocumentID(input.Filename)
	}
	category := r.folders.Resolve(hint)
	r.record(domain.TierDerive, time.Since(tierStart))
	return result(domain.TierDerive, category, deriveConfidence, start)
}

func result(tier domain.Tier, category string, confidence float64, start time.Time) domain.ClassificationResult {
	return domain.ClassificationResult{
		Tier:       tier,
		Category:   category,
		Confidence: confidence,
		Latency:    time.Since(start),
	}
}

// RoutePlacement runs tiers 1-2 only, for validation's placement check.
// The second return is false when neither tier matched.
func (r *Router) RoutePlacement(input Input) (string, bool) {
	if category, ok := r.exactMatch(input); ok {
		return category, true
	}
	if category, ok := r.ruleMatch(input); ok {
		return category, true
	}
	return "", false
}

func (r *Router) exactMatch(input Input) (string, bool) {
	if category, ok := r.exact[strings.ToLower(input.Filename)]; ok {
		return category, true
	}
	if title := firstHeading(input.Content); title != "" {
		if category, ok := r.exact[domain.Slugify(title)]; ok {
			return category, true
		}
	}
	return "", false
}

func (r *Router) ruleMatch(input Input) (string, bool) {
	lower := strings.ToLower(input.Content)
	filename := strings.ToLower(input.Filename)

	for i := 0; i < len(r.rules); {
		// Evaluate one priority group at a time; the best-scoring match
		// in the first group with any match wins.
		j := i
		for j < len(r.rules) && r.rules[j].Priority == r.rules[i].Priority {
			j++
		}

		bestIdx, bestHits := -1, -1
		for k := i; k < j; k++ {
			matched, hits := r.rules[k].match(filename, lower)
			if matched && hits > bestHits {
				bestIdx, bestHits = k, hits
			}
		}
		if bestIdx >= 0 {
			return r.rules[bestIdx].Category, true
		}
		i = j
	}
	return "", false
}

func (r *Router) classify(ctx context.Context, content string) (string, float64, bool) {
	if r.classifier == nil || !r.classifier.IsAvailable() {
		return "", 0, false
	}
	answer, err := r.classifier.Classify(ctx, content)
	if err != nil {
		r.mu.Lock()
		r.classifierErrors++
		r.mu.Unlock()
		return "", 0, false
	}
	if answer.Category == "" || answer.Confidence < r.threshold {
		return "", 0, false
	}
	return domain.Slugify(answer.Category), answer.Confidence, true
}

// record counts a tier hit and checks its latency budget.
func (r *Router) record(tier domain.Tier, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tierUses[tier]++
	if elapsed > tier.Budget() {
		r.slowTiers[tier]++
	}
}

// observeBudget checks the budget of a tier that did not match. Budgets
// are monitoring targets, not hard timeouts.
func (r *Router) observeBudget(tier domain.Tier, elapsed time.Duration) {
	if elapsed <= tier.Budget() {
		return
	}
	r.mu.Lock()
	r.slowTiers[tier]++
	r.mu.Unlock()
}

// Stats returns a copy of the monitoring counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{
		TierUses:         make(map[domain.Tier]int, len(r.tierUses)),
		SlowTiers:        make(map[domain.Tier]int, len(r.slowTiers)),
		ClassifierErrors: r.classifierErrors,
	}
	for tier, n := range r.tierUses {
		stats.TierUses[tier] = n
	}
	for tier, n := range r.slowTiers {
		stats.SlowTiers[tier] = n
	}
	return stats
}

// firstHeading returns the text of the first markdown H1, if any, without
// building a full outline.
func firstHeading(content string) string {
	for _, line := range strings.SplitN(content, "\n", 50) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
