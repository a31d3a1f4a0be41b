package domain

import "time"

// Tier identifies one stage of the four-stage cascading classifier
type Tier int

const (
	TierExact    Tier = 1 // static filename/title table
	TierPattern  Tier = 2 // ordered keyword/pattern rules
	TierSemantic Tier = 3 // external classifier
	TierDerive   Tier = 4 // folder creation manager derives a category
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPattern:
		return "pattern"
	case TierSemantic:
		return "semantic"
	case TierDerive:
		return "derive"
	default:
		return "unknown"
	}
}

// Budget returns the monitoring target for a tier. Budgets are not hard
// timeouts: an overrunning tier still returns its result, the overrun is
// only counted.
func (t Tier) Budget() time.Duration {
	switch t {
	case TierExact:
		return 10 * time.Millisecond
	case TierPattern:
		return 20 * time.Millisecond
	case TierSemantic:
		return 40 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

// ClassificationResult is the outcome of routing one document
type ClassificationResult struct {
	Tier       Tier
	Category   string
	Confidence float64
	Latency    time.Duration
}

// LatencyMs returns the routing latency in milliseconds for reports.
func (c ClassificationResult) LatencyMs() float64 {
	return float64(c.Latency) / float64(time.Millisecond)
}
