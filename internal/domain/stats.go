package domain

// CategoryStats holds per-category aggregates for the stats report
type CategoryStats struct {
	Documents  int
	MDTokens   int
	JSONTokens int
	WithJSON   int
}

// RegistryStats is the aggregate view over a registry snapshot
type RegistryStats struct {
	DocumentCount int
	Categories    map[string]CategoryStats
	MDTokens      int
	JSONTokens    int
	JSONCoverage  float64 // entries with a JSON twin / total entries
	TokenSavings  float64 // 1 - Σjson/Σmd, 0 when either sum is 0
}

// Stats computes aggregates over the registry. Callers that need a
// consistent view while the writer is active should pass a Snapshot.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{
		Categories: make(map[string]CategoryStats, len(r.Documents)),
	}

	withJSON := 0
	for category, byID := range r.Documents {
		cs := CategoryStats{}
		for _, entry := range byID {
			cs.Documents++
			cs.MDTokens += entry.Tokens.MD
			cs.JSONTokens += entry.Tokens.JSON
			if entry.HasJSON {
				cs.WithJSON++
			}
		}
		stats.Categories[category] = cs
		stats.DocumentCount += cs.Documents
		stats.MDTokens += cs.MDTokens
		stats.JSONTokens += cs.JSONTokens
		withJSON += cs.WithJSON
	}

	if stats.DocumentCount > 0 {
		stats.JSONCoverage = float64(withJSON) / float64(stats.DocumentCount)
	}
	if stats.MDTokens > 0 && stats.JSONTokens > 0 {
		stats.TokenSavings = 1 - float64(stats.JSONTokens)/float64(stats.MDTokens)
	}
	return stats
}
