package domain

import "fmt"

// WarningKind identifies the non-fatal conditions surfaced on reports
type WarningKind string

const (
	WarnRegistryCorrupt     WarningKind = "registry-corrupt"
	WarnPlacementConflict   WarningKind = "placement-conflict"
	WarnConversionShortfall WarningKind = "conversion-shortfall"
	WarnSlowTier            WarningKind = "slow-tier"
	WarnSkippedFile         WarningKind = "skipped-file"
)

// Warning is a non-fatal condition recorded during a run. Warnings are
// values carried on reports, not log side effects, so every surface (CLI,
// MCP) can render them.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

// Warningf builds a warning with a formatted detail message.
func Warningf(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
