package app

import (
	"regimescope/domain/core"
	"regimescope/domain/regime"
)

// AnalysisMode names the scheduling variant of a run
type AnalysisMode string

const (
	ModeFixed    AnalysisMode = "fixed"
	ModeAdaptive AnalysisMode = "adaptive"
)

// WindowDecision records what happened to one scheduled window
type WindowDecision struct {
	Window  regime.Window       `json:"window"`
	Rank    regime.RankDecision `json:"rank"`
	MSE     float64             `json:"mse,omitempty"`     // present only for rank > 0
	Skipped bool                `json:"skipped,omitempty"` // collaborator failure under SkipWindow
	Reason  string              `json:"reason,omitempty"`  // failure description when skipped
}

// AnalysisReport is the in-memory audit trail of one run: the configuration
// echo, every window decision, and structured warnings. It is returned
// alongside the metrics and never persisted.
type AnalysisReport struct {
	RunID            core.RunID           `json:"run_id"`
	Mode             AnalysisMode         `json:"mode"`
	WindowsAttempted int                  `json:"windows_attempted"`
	WindowsProcessed int                  `json:"windows_processed"` // rank > 0 and forecast scored
	WindowsSkipped   int                  `json:"windows_skipped"`   // dropped on collaborator failure
	Decisions        []WindowDecision     `json:"decisions"`
	Warnings         []regime.WarningCode `json:"warnings,omitempty"`
	RuntimeMs        int64                `json:"runtime_ms"`
	CreatedAt        core.Timestamp       `json:"created_at"`
}

// NewAnalysisReport creates an empty report for a fresh run
func NewAnalysisReport(mode AnalysisMode) *AnalysisReport {
	return &AnalysisReport{
		RunID:     core.NewRunID(),
		Mode:      mode,
		CreatedAt: core.Now(),
	}
}

// AddWarning appends a warning code, keeping the first occurrence only
func (r *AnalysisReport) AddWarning(code regime.WarningCode) {
	for _, existing := range r.Warnings {
		if existing == code {
			return
		}
	}
	r.Warnings = append(r.Warnings, code)
}

// HasWarning reports whether the run recorded the given warning
func (r *AnalysisReport) HasWarning(code regime.WarningCode) bool {
	for _, existing := range r.Warnings {
		if existing == code {
			return true
		}
	}
	return false
}
