package regime

import "math"

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Window is one (train, test) pair of contiguous index ranges over a Series.
// Ranges are half-open. The test slice starts exactly where the train slice
// ends: there is never a gap between them.
type Window struct {
	Index      int `json:"index"`       // position in the schedule (0-based)
	TrainStart int `json:"train_start"` // inclusive
	TrainEnd   int `json:"train_end"`   // exclusive, == TestStart
	TestStart  int `json:"test_start"`  // inclusive
	TestEnd    int `json:"test_end"`    // exclusive
}

// TrainLen returns the training slice length (the window size)
func (w Window) TrainLen() int { return w.TrainEnd - w.TrainStart }

// TestLen returns the test slice length (the step size)
func (w Window) TestLen() int { return w.TestEnd - w.TestStart }

// RankDecision is the cointegration rank chosen for one window. Zero means
// "no cointegration found": the window is excluded from forecasting and from
// rank-instability accounting.
type RankDecision int

// Cointegrated reports whether the window carries any long-run relationship
func (r RankDecision) Cointegrated() bool { return r > 0 }

// WarningCode represents structured warning types recorded on a run report
type WarningCode string

const (
	WarningInsufficientData      WarningCode = "INSUFFICIENT_DATA"      // series too short for one window
	WarningNoValidWindow         WarningCode = "NO_VALID_WINDOW"        // windows attempted, none with rank > 0
	WarningWindowSkipped         WarningCode = "WINDOW_SKIPPED"         // collaborator failure, window dropped
	WarningDegenerateErrorMean   WarningCode = "DEGENERATE_ERROR_MEAN"  // mean forecast error exactly zero
	WarningVolatilityUnavailable WarningCode = "VOLATILITY_UNAVAILABLE" // adaptive sizing kept previous size
)

// ============================================================================
// RUN OUTPUT
// ============================================================================

// RegimeMetrics is the only externally visible result of a run.
//
// INVARIANTS:
// - all three fields are NaN together (insufficient data), or
// - all three fields are 0 together (no rank>0 window), or
// - RankInstability is in [0,1] and
//   RegimeStabilityIndex == 0.7*RankInstability + 0.3*errorVolatility
type RegimeMetrics struct {
	RegimeStabilityIndex float64 `json:"regime_stability_index"`
	RankInstability      float64 `json:"rank_instability"`
	NormalizedMSE        float64 `json:"normalized_mse"`
}

// InsufficientDataMetrics returns the all-NaN result for series too short to
// schedule a single window
func InsufficientDataMetrics() RegimeMetrics {
	nan := math.NaN()
	return RegimeMetrics{
		RegimeStabilityIndex: nan,
		RankInstability:      nan,
		NormalizedMSE:        nan,
	}
}

// IsInsufficientData reports whether m is the all-NaN insufficient-data result
func (m RegimeMetrics) IsInsufficientData() bool {
	return math.IsNaN(m.RegimeStabilityIndex) &&
		math.IsNaN(m.RankInstability) &&
		math.IsNaN(m.NormalizedMSE)
}
