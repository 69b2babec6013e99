package regime

import (
	"github.com/montanaflynn/stats"
)

// Weights blending rank-switch frequency and forecast-error dispersion into
// the stability index. Rank switches are privileged over error dispersion.
const (
	rankInstabilityWeight = 0.7
	errorVolatilityWeight = 0.3
)

const noPreviousRankSentinel = -1

// RunAccumulator collects per-window rank decisions and forecast errors over
// one run. It is a plain value threaded through the window loop: create at
// run start, Record once per rank>0 window, Finalize once after the
// scheduler is exhausted, then discard. Not safe for concurrent use; each
// run owns exactly one accumulator.
type RunAccumulator struct {
	processed   int
	rankChanges int
	prevRank    int
	errors      []float64
	errorSum    float64
}

// NewRunAccumulator creates an empty accumulator with the "no previous rank"
// sentinel in place
func NewRunAccumulator() *RunAccumulator {
	return &RunAccumulator{prevRank: noPreviousRankSentinel}
}

// Record accounts for one rank>0 window and its forecast MSE. Rank 0 windows
// must not be recorded; they carry no regime information.
func (a *RunAccumulator) Record(rank RankDecision, mse float64) {
	if !rank.Cointegrated() {
		return
	}
	a.processed++
	if a.prevRank != noPreviousRankSentinel && a.prevRank != int(rank) {
		a.rankChanges++
	}
	a.prevRank = int(rank)
	a.errors = append(a.errors, mse)
	a.errorSum += mse
}

// Processed returns the count of rank>0 windows recorded so far
func (a *RunAccumulator) Processed() int {
	return a.processed
}

// Errors returns a copy of the recorded per-window forecast MSE sequence in
// order; mutations by the caller never reach the accumulator
func (a *RunAccumulator) Errors() []float64 {
	out := make([]float64, len(a.errors))
	copy(out, a.errors)
	return out
}

// Finalize computes the three regime metrics from the accumulated state.
// With zero processed windows all metrics are 0; that outcome is distinct
// from the insufficient-data result, which is all NaN and produced before
// any accumulator exists.
//
// errorVolatility is the coefficient of variation of the error sequence
// (sample standard deviation over mean). Two degenerate cases get explicit
// policies instead of non-finite arithmetic:
//   - a single recorded error has no sample deviation: volatility is 0
//   - a zero error mean (all forecasts exact): volatility is 0, flagged
//     with WarningDegenerateErrorMean
func (a *RunAccumulator) Finalize() (RegimeMetrics, []WarningCode) {
	if a.processed == 0 {
		return RegimeMetrics{}, nil
	}

	rankInstability := float64(a.rankChanges) / float64(a.processed)
	normalizedMSE := a.errorSum / float64(a.processed)

	var warnings []WarningCode
	errorVolatility := 0.0
	if len(a.errors) > 1 {
		mean, err := stats.Mean(stats.Float64Data(a.errors))
		if err == nil && mean == 0 {
			warnings = append(warnings, WarningDegenerateErrorMean)
		} else if err == nil {
			sd, sdErr := stats.StandardDeviationSample(stats.Float64Data(a.errors))
			if sdErr == nil {
				errorVolatility = sd / mean
			}
		}
	}

	metrics := RegimeMetrics{
		RegimeStabilityIndex: rankInstabilityWeight*rankInstability + errorVolatilityWeight*errorVolatility,
		RankInstability:      rankInstability,
		NormalizedMSE:        normalizedMSE,
	}
	return metrics, warnings
}
