package app

import (
	"context"
	"fmt"

	"regimescope/domain/regime"
	"regimescope/internal/errors"
	"regimescope/ports"
)

// Lag order and trend assumption of the rank test are fixed for every
// window; varying them across windows would make rank decisions
// incomparable.
const (
	cointegrationLagOrder = 4
	cointegrationTrend    = ports.TrendConstant
)

// RankDetector determines the cointegration rank of a training slice. It
// runs the external test, divides each raw statistic by its finite-sample
// (Bartlett-type) correction factor, and counts how many corrected
// statistics strictly exceed their critical values. That count IS the rank:
// candidates are tallied in ascending order with no stop at the first
// failure.
type RankDetector struct {
	coint ports.CointegrationPort
}

// NewRankDetector creates a detector over the given cointegration test
func NewRankDetector(coint ports.CointegrationPort) *RankDetector {
	return &RankDetector{coint: coint}
}

// Detect returns the rank for one training slice. It is a pure function of
// its inputs; a collaborator failure surfaces as a COMPUTATION_ERROR.
func (d *RankDetector) Detect(ctx context.Context, train regime.Series) (regime.RankDecision, error) {
	result, err := d.coint.Test(ctx, train, cointegrationLagOrder, cointegrationTrend)
	if err != nil {
		return 0, errors.ComputationError("cointegration test", err)
	}
	if err := validateResult(result); err != nil {
		return 0, errors.WithCode(errors.CodeInvalidInput, err)
	}

	count := 0
	for i, candidate := range result.TestedRanks {
		factor := 1.0
		if candidate > 0 {
			factor, err = d.coint.BartlettFactor(ctx, result.Artifacts, candidate, train)
			if err != nil {
				return 0, errors.ComputationError("bartlett correction", err)
			}
			if factor <= 0 {
				return 0, errors.ComputationError("bartlett correction",
					fmt.Errorf("non-positive correction factor %g for rank %d", factor, candidate))
			}
		}
		corrected := result.RawStatistics[i] / factor
		if corrected > result.CriticalValues[i] {
			count++
		}
	}
	return regime.RankDecision(count), nil
}

func validateResult(result *ports.CointegrationResult) error {
	if result == nil {
		return fmt.Errorf("cointegration test returned no result")
	}
	n := len(result.TestedRanks)
	if n == 0 {
		return fmt.Errorf("cointegration test returned no candidate ranks")
	}
	if len(result.RawStatistics) != n || len(result.CriticalValues) != n {
		return fmt.Errorf("cointegration result arrays misaligned: %d ranks, %d statistics, %d critical values",
			n, len(result.RawStatistics), len(result.CriticalValues))
	}
	prev := -1
	for _, r := range result.TestedRanks {
		if r <= prev {
			return fmt.Errorf("candidate ranks must be ascending, got %v", result.TestedRanks)
		}
		prev = r
	}
	return nil
}
