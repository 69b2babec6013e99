package ports

import (
	"context"

	"regimescope/domain/regime"
)

// TrendModel selects the deterministic-trend assumption of the cointegration
// test
type TrendModel string

const (
	// TrendConstant includes a constant term in the cointegrating relation
	TrendConstant TrendModel = "constant"
	// TrendLinear additionally includes a linear trend
	TrendLinear TrendModel = "linear"
)

// FitArtifacts carries the test's internal maximum-likelihood fit state,
// opaque to the core. It exists only to be handed back to BartlettFactor.
type FitArtifacts interface{}

// CointegrationResult holds per-candidate-rank outputs of one test.
//
// INVARIANTS:
// - TestedRanks is ordered ascending starting at 0
// - RawStatistics and CriticalValues are parallel to TestedRanks
type CointegrationResult struct {
	TestedRanks    []int
	RawStatistics  []float64
	CriticalValues []float64
	Artifacts      FitArtifacts
}

// CointegrationPort is the external cointegration-test capability. The trace
// statistic math and critical-value tables live behind this interface; the
// core only consumes their outputs.
type CointegrationPort interface {
	// Test runs the cointegration rank test on a training slice. A numeric
	// failure (e.g. singular covariance) is returned as an error.
	Test(ctx context.Context, train regime.Series, lagOrder int, trend TrendModel) (*CointegrationResult, error)

	// BartlettFactor computes the finite-sample correction factor for one
	// candidate rank. Implementations must return 1.0 for rank 0.
	BartlettFactor(ctx context.Context, artifacts FitArtifacts, rank int, train regime.Series) (float64, error)
}
