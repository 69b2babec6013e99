package app

import (
	"fmt"
	"math"

	"regimescope/domain/regime"
	"regimescope/ports"

	"github.com/montanaflynn/stats"
)

// ReturnVolatilityEstimator measures the dispersion of period returns over a
// price slice. It feeds both the adaptive scheduler's reference volatility
// and its per-window trailing volatility.
type ReturnVolatilityEstimator struct {
	returns ports.ReturnsPort
}

// NewReturnVolatilityEstimator creates an estimator over the given return
// computer
func NewReturnVolatilityEstimator(returns ports.ReturnsPort) *ReturnVolatilityEstimator {
	return &ReturnVolatilityEstimator{returns: returns}
}

// Dispersion computes the sample standard deviation of all per-step, per-asset
// returns within the slice. Missing (NaN) returns are excluded.
func (e *ReturnVolatilityEstimator) Dispersion(slice regime.Series) (float64, error) {
	rets, err := e.returns.PeriodReturns(slice)
	if err != nil {
		return 0, fmt.Errorf("period returns: %w", err)
	}

	rows, cols := rets.Dims()
	flat := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := rets.At(i, j)
			if !math.IsNaN(v) {
				flat = append(flat, v)
			}
		}
	}
	if len(flat) < 2 {
		return 0, fmt.Errorf("need at least 2 finite returns for dispersion, got %d", len(flat))
	}

	sd, err := stats.StandardDeviationSample(stats.Float64Data(flat))
	if err != nil {
		return 0, fmt.Errorf("return dispersion: %w", err)
	}
	return sd, nil
}
