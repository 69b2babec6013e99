package app

import (
	"context"
	"fmt"
	"math"

	"regimescope/domain/regime"
	"regimescope/internal/errors"
	"regimescope/ports"
)

// The error-correction model always uses one lag; the regime information
// enters through the rank parameter, not the lag structure.
const errorCorrectionLagOrder = 1

// RegimeForecaster fits an error-correction model at a determined rank and
// scores its forecast of the test slice.
type RegimeForecaster struct {
	ecm ports.ErrorCorrectionPort
}

// NewRegimeForecaster creates a forecaster over the given estimator
func NewRegimeForecaster(ecm ports.ErrorCorrectionPort) *RegimeForecaster {
	return &RegimeForecaster{ecm: ecm}
}

// ForecastError fits on the train slice, forecasts test.Len() steps, and
// returns the mean squared error over all assets and steps. Entries where
// either the forecast or the actual is missing (NaN) are excluded from the
// mean. Estimation failures surface as COMPUTATION_ERROR.
func (f *RegimeForecaster) ForecastError(ctx context.Context, train, test regime.Series, rank regime.RankDecision) (float64, error) {
	if !rank.Cointegrated() {
		return 0, errors.InvalidInput(fmt.Sprintf("forecasting requires rank > 0, got %d", rank))
	}

	model, err := f.ecm.Fit(ctx, train, rank, errorCorrectionLagOrder)
	if err != nil {
		return 0, errors.ComputationError("error-correction fit", err)
	}
	forecast, err := model.Forecast(ctx, test.Len())
	if err != nil {
		return 0, errors.ComputationError("forecast", err)
	}

	rows, cols := forecast.Dims()
	if rows != test.Len() || cols != test.Assets() {
		return 0, errors.ComputationError("forecast",
			fmt.Errorf("forecast is %dx%d, test slice is %dx%d", rows, cols, test.Len(), test.Assets()))
	}

	sum := 0.0
	n := 0
	for t := 0; t < rows; t++ {
		for k := 0; k < cols; k++ {
			diff := forecast.At(t, k) - test.At(t, k)
			if math.IsNaN(diff) {
				continue
			}
			sum += diff * diff
			n++
		}
	}
	if n == 0 {
		return 0, errors.ComputationError("forecast", fmt.Errorf("no finite forecast errors in test slice"))
	}
	return sum / float64(n), nil
}
