package ports

import (
	"context"

	"regimescope/domain/regime"

	"gonum.org/v1/gonum/mat"
)

// ErrorCorrectionModel is a fitted model handle able to forecast forward
// from the end of its training slice
type ErrorCorrectionModel interface {
	// Forecast produces a horizon x assets matrix of forecasts
	Forecast(ctx context.Context, horizon int) (*mat.Dense, error)
}

// ErrorCorrectionPort is the external error-correction estimation
// capability. Estimation math is behind this interface; non-convergence and
// singular fits surface as errors.
type ErrorCorrectionPort interface {
	Fit(ctx context.Context, train regime.Series, rank regime.RankDecision, lagOrder int) (ErrorCorrectionModel, error)
}
