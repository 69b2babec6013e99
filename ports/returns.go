package ports

import (
	"regimescope/domain/regime"

	"gonum.org/v1/gonum/mat"
)

// ReturnsPort computes period-over-period returns for a price slice using a
// continuous (log) return convention. The result has one fewer row than the
// input: row t holds the return from observation t to t+1.
type ReturnsPort interface {
	PeriodReturns(prices regime.Series) (*mat.Dense, error)
}
