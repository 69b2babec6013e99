package returns

import (
	"fmt"
	"math"

	"regimescope/domain/regime"

	"gonum.org/v1/gonum/mat"
)

// LogReturnAdapter computes continuous (log) period returns on price
// matrices. It is the default implementation of ports.ReturnsPort.
type LogReturnAdapter struct{}

// NewLogReturnAdapter creates the adapter
func NewLogReturnAdapter() *LogReturnAdapter {
	return &LogReturnAdapter{}
}

// PeriodReturns computes log(p[t+1]/p[t]) per asset. The result is a
// (T-1) x assets matrix. Non-positive prices have no log return and are
// rejected; a missing (NaN) price yields a NaN return for the periods it
// touches.
func (a *LogReturnAdapter) PeriodReturns(prices regime.Series) (*mat.Dense, error) {
	T := prices.Len()
	K := prices.Assets()
	if T < 2 {
		return nil, fmt.Errorf("need at least 2 observations for period returns, got %d", T)
	}

	out := mat.NewDense(T-1, K, nil)
	for t := 0; t < T-1; t++ {
		for k := 0; k < K; k++ {
			prev := prices.At(t, k)
			next := prices.At(t+1, k)
			if math.IsNaN(prev) || math.IsNaN(next) {
				out.Set(t, k, math.NaN())
				continue
			}
			if prev <= 0 || next <= 0 {
				return nil, fmt.Errorf("non-positive price at observation %d asset %d", t, k)
			}
			out.Set(t, k, math.Log(next/prev))
		}
	}
	return out, nil
}
