// Package testkit provides fake econometrics collaborators for exercising
// the scheduling and aggregation core without any real statistical engine.
package testkit

import (
	"context"
	"fmt"
	"sync"

	"regimescope/domain/regime"
	"regimescope/ports"

	"gonum.org/v1/gonum/mat"
)

// criticalValue is the flat critical value the scripted tester emits for
// every candidate rank. Raw statistics are placed above or below it to force
// a desired rank.
const criticalValue = 10.0

// ScriptedCointegrationTester implements ports.CointegrationPort with a
// predetermined rank per call. Call i (0-based) yields Ranks[i]; calls past
// the end repeat the last entry. Errors in FailAt override the script for
// that call index.
type ScriptedCointegrationTester struct {
	Ranks      []int
	Candidates int             // candidate ranks per test (defaults to assets)
	Factors    map[int]float64 // optional Bartlett factor per candidate rank
	FailAt     map[int]error   // call index -> injected failure

	mu    sync.Mutex
	calls int
}

// Calls returns how many times Test has been invoked
func (s *ScriptedCointegrationTester) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Test emits statistics that produce the scripted rank under the
// sum-of-passing-thresholds rule: the first r candidates sit above the
// critical value, the rest below.
func (s *ScriptedCointegrationTester) Test(ctx context.Context, train regime.Series, lagOrder int, trend ports.TrendModel) (*ports.CointegrationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()

	if err, ok := s.FailAt[call]; ok {
		return nil, err
	}

	want := 0
	if len(s.Ranks) > 0 {
		idx := call
		if idx >= len(s.Ranks) {
			idx = len(s.Ranks) - 1
		}
		want = s.Ranks[idx]
	}

	candidates := s.Candidates
	if candidates == 0 {
		candidates = train.Assets()
	}
	if want > candidates {
		return nil, fmt.Errorf("scripted rank %d exceeds %d candidates", want, candidates)
	}

	result := &ports.CointegrationResult{
		TestedRanks:    make([]int, candidates),
		RawStatistics:  make([]float64, candidates),
		CriticalValues: make([]float64, candidates),
		Artifacts:      call,
	}
	for r := 0; r < candidates; r++ {
		result.TestedRanks[r] = r
		result.CriticalValues[r] = criticalValue
		// Pre-correction statistics: the detector divides by the Bartlett
		// factor before comparing, so bake the factor back in.
		factor := s.factor(r)
		if r < want {
			result.RawStatistics[r] = 2 * criticalValue * factor
		} else {
			result.RawStatistics[r] = 0.5 * criticalValue * factor
		}
	}
	return result, nil
}

// BartlettFactor returns the scripted factor for a candidate rank, 1.0 when
// unscripted
func (s *ScriptedCointegrationTester) BartlettFactor(ctx context.Context, artifacts ports.FitArtifacts, rank int, train regime.Series) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.factor(rank), nil
}

func (s *ScriptedCointegrationTester) factor(rank int) float64 {
	if rank == 0 {
		return 1.0
	}
	if f, ok := s.Factors[rank]; ok {
		return f
	}
	return 1.0
}

// OffsetForecaster implements ports.ErrorCorrectionPort with a fitted model
// that forecasts "last training observation plus Offsets[call]" for every
// step and asset. On a locally constant series this makes the window MSE
// exactly offset squared. Calls past the end of Offsets repeat the last
// entry.
type OffsetForecaster struct {
	Offsets   []float64
	FailFitAt map[int]error // call index -> injected fit failure
	mu        sync.Mutex
	calls     int
}

// Fit captures the last training row and returns the offset model
func (f *OffsetForecaster) Fit(ctx context.Context, train regime.Series, rank regime.RankDecision, lagOrder int) (ports.ErrorCorrectionModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()

	if err, ok := f.FailFitAt[call]; ok {
		return nil, err
	}

	offset := 0.0
	if len(f.Offsets) > 0 {
		idx := call
		if idx >= len(f.Offsets) {
			idx = len(f.Offsets) - 1
		}
		offset = f.Offsets[idx]
	}

	last := make([]float64, train.Assets())
	for k := range last {
		last[k] = train.At(train.Len()-1, k)
	}
	return &offsetModel{last: last, offset: offset}, nil
}

type offsetModel struct {
	last   []float64
	offset float64
}

func (m *offsetModel) Forecast(ctx context.Context, horizon int) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := mat.NewDense(horizon, len(m.last), nil)
	for t := 0; t < horizon; t++ {
		for k, v := range m.last {
			out.Set(t, k, v+m.offset)
		}
	}
	return out, nil
}
