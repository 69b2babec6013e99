package app

import (
	"fmt"
	"math"
	"testing"

	"regimescope/domain/regime"
	"regimescope/internal"

	"gonum.org/v1/gonum/mat"
)

// scriptedReturns is a ReturnsPort whose successive calls produce matrices
// with exact, predetermined dispersions. Call 0 is the scheduler's reference
// volatility; calls 1..n are the per-window trailing volatilities.
type scriptedReturns struct {
	dispersions []float64
	failAt      map[int]error
	call        int
}

func (s *scriptedReturns) PeriodReturns(prices regime.Series) (*mat.Dense, error) {
	call := s.call
	s.call++
	if err, ok := s.failAt[call]; ok {
		return nil, err
	}
	d := 0.0
	if len(s.dispersions) > 0 {
		idx := call
		if idx >= len(s.dispersions) {
			idx = len(s.dispersions) - 1
		}
		d = s.dispersions[idx]
	}
	// Two values {-x, x} have sample standard deviation x*sqrt(2).
	x := d / math.Sqrt2
	return mat.NewDense(2, 1, []float64{-x, x}), nil
}

func flatSeries(t *testing.T, length int) regime.Series {
	t.Helper()
	rows := make([][]float64, length)
	for i := range rows {
		rows[i] = []float64{100, 100}
	}
	s, err := regime.NewSeriesFromRows(rows)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	return s
}

func adaptiveConfig() regime.AdaptiveWindowConfig {
	return regime.AdaptiveWindowConfig{
		BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 0.5, GrowFactor: 1.2,
		StepSize: 10, MinWindow: 30, MaxWindow: 80,
	}
}

func TestFixedScheduler_SchedulesExactWindowCount(t *testing.T) {
	cfg := regime.FixedWindowConfig{WindowSize: 50, StepSize: 10}
	sched := NewFixedWindowScheduler(200, cfg)

	var windows []regime.Window
	for {
		w, ok := sched.Next()
		if !ok {
			break
		}
		windows = append(windows, w)
	}

	// floor((200-50-10)/10)+1 = 15
	if len(windows) != 15 {
		t.Fatalf("expected 15 windows for a 200-observation series, got %d", len(windows))
	}
	for i, w := range windows {
		if w.TrainStart != i*10 {
			t.Errorf("window %d starts at %d, expected %d", i, w.TrainStart, i*10)
		}
		if w.TrainLen() != 50 || w.TestLen() != 10 {
			t.Errorf("window %d has shape %dx%d, expected 50x10", i, w.TrainLen(), w.TestLen())
		}
		if w.TrainEnd != w.TestStart {
			t.Errorf("window %d has a gap between train and test", i)
		}
	}
	last := windows[len(windows)-1]
	if last.TestEnd != 200 {
		t.Errorf("last window test ends at %d, expected 200", last.TestEnd)
	}
}

func TestFixedScheduler_TooShortSeriesYieldsNoWindows(t *testing.T) {
	cfg := regime.FixedWindowConfig{WindowSize: 50, StepSize: 10}
	sched := NewFixedWindowScheduler(59, cfg)
	if _, ok := sched.Next(); ok {
		t.Fatal("expected no windows when train+test cannot fit")
	}
}

func TestAdaptiveScheduler_VolatilityAtReferenceLeavesSizeUnchanged(t *testing.T) {
	// Every window's trailing volatility equals the reference exactly:
	// neither above the shrink threshold nor below the reference.
	returns := &scriptedReturns{dispersions: []float64{1.0}}
	sched, err := NewAdaptiveWindowScheduler(flatSeries(t, 200), adaptiveConfig(), NewReturnVolatilityEstimator(returns), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	count := 0
	for {
		w, ok := sched.Next()
		if !ok {
			break
		}
		count++
		if w.TrainLen() != 50 {
			t.Fatalf("window %d size %d, expected unchanged 50", w.Index, w.TrainLen())
		}
	}
	if count != 15 {
		t.Fatalf("constant-size adaptive run should match fixed scheduling: expected 15 windows, got %d", count)
	}
}

func TestAdaptiveScheduler_GrowsInCalmAndClampsAtMax(t *testing.T) {
	// Reference 1.0, every window 0.5: always below reference, grow each step.
	returns := &scriptedReturns{dispersions: []float64{1.0, 0.5}}
	sched, err := NewAdaptiveWindowScheduler(flatSeries(t, 300), adaptiveConfig(), NewReturnVolatilityEstimator(returns), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	var sizes []int
	for {
		w, ok := sched.Next()
		if !ok {
			break
		}
		sizes = append(sizes, w.TrainLen())
	}

	wantPrefix := []int{50, 60, 72, 80, 80}
	if len(sizes) < len(wantPrefix) {
		t.Fatalf("expected at least %d windows, got %d", len(wantPrefix), len(sizes))
	}
	for i, want := range wantPrefix {
		if sizes[i] != want {
			t.Fatalf("size sequence %v..., expected prefix %v", sizes[:len(wantPrefix)], wantPrefix)
		}
	}
	for i, size := range sizes {
		if size > 80 {
			t.Fatalf("window %d size %d exceeds max window 80", i, size)
		}
	}
}

func TestAdaptiveScheduler_ShrinksInTurbulenceAndClampsAtMin(t *testing.T) {
	// Reference 1.0, every window 2.0: above 1.5x threshold, shrink each step.
	returns := &scriptedReturns{dispersions: []float64{1.0, 2.0}}
	sched, err := NewAdaptiveWindowScheduler(flatSeries(t, 300), adaptiveConfig(), NewReturnVolatilityEstimator(returns), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	var sizes []int
	for {
		w, ok := sched.Next()
		if !ok {
			break
		}
		sizes = append(sizes, w.TrainLen())
	}

	// 50*0.5 clamps straight to the 30 floor, then sticks there.
	if sizes[0] != 50 || sizes[1] != 30 {
		t.Fatalf("expected sizes to start [50 30 ...], got %v", sizes[:2])
	}
	for i, size := range sizes {
		if size < 30 {
			t.Fatalf("window %d size %d below min window 30", i, size)
		}
		if i >= 1 && size != 30 {
			t.Fatalf("window %d size %d, expected pinned at min window", i, size)
		}
	}
}

func TestAdaptiveScheduler_VolatilityFailureKeepsSize(t *testing.T) {
	returns := &scriptedReturns{
		dispersions: []float64{1.0, 0.5},
		failAt:      map[int]error{1: fmt.Errorf("singular return matrix")},
	}
	sched, err := NewAdaptiveWindowScheduler(flatSeries(t, 200), adaptiveConfig(), NewReturnVolatilityEstimator(returns), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	first, _ := sched.Next()
	second, _ := sched.Next()
	if first.TrainLen() != 50 || second.TrainLen() != 50 {
		t.Fatalf("volatility failure must keep the size: got %d then %d", first.TrainLen(), second.TrainLen())
	}

	warned := false
	for _, w := range sched.Warnings() {
		if w == regime.WarningVolatilityUnavailable {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected %s warning, got %v", regime.WarningVolatilityUnavailable, sched.Warnings())
	}

	// Window 1's volatility (call 2) succeeds at 0.5, so window 2 grows.
	third, _ := sched.Next()
	if third.TrainLen() != 60 {
		t.Fatalf("window 2 expected grown size 60, got %d", third.TrainLen())
	}
}

func TestAdaptiveScheduler_ReferenceVolatilityFailureIsConstructionError(t *testing.T) {
	returns := &scriptedReturns{failAt: map[int]error{0: fmt.Errorf("series degenerate")}}
	_, err := NewAdaptiveWindowScheduler(flatSeries(t, 200), adaptiveConfig(), NewReturnVolatilityEstimator(returns), internal.NewLogger(internal.LogLevelError))
	if err == nil {
		t.Fatal("expected constructor error when reference volatility cannot be computed")
	}
}
