package app

import (
	"math"

	"regimescope/domain/regime"
	"regimescope/internal"
)

// WindowScheduler lazily produces successive (train, test) windows over a
// series. Next returns false once no further window fits.
type WindowScheduler interface {
	Next() (regime.Window, bool)
	// Warnings reports scheduling anomalies accumulated so far (e.g. a
	// window whose volatility could not be computed in adaptive mode)
	Warnings() []regime.WarningCode
}

// FixedWindowScheduler advances a constant-size window by a constant step.
// Window starts sit at offsets 0, step, 2*step, ... while both the train and
// the test slice still fit within the series.
type FixedWindowScheduler struct {
	cfg       regime.FixedWindowConfig
	seriesLen int
	start     int
	index     int
}

// NewFixedWindowScheduler creates a fixed-mode scheduler over a series of
// the given length. Callers check the insufficient-data precondition before
// scheduling; a too-short series simply yields no windows here.
func NewFixedWindowScheduler(seriesLen int, cfg regime.FixedWindowConfig) *FixedWindowScheduler {
	return &FixedWindowScheduler{cfg: cfg, seriesLen: seriesLen}
}

// Next returns the next fixed window, or false when train+test no longer fit
func (s *FixedWindowScheduler) Next() (regime.Window, bool) {
	if s.start+s.cfg.WindowSize+s.cfg.StepSize > s.seriesLen {
		return regime.Window{}, false
	}
	w := regime.Window{
		Index:      s.index,
		TrainStart: s.start,
		TrainEnd:   s.start + s.cfg.WindowSize,
		TestStart:  s.start + s.cfg.WindowSize,
		TestEnd:    s.start + s.cfg.WindowSize + s.cfg.StepSize,
	}
	s.start += s.cfg.StepSize
	s.index++
	return w, true
}

// Warnings is always empty in fixed mode
func (s *FixedWindowScheduler) Warnings() []regime.WarningCode { return nil }

// AdaptiveWindowScheduler grows the window through calm stretches and
// shrinks it through volatile ones. The size carried across iterations is a
// float bounded to [MinWindow, MaxWindow]; each emitted window uses the
// rounded, clamped size. The adjustment decided from a window's own trailing
// volatility applies to the NEXT window only, never retroactively.
type AdaptiveWindowScheduler struct {
	cfg        regime.AdaptiveWindowConfig
	series     regime.Series
	volatility *ReturnVolatilityEstimator
	logger     *internal.Logger

	referenceVol float64
	size         float64
	start        int
	index        int
	warnings     []regime.WarningCode
}

// NewAdaptiveWindowScheduler creates an adaptive scheduler. The reference
// volatility is computed once here, from the entire series; failing that the
// run cannot adapt at all and the constructor errors out.
func NewAdaptiveWindowScheduler(series regime.Series, cfg regime.AdaptiveWindowConfig, volatility *ReturnVolatilityEstimator, logger *internal.Logger) (*AdaptiveWindowScheduler, error) {
	refVol, err := volatility.Dispersion(series)
	if err != nil {
		return nil, err
	}
	return &AdaptiveWindowScheduler{
		cfg:          cfg,
		series:       series,
		volatility:   volatility,
		logger:       logger,
		referenceVol: refVol,
		size:         float64(cfg.BaseWindow),
	}, nil
}

// ReferenceVolatility returns the whole-series dispersion computed at init
func (s *AdaptiveWindowScheduler) ReferenceVolatility() float64 {
	return s.referenceVol
}

// Next emits the next window at the current size, then updates the size for
// the following iteration from the emitted train slice's volatility.
func (s *AdaptiveWindowScheduler) Next() (regime.Window, bool) {
	w := s.currentSize()
	if s.start+w+s.cfg.StepSize > s.series.Len() {
		return regime.Window{}, false
	}

	win := regime.Window{
		Index:      s.index,
		TrainStart: s.start,
		TrainEnd:   s.start + w,
		TestStart:  s.start + w,
		TestEnd:    s.start + w + s.cfg.StepSize,
	}

	s.adjustSize(win, w)
	s.start += s.cfg.StepSize
	s.index++
	return win, true
}

// Warnings reports windows whose volatility could not be computed
func (s *AdaptiveWindowScheduler) Warnings() []regime.WarningCode {
	return s.warnings
}

// currentSize rounds and clamps the carried float size for emission
func (s *AdaptiveWindowScheduler) currentSize() int {
	w := int(math.Round(s.size))
	if w < s.cfg.MinWindow {
		w = s.cfg.MinWindow
	}
	if w > s.cfg.MaxWindow {
		w = s.cfg.MaxWindow
	}
	return w
}

// adjustSize applies the prospective size update for the next iteration.
// Shrink is checked before grow; at most one adjustment happens per step. A
// trailing volatility exactly between the two thresholds leaves the size
// unchanged.
func (s *AdaptiveWindowScheduler) adjustSize(win regime.Window, emittedSize int) {
	train, err := s.series.Slice(win.TrainStart, win.TrainEnd)
	if err != nil {
		// Cannot happen for a window Next just validated, but keep the
		// size stable rather than panicking on a scheduler bug.
		s.keepSize(win, err)
		return
	}
	windowVol, err := s.volatility.Dispersion(train)
	if err != nil {
		s.keepSize(win, err)
		return
	}

	switch {
	case windowVol > s.cfg.VolMult*s.referenceVol && emittedSize > s.cfg.MinWindow:
		s.size = math.Max(s.size*s.cfg.ShrinkFactor, float64(s.cfg.MinWindow))
	case windowVol < s.referenceVol && emittedSize < s.cfg.MaxWindow:
		s.size = math.Min(s.size*s.cfg.GrowFactor, float64(s.cfg.MaxWindow))
	}
}

func (s *AdaptiveWindowScheduler) keepSize(win regime.Window, err error) {
	s.warnings = append(s.warnings, regime.WarningVolatilityUnavailable)
	if s.logger != nil {
		s.logger.Warn("window %d volatility unavailable, keeping size %d: %v", win.Index, win.TrainLen(), err)
	}
}
