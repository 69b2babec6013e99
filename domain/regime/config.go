package regime

import "fmt"

// FailurePolicy decides what happens when the cointegration test or the
// forecaster fails on a single window (singular matrix, non-convergence).
type FailurePolicy string

const (
	// FailRun aborts the entire run on the first collaborator failure
	FailRun FailurePolicy = "fail_run"
	// SkipWindow treats the failing window as rank 0 and continues
	SkipWindow FailurePolicy = "skip_window"
)

// Valid reports whether p is a known policy
func (p FailurePolicy) Valid() bool {
	return p == FailRun || p == SkipWindow
}

// FixedWindowConfig parameterizes fixed-mode scheduling: a constant-size
// training window advanced by a constant step.
type FixedWindowConfig struct {
	WindowSize int `json:"window_size"`
	StepSize   int `json:"step_size"`
}

// Validate checks scheduling parameter invariants
func (c FixedWindowConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %d", c.StepSize)
	}
	return nil
}

// MinObservations returns the shortest series fixed mode can schedule
func (c FixedWindowConfig) MinObservations() int {
	return c.WindowSize + c.StepSize + 1
}

// AdaptiveWindowConfig parameterizes adaptive-mode scheduling: the window
// grows in calm stretches and shrinks in volatile ones, bounded to
// [MinWindow, MaxWindow].
type AdaptiveWindowConfig struct {
	BaseWindow   int     `json:"base_window"`   // initial window size
	VolMult      float64 `json:"vol_mult"`      // shrink threshold multiplier (> 1)
	ShrinkFactor float64 `json:"shrink_factor"` // in (0, 1)
	GrowFactor   float64 `json:"grow_factor"`   // > 1
	StepSize     int     `json:"step_size"`
	MinWindow    int     `json:"min_window"`
	MaxWindow    int     `json:"max_window"`
}

// Validate checks scheduling parameter invariants
func (c AdaptiveWindowConfig) Validate() error {
	if c.BaseWindow <= 0 {
		return fmt.Errorf("base window must be positive, got %d", c.BaseWindow)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %d", c.StepSize)
	}
	if c.VolMult <= 1 {
		return fmt.Errorf("volatility multiplier must be > 1, got %g", c.VolMult)
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor >= 1 {
		return fmt.Errorf("shrink factor must be in (0, 1), got %g", c.ShrinkFactor)
	}
	if c.GrowFactor <= 1 {
		return fmt.Errorf("grow factor must be > 1, got %g", c.GrowFactor)
	}
	if c.MinWindow <= 0 {
		return fmt.Errorf("min window must be positive, got %d", c.MinWindow)
	}
	if c.MaxWindow < c.MinWindow {
		return fmt.Errorf("max window %d must be >= min window %d", c.MaxWindow, c.MinWindow)
	}
	if c.BaseWindow < c.MinWindow || c.BaseWindow > c.MaxWindow {
		return fmt.Errorf("base window %d must lie within [%d, %d]", c.BaseWindow, c.MinWindow, c.MaxWindow)
	}
	return nil
}

// MinObservations returns the shortest series adaptive mode can schedule
func (c AdaptiveWindowConfig) MinObservations() int {
	return c.BaseWindow + c.StepSize + 1
}
