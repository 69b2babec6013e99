package regime

import "testing"

func TestFixedWindowConfig_Validate(t *testing.T) {
	valid := FixedWindowConfig{WindowSize: 50, StepSize: 10}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if valid.MinObservations() != 61 {
		t.Fatalf("expected minimum 61 observations, got %d", valid.MinObservations())
	}

	bad := []FixedWindowConfig{
		{WindowSize: 0, StepSize: 10},
		{WindowSize: 50, StepSize: 0},
		{WindowSize: -1, StepSize: -1},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}

func TestAdaptiveWindowConfig_Validate(t *testing.T) {
	valid := AdaptiveWindowConfig{
		BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 1.1,
		StepSize: 10, MinWindow: 30, MaxWindow: 80,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if valid.MinObservations() != 61 {
		t.Fatalf("expected minimum 61 observations, got %d", valid.MinObservations())
	}

	bad := []AdaptiveWindowConfig{
		{BaseWindow: 0, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 1.1, StepSize: 10, MinWindow: 30, MaxWindow: 80},
		{BaseWindow: 50, VolMult: 1.0, ShrinkFactor: 0.8, GrowFactor: 1.1, StepSize: 10, MinWindow: 30, MaxWindow: 80},
		{BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 1.0, GrowFactor: 1.1, StepSize: 10, MinWindow: 30, MaxWindow: 80},
		{BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 0.9, StepSize: 10, MinWindow: 30, MaxWindow: 80},
		{BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 1.1, StepSize: 0, MinWindow: 30, MaxWindow: 80},
		{BaseWindow: 50, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 1.1, StepSize: 10, MinWindow: 90, MaxWindow: 80},
		{BaseWindow: 20, VolMult: 1.5, ShrinkFactor: 0.8, GrowFactor: 1.1, StepSize: 10, MinWindow: 30, MaxWindow: 80},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}

func TestFailurePolicy_Valid(t *testing.T) {
	if !FailRun.Valid() || !SkipWindow.Valid() {
		t.Fatal("built-in policies must validate")
	}
	if FailurePolicy("explode").Valid() {
		t.Fatal("unknown policy must not validate")
	}
}
