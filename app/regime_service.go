package app

import (
	"context"
	stderrors "errors"
	"time"

	"regimescope/domain/regime"
	"regimescope/internal"
	"regimescope/internal/config"
	"regimescope/internal/errors"
	"regimescope/ports"
)

// RegimeAnalysisService runs the rolling regime-stability loop: schedule
// windows, determine each window's cointegration rank, score the
// error-correction forecast for cointegrated windows, and fold the decisions
// into the three regime metrics.
//
// The service holds no per-run state; every run owns its own scheduler and
// accumulator, so independent runs may execute concurrently on one service.
type RegimeAnalysisService struct {
	detector   *RankDetector
	forecaster *RegimeForecaster
	volatility *ReturnVolatilityEstimator
	logger     *internal.Logger
	policy     regime.FailurePolicy
}

// NewRegimeAnalysisService wires the service from its collaborator ports. A
// nil logger falls back to the default logger; an empty policy falls back to
// the environment-configured default (REGIME_FAILURE_POLICY, SkipWindow when
// unset).
func NewRegimeAnalysisService(coint ports.CointegrationPort, ecm ports.ErrorCorrectionPort, returns ports.ReturnsPort, logger *internal.Logger, policy regime.FailurePolicy) (*RegimeAnalysisService, error) {
	if coint == nil || ecm == nil || returns == nil {
		return nil, errors.InvalidInput("all collaborator ports must be provided")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if policy == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		policy = cfg.Analysis.FailurePolicy
	}
	if !policy.Valid() {
		return nil, errors.InvalidInput("unknown failure policy: " + string(policy))
	}
	return &RegimeAnalysisService{
		detector:   NewRankDetector(coint),
		forecaster: NewRegimeForecaster(ecm),
		volatility: NewReturnVolatilityEstimator(returns),
		logger:     logger,
		policy:     policy,
	}, nil
}

// RunFixedWindow analyzes the series with a constant-size sliding window
func (s *RegimeAnalysisService) RunFixedWindow(ctx context.Context, series regime.Series, cfg regime.FixedWindowConfig) (regime.RegimeMetrics, *AnalysisReport, error) {
	if err := cfg.Validate(); err != nil {
		return regime.RegimeMetrics{}, nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	report := NewAnalysisReport(ModeFixed)
	if series.Len() < cfg.MinObservations() {
		return s.insufficientData(report, series.Len(), cfg.MinObservations())
	}

	scheduler := NewFixedWindowScheduler(series.Len(), cfg)
	return s.run(ctx, series, scheduler, report)
}

// RunAdaptiveWindow analyzes the series with a volatility-adaptive window.
// A reference volatility that cannot be computed is a run-level failure
// regardless of policy: without it no window can be sized.
func (s *RegimeAnalysisService) RunAdaptiveWindow(ctx context.Context, series regime.Series, cfg regime.AdaptiveWindowConfig) (regime.RegimeMetrics, *AnalysisReport, error) {
	if err := cfg.Validate(); err != nil {
		return regime.RegimeMetrics{}, nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	report := NewAnalysisReport(ModeAdaptive)
	if series.Len() < cfg.MinObservations() {
		return s.insufficientData(report, series.Len(), cfg.MinObservations())
	}

	scheduler, err := NewAdaptiveWindowScheduler(series, cfg, s.volatility, s.logger)
	if err != nil {
		return regime.RegimeMetrics{}, report, errors.ComputationError("reference volatility", err)
	}
	return s.run(ctx, series, scheduler, report)
}

// run drives the window loop. The accumulator is updated only after a window
// fully completes, so an abort between (or inside) windows never leaves a
// partial contribution behind.
func (s *RegimeAnalysisService) run(ctx context.Context, series regime.Series, scheduler WindowScheduler, report *AnalysisReport) (regime.RegimeMetrics, *AnalysisReport, error) {
	started := time.Now()
	acc := regime.NewRunAccumulator()

	for {
		if err := ctx.Err(); err != nil {
			return regime.RegimeMetrics{}, report, err
		}
		window, ok := scheduler.Next()
		if !ok {
			break
		}
		report.WindowsAttempted++

		train, err := series.Slice(window.TrainStart, window.TrainEnd)
		if err != nil {
			return regime.RegimeMetrics{}, report, errors.Wrapf(err, "train slice for window %d", window.Index)
		}
		test, err := series.Slice(window.TestStart, window.TestEnd)
		if err != nil {
			return regime.RegimeMetrics{}, report, errors.Wrapf(err, "test slice for window %d", window.Index)
		}

		rank, err := s.detector.Detect(ctx, train)
		if err != nil {
			if abort, runErr := s.handleWindowFailure(report, window, err); abort {
				return regime.RegimeMetrics{}, report, runErr
			}
			continue
		}

		decision := WindowDecision{Window: window, Rank: rank}
		if rank.Cointegrated() {
			mse, err := s.forecaster.ForecastError(ctx, train, test, rank)
			if err != nil {
				if abort, runErr := s.handleWindowFailure(report, window, err); abort {
					return regime.RegimeMetrics{}, report, runErr
				}
				continue
			}
			decision.MSE = mse
			acc.Record(rank, mse)
			report.WindowsProcessed++
		}
		report.Decisions = append(report.Decisions, decision)
	}

	for _, code := range scheduler.Warnings() {
		report.AddWarning(code)
	}

	metrics, warnings := acc.Finalize()
	for _, code := range warnings {
		report.AddWarning(code)
	}
	if report.WindowsAttempted > 0 && acc.Processed() == 0 {
		report.AddWarning(regime.WarningNoValidWindow)
		s.logger.Warn("run %s: %d windows attempted, none cointegrated", report.RunID, report.WindowsAttempted)
	}

	report.RuntimeMs = time.Since(started).Milliseconds()
	return metrics, report, nil
}

// handleWindowFailure applies the failure policy to a collaborator error.
// Context cancellation always aborts, whatever the policy says.
func (s *RegimeAnalysisService) handleWindowFailure(report *AnalysisReport, window regime.Window, err error) (abort bool, runErr error) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true, err
	}
	if s.policy == regime.FailRun {
		return true, errors.Wrapf(err, "window %d failed", window.Index)
	}

	report.WindowsSkipped++
	report.AddWarning(regime.WarningWindowSkipped)
	report.Decisions = append(report.Decisions, WindowDecision{
		Window:  window,
		Rank:    0,
		Skipped: true,
		Reason:  err.Error(),
	})
	s.logger.Warn("run %s: skipping window %d: %v", report.RunID, window.Index, err)
	return false, nil
}

// insufficientData finishes a run that could not schedule a single window
func (s *RegimeAnalysisService) insufficientData(report *AnalysisReport, have, need int) (regime.RegimeMetrics, *AnalysisReport, error) {
	report.AddWarning(regime.WarningInsufficientData)
	s.logger.Warn("run %s: series has %d observations, need at least %d", report.RunID, have, need)
	return regime.InsufficientDataMetrics(), report, nil
}
