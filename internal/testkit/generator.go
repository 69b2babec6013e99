package testkit

import (
	"fmt"
	"math"

	"regimescope/domain/regime"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SeriesConfig parameterizes the synthetic cointegrated price generator.
// Every asset loads on one shared stochastic trend plus a stationary
// idiosyncratic term, so the generated assets hold a genuine long-run
// relationship while staying individually non-stationary.
type SeriesConfig struct {
	Rows     int
	Assets   int
	Seed     uint64
	TrendVol float64 // per-step volatility of the shared trend
	NoiseVol float64 // volatility of the stationary idiosyncratic term

	// Optional high-volatility stretch [BurstStart, BurstEnd) with trend
	// steps scaled by BurstScale. Used to provoke adaptive shrinking.
	BurstStart int
	BurstEnd   int
	BurstScale float64
}

// DefaultSeriesConfig returns a 300-observation 2-asset configuration
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{
		Rows:       300,
		Assets:     2,
		Seed:       42,
		TrendVol:   0.02,
		NoiseVol:   0.01,
		BurstScale: 1.0,
	}
}

// GenerateCointegratedSeries builds a deterministic synthetic price series
// from the config
func GenerateCointegratedSeries(cfg SeriesConfig) (regime.Series, error) {
	if cfg.Rows <= 0 {
		return regime.Series{}, fmt.Errorf("rows must be > 0, got %d", cfg.Rows)
	}
	if cfg.Assets <= 0 {
		return regime.Series{}, fmt.Errorf("assets must be > 0, got %d", cfg.Assets)
	}
	if cfg.BurstEnd > cfg.Rows || cfg.BurstStart < 0 || cfg.BurstStart > cfg.BurstEnd {
		return regime.Series{}, fmt.Errorf("invalid burst range [%d, %d)", cfg.BurstStart, cfg.BurstEnd)
	}

	src := rand.NewSource(cfg.Seed)
	trendStep := distuv.Normal{Mu: 0, Sigma: cfg.TrendVol, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseVol, Src: src}

	// Loadings tie every asset to the shared trend at a distinct scale.
	loadings := make([]float64, cfg.Assets)
	for k := range loadings {
		loadings[k] = 1.0 + 0.25*float64(k)
	}

	rows := make([][]float64, cfg.Rows)
	trend := 0.0
	stationary := make([]float64, cfg.Assets)
	for t := 0; t < cfg.Rows; t++ {
		step := trendStep.Rand()
		if cfg.BurstScale != 1.0 && t >= cfg.BurstStart && t < cfg.BurstEnd {
			step *= cfg.BurstScale
		}
		trend += step

		row := make([]float64, cfg.Assets)
		for k := 0; k < cfg.Assets; k++ {
			// AR(1) idiosyncratic term keeps the spread mean-reverting.
			stationary[k] = 0.7*stationary[k] + noise.Rand()
			row[k] = 100.0 * math.Exp(loadings[k]*trend+stationary[k])
		}
		rows[t] = row
	}
	return regime.NewSeriesFromRows(rows)
}

// ConstantSeries builds a series where every observation is the same price
// vector. Useful with OffsetForecaster: the window MSE becomes exactly the
// squared offset.
func ConstantSeries(rows, assets int, value float64) regime.Series {
	data := make([][]float64, rows)
	for t := range data {
		row := make([]float64, assets)
		for k := range row {
			row[k] = value
		}
		data[t] = row
	}
	s, err := regime.NewSeriesFromRows(data)
	if err != nil {
		panic(err) // rows/assets are test constants
	}
	return s
}
