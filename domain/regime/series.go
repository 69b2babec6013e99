package regime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Series is an ordered multivariate price series: rows are observations in
// time order, columns are assets. The column count is fixed for the life of
// the series.
//
// INVARIANTS:
// - At least 1 observation (row)
// - At least 1 asset (column)
type Series struct {
	data *mat.Dense
}

// NewSeries creates a series from a gonum matrix with validation
func NewSeries(data *mat.Dense) (Series, error) {
	if data == nil {
		return Series{}, fmt.Errorf("series data must not be nil")
	}
	rows, cols := data.Dims()
	if rows < 1 {
		return Series{}, fmt.Errorf("series must contain at least 1 observation, got %d", rows)
	}
	if cols < 1 {
		return Series{}, fmt.Errorf("series must contain at least 1 asset column, got %d", cols)
	}
	return Series{data: data}, nil
}

// NewSeriesFromRows creates a series from row-major observation vectors.
// Every row must have the same length.
func NewSeriesFromRows(rows [][]float64) (Series, error) {
	if len(rows) == 0 {
		return Series{}, fmt.Errorf("series must contain at least 1 observation")
	}
	cols := len(rows[0])
	if cols == 0 {
		return Series{}, fmt.Errorf("series observations must not be empty vectors")
	}
	flat := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Series{}, fmt.Errorf("observation %d has %d values, expected %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return Series{data: mat.NewDense(len(rows), cols, flat)}, nil
}

// Len returns the number of observations
func (s Series) Len() int {
	if s.data == nil {
		return 0
	}
	rows, _ := s.data.Dims()
	return rows
}

// Assets returns the number of asset columns
func (s Series) Assets() int {
	if s.data == nil {
		return 0
	}
	_, cols := s.data.Dims()
	return cols
}

// Slice returns the sub-series covering observations [i, j). The returned
// series shares storage with the parent.
func (s Series) Slice(i, j int) (Series, error) {
	if s.data == nil {
		return Series{}, fmt.Errorf("cannot slice empty series")
	}
	rows, cols := s.data.Dims()
	if i < 0 || j > rows || i >= j {
		return Series{}, fmt.Errorf("invalid slice range [%d, %d) for series of length %d", i, j, rows)
	}
	sub := s.data.Slice(i, j, 0, cols).(*mat.Dense)
	return Series{data: sub}, nil
}

// Mat returns the underlying matrix. Callers must treat it as read-only.
func (s Series) Mat() *mat.Dense {
	return s.data
}

// At returns the price of asset col at observation row. On a zero-value
// series every position reads as NaN, the same missing-value sentinel the
// data itself may carry.
func (s Series) At(row, col int) float64 {
	if s.data == nil {
		return math.NaN()
	}
	return s.data.At(row, col)
}
