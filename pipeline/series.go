package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Series is the accumulated plottable dataset for one measurement kind.
// A cleared series has zero rows but keeps its declared column count.
type Series struct {
	Cols int
	Rows [][]float64
}

// Len returns the number of rows.
func (s Series) Len() int {
	return len(s.Rows)
}

// Column returns a copy of column i across all rows.
func (s Series) Column(i int) []float64 {
	col := make([]float64, len(s.Rows))
	for r, row := range s.Rows {
		col[r] = row[i]
	}
	return col
}

// Accumulator folds augmented records into a growing series. Fold never
// mutates the series it is given: snapshots already published keep their rows.
type Accumulator interface {
	Empty() Series
	Fold(cur Series, rec Record) (Series, error)
}

// AccumulatorFor selects the accumulation strategy for a kind.
func AccumulatorFor(k Kind) Accumulator {
	if k == KindIV {
		return TwoScanAccumulator{}
	}
	return StreamingAccumulator{}
}

// StreamingAccumulator builds the current-vs-time series. Rows are
// (time offset, j, raw time); offsets are re-derived from row 0's raw time on
// every append because the SMU clock counts from instrument power-on, not
// from measurement start.
type StreamingAccumulator struct{}

// Empty returns a cleared 3-column series.
func (StreamingAccumulator) Empty() Series {
	return Series{Cols: 3}
}

// Fold appends the record's point and renormalizes every offset. O(n) per
// message, accepted so the time origin stays pinned to the first row.
func (a StreamingAccumulator) Fold(cur Series, rec Record) (Series, error) {
	row := rec.Data.Rows[0]
	if len(row) <= colJ {
		return Series{}, fmt.Errorf("fold: row has %d columns, want at least %d", len(row), colJ+1)
	}

	next := Series{Cols: 3, Rows: make([][]float64, 0, len(cur.Rows)+1)}
	for _, r := range cur.Rows {
		next.Rows = append(next.Rows, []float64{r[0], r[1], r[2]})
	}
	next.Rows = append(next.Rows, []float64{0, row[colJ], row[colTime]})

	offsets := next.Column(2)
	floats.AddConst(-offsets[0], offsets)
	for i, r := range next.Rows {
		r[0] = offsets[i]
	}
	return next, nil
}

// TwoScanAccumulator builds the current-vs-voltage series. Rows are
// (bias0, j0, bias1, j1): the first sweep after a clear seeds columns 0-1 and
// every later sweep overwrites columns 2-3, leaving 0-1 untouched. The newer
// sweep always lands in the second slot; the presentation layer relies on
// this ordering.
type TwoScanAccumulator struct{}

// Empty returns a cleared 4-column series.
func (TwoScanAccumulator) Empty() Series {
	return Series{Cols: 4}
}

// Fold replaces the series wholesale with the incoming sweep's (bias, j)
// pairs placed per the two-scan policy.
func (a TwoScanAccumulator) Fold(cur Series, rec Record) (Series, error) {
	n := len(rec.Data.Rows)

	if len(cur.Rows) == 0 {
		next := Series{Cols: 4, Rows: make([][]float64, n)}
		for i, row := range rec.Data.Rows {
			if len(row) <= colJ {
				return Series{}, fmt.Errorf("fold: row %d has %d columns, want at least %d", i, len(row), colJ+1)
			}
			next.Rows[i] = []float64{row[colVoltage], row[colJ], 0, 0}
		}
		return next, nil
	}

	if n != len(cur.Rows) {
		return Series{}, fmt.Errorf("fold: sweep has %d rows but series has %d", n, len(cur.Rows))
	}
	next := Series{Cols: 4, Rows: make([][]float64, n)}
	for i, row := range rec.Data.Rows {
		if len(row) <= colJ {
			return Series{}, fmt.Errorf("fold: row %d has %d columns, want at least %d", i, len(row), colJ+1)
		}
		next.Rows[i] = []float64{cur.Rows[i][0], cur.Rows[i][1], row[colVoltage], row[colJ]}
	}
	return next, nil
}
