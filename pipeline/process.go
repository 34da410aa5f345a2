package pipeline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Augment computes the derived quantities for every row of a raw record and
// returns a new record with current density j (mA/cm²) and power p (mW/cm²)
// appended as trailing columns. The input record is left untouched.
//
// j = I * 1000 / area, p = V * j.
func Augment(rec Record) (Record, error) {
	area := rec.Pixel.Area
	if area <= 0 {
		return Record{}, fmt.Errorf("augment: pixel area must be positive, got %v", area)
	}
	if len(rec.Data.Rows) == 0 {
		return Record{}, errors.New("augment: record has no data rows")
	}

	n := len(rec.Data.Rows)
	volts := make([]float64, n)
	amps := make([]float64, n)
	for i, row := range rec.Data.Rows {
		if len(row) < rawCols {
			return Record{}, fmt.Errorf("augment: row %d has %d columns, want %d", i, len(row), rawCols)
		}
		volts[i] = row[colVoltage]
		amps[i] = row[colCurrent]
	}

	j := make([]float64, n)
	floats.ScaleTo(j, 1000/area, amps)
	p := make([]float64, n)
	floats.MulTo(p, volts, j)

	out := rec
	out.Data.Rows = make([][]float64, n)
	for i, row := range rec.Data.Rows {
		augmented := make([]float64, len(row), len(row)+2)
		copy(augmented, row)
		out.Data.Rows[i] = append(augmented, j[i], p[i])
	}
	return out, nil
}
