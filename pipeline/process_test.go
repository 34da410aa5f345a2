package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugmentSinglePoint(t *testing.T) {
	rec := Record{
		Data:  SingleRow([]float64{0.6, 0.005, 100.0, 0}),
		Pixel: Pixel{Area: 0.1},
		IDN:   "dev1",
	}

	out, err := Augment(rec)
	require.NoError(t, err)

	require.Len(t, out.Data.Rows, 1)
	row := out.Data.Rows[0]
	require.Len(t, row, 6)
	assert.InDelta(t, 50.0, row[colJ], 1e-12) // 0.005 * 1000 / 0.1
	assert.InDelta(t, 30.0, row[colP], 1e-12) // 0.6 * 50
	assert.Equal(t, "dev1", out.IDN)
}

func TestAugmentSweep(t *testing.T) {
	rec := Record{
		Data: Matrix([][]float64{
			{0.0, 0.010, 100.0, 0},
			{0.2, 0.008, 100.1, 0},
			{0.4, 0.005, 100.2, 0},
		}),
		Pixel: Pixel{Area: 0.2},
	}

	out, err := Augment(rec)
	require.NoError(t, err)
	require.Len(t, out.Data.Rows, 3)

	for i, row := range out.Data.Rows {
		require.Len(t, row, 6)
		wantJ := rec.Data.Rows[i][colCurrent] * 1000 / 0.2
		assert.InDelta(t, wantJ, row[colJ], 1e-12)
		assert.InDelta(t, rec.Data.Rows[i][colVoltage]*wantJ, row[colP], 1e-12)
	}
}

func TestAugmentRejectsNonPositiveArea(t *testing.T) {
	rec := Record{
		Data:  SingleRow([]float64{0.6, 0.005, 100.0, 0}),
		Pixel: Pixel{Area: 0},
	}
	_, err := Augment(rec)
	assert.Error(t, err)

	rec.Pixel.Area = -0.1
	_, err = Augment(rec)
	assert.Error(t, err)
}

func TestAugmentRejectsEmptyData(t *testing.T) {
	rec := Record{Pixel: Pixel{Area: 0.1}}
	_, err := Augment(rec)
	assert.Error(t, err)
}

func TestAugmentRejectsShortRow(t *testing.T) {
	rec := Record{
		Data:  SingleRow([]float64{0.6, 0.005}),
		Pixel: Pixel{Area: 0.1},
	}
	_, err := Augment(rec)
	assert.Error(t, err)
}

func TestAugmentLeavesInputUntouched(t *testing.T) {
	rows := [][]float64{{0.6, 0.005, 100.0, 0}}
	rec := Record{Data: Matrix(rows), Pixel: Pixel{Area: 0.1}}

	_, err := Augment(rec)
	require.NoError(t, err)

	assert.Len(t, rows[0], 4)
	assert.Equal(t, []float64{0.6, 0.005, 100.0, 0}, rows[0])
}
