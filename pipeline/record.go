package pipeline

import (
	"encoding/json"
	"fmt"
)

// Raw measurement rows arrive from the SMU as (voltage, current, time, status).
// Augmentation appends current density j and power p after the status column.
const (
	colVoltage = 0
	colCurrent = 1
	colTime    = 2
	rawCols    = 4
	colJ       = 4
	colP       = 5
)

// Table holds the numeric payload of a measurement record. Current-vs-time
// messages carry a single flat row on the wire while current-vs-voltage
// messages carry a matrix; Table decodes both into rows and re-encodes in the
// original shape so producer and consumer agree on the schema.
type Table struct {
	Rows [][]float64

	flat bool
}

// SingleRow builds a table that encodes as one flat row.
func SingleRow(row []float64) Table {
	return Table{Rows: [][]float64{row}, flat: true}
}

// Matrix builds a table that encodes as a matrix of rows.
func Matrix(rows [][]float64) Table {
	return Table{Rows: rows}
}

// UnmarshalJSON accepts either a matrix of numbers or one flat row.
func (t *Table) UnmarshalJSON(b []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err == nil {
		t.Rows = rows
		t.flat = false
		return nil
	}

	var row []float64
	if err := json.Unmarshal(b, &row); err != nil {
		return fmt.Errorf("data is neither a numeric row nor a matrix: %w", err)
	}
	t.Rows = [][]float64{row}
	t.flat = true
	return nil
}

// MarshalJSON re-emits the shape the table was decoded from.
func (t Table) MarshalJSON() ([]byte, error) {
	if t.flat && len(t.Rows) == 1 {
		return json.Marshal(t.Rows[0])
	}
	if t.Rows == nil {
		return json.Marshal([][]float64{})
	}
	return json.Marshal(t.Rows)
}

// Pixel carries the device geometry needed for derived quantities.
type Pixel struct {
	// Area is the illuminated device area in cm². Must be positive.
	Area float64 `json:"area"`
}

// Record is one measurement message: raw when received, augmented once the
// derived columns have been appended. Records are never mutated after
// construction; augmentation returns a fresh copy.
type Record struct {
	Data  Table  `json:"data"`
	Pixel Pixel  `json:"pixel"`
	Clear bool   `json:"clear"`
	IDN   string `json:"idn"`
}

// DecodeRecord parses a wire payload into a Record.
func DecodeRecord(payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Encode serializes the record for republication.
func (r Record) Encode() ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return payload, nil
}
