package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDurationFormat reports a time value that matched none of the
	// recognized duration shapes.
	ErrInvalidDurationFormat = errors.New("invalid time format")

	// ErrInvalidRowData reports a row whose cells could not be coerced into a
	// canonical benchmark record.
	ErrInvalidRowData = errors.New("invalid row data")

	// ErrEmptyUpload reports an upload with no usable rows, either before or
	// after per-row processing.
	ErrEmptyUpload = errors.New("upload contains no usable data")
)

// RowError carries the physical spreadsheet row number (header row is row 1)
// and the offending cell value for a failed row.
type RowError struct {
	Row   int
	Value string
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("invalid data in row %d: %v (value %q)", e.Row, e.Cause, e.Value)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrInvalidRowData, e.Cause}
}
