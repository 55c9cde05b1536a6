package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// Table is an export-ready grid: a header plus rows of pre-formatted cells.
// Column order is fixed by the caller and every row must match the header
// width exactly; a mismatch would silently misalign the exported data, so
// Write refuses it instead.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return errors.Errorf("csv: row %d has %d fields, header has %d", i, len(row), len(t.Header))
		}
	}
	return nil
}

// Write serializes the table as CSV. Every field is quoted unconditionally and
// embedded quotes are doubled, so commas and newlines in free-text fields
// (names, comments) survive a round-trip through any standard CSV parser.
func (t Table) Write(w io.Writer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := writeRecord(w, t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeRecord(w, row); err != nil {
			return err
		}
	}
	return nil
}

func (t Table) Bytes() ([]byte, error) {
	var b strings.Builder
	if err := t.Write(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func writeRecord(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing csv record")
}

// NumberCell formats a nullable number for export. "No data" becomes an empty
// (but still quoted) field, never "0", which would read as a real score.
// prec -1 keeps the full precision; display rounding belongs to the caller.
func NumberCell(v null.Float64, prec int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}
