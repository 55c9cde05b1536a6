package student

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// RosterRow is one parsed line of an uploaded roster CSV, keeping its source
// line number for error reporting.
type RosterRow struct {
	Line       int
	NewStudent NewStudent
}

var rosterHeader = []string{"Name", "Email", "Class", "Team"}

// ParseRoster reads a roster CSV produced by ExportRoster (or a spreadsheet
// export with the same columns). The header row is required; an empty Team
// field means unassigned.
func ParseRoster(r io.Reader) ([]RosterRow, error) {
	rdr := csv.NewReader(r)
	rdr.TrimLeadingSpace = true

	header, err := rdr.Read()
	if err == io.EOF {
		return nil, core.NewValidationError(errors.New("empty roster file"))
	}
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "reading roster header"))
	}
	if !headerMatches(header) {
		return nil, core.NewValidationError(
			errors.Errorf("invalid roster header; expected %s", strings.Join(rosterHeader, ",")))
	}

	var rows []RosterRow
	for line := 2; ; line++ {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rosterLineError(line, errors.Wrap(err, "reading roster line"))
		}

		row := RosterRow{
			Line: line,
			NewStudent: NewStudent{
				Name:      record[0],
				Email:     record[1],
				ClassCode: record[2],
			},
		}
		if team := core.CleanString(record[3]); team != "" {
			n, err := strconv.Atoi(team)
			if err != nil {
				return nil, rosterLineError(line, errors.Errorf("invalid team number %q", team))
			}
			row.NewStudent.TeamNumber = null.IntFrom(n)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(rosterHeader) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(core.CleanString(h), rosterHeader[i]) {
			return false
		}
	}
	return true
}

func rosterLineError(line int, err error) error {
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && len(vErr.Fields) > 0 {
		flds := make([]core.FieldError, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("line %d: %s", line, f.Field),
				Error: f.Error,
			})
		}
		return core.NewValidationError(vErr.Err, flds...)
	}
	return core.NewValidationError(errors.Wrapf(err, "line %d", line))
}
