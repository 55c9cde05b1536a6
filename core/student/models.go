package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/report"
)

// Student is one enrolled student. TeamNumber is intentionally nullable:
// "not assigned to a team" must stay distinct from any real team number.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ClassCode  string    `json:"class_code"`
	TeamNumber null.Int  `json:"team_number"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// schema declares the student list's filterable fields for the report engine.
var schema = report.Schema{
	{Name: "search", Kind: report.Text}, // denormalized: name + email
	{Name: "class", Kind: report.Text},
	{Name: "team", Kind: report.Number},
	{Name: "unassigned", Kind: report.Bool},
	{Name: "enrolled", Kind: report.Date},
}

func (s Student) reportRow() report.Row {
	return report.Row{
		"search":     s.Name + " " + s.Email,
		"class":      s.ClassCode,
		"team":       s.TeamNumber,
		"unassigned": !s.TeamNumber.Valid,
		"enrolled":   s.CreatedAt,
	}
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"omitempty,email"`
	ClassCode  string   `json:"class_code" validate:"required"`
	TeamNumber null.Int `json:"team_number"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.ClassCode = core.CleanClassCode(ns.ClassCode)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.TeamNumber.Valid && ns.TeamNumber.Int < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "team_number", Error: errTeamNumberText})
	}
	return nil
}

// UpdateStudent contains information needed to update an existing Student.
// Zero-valued fields are left untouched; TeamNumber is handled by AssignTeam/ClearTeam.
type UpdateStudent struct {
	Name      string `json:"name" validate:"omitempty"`
	Email     string `json:"email" validate:"omitempty,email"`
	ClassCode string `json:"class_code" validate:"omitempty"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.ClassCode = core.CleanClassCode(us.ClassCode)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search       string    `query:"search"`
	ClassCode    string    `query:"class"`
	TeamNumber   null.Int  `query:"-"`
	Unassigned   null.Bool `query:"-"`
	EnrolledFrom time.Time `query:"enrolled_from"`
	EnrolledTo   time.Time `query:"enrolled_to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassCode = core.CleanClassCode(qf.ClassCode)
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassCode == "" && !qf.TeamNumber.Valid && !qf.Unassigned.Valid &&
		qf.EnrolledFrom.IsZero() && qf.EnrolledTo.IsZero()
}

// criteria translates the bound query filter into report predicates.
func (qf QueryFilter) criteria() report.Criteria {
	c := report.Criteria{}
	if qf.Search != "" {
		c = c.With("search", report.Search(qf.Search))
	}
	if qf.ClassCode != "" {
		c = c.With("class", report.Equals(qf.ClassCode))
	}
	if qf.TeamNumber.Valid {
		team := null.Float64From(float64(qf.TeamNumber.Int))
		c = c.With("team", report.Range{Min: team, Max: team})
	}
	if qf.Unassigned.Valid {
		c = c.With("unassigned", report.Is(qf.Unassigned.Bool))
	}
	if !qf.EnrolledFrom.IsZero() || !qf.EnrolledTo.IsZero() {
		b := report.Between{}
		if !qf.EnrolledFrom.IsZero() {
			b.From = null.TimeFrom(qf.EnrolledFrom.UTC())
		}
		if !qf.EnrolledTo.IsZero() {
			b.To = null.TimeFrom(qf.EnrolledTo.UTC())
		}
		c = c.With("enrolled", b)
	}
	return c
}
