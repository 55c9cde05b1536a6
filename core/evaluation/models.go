package evaluation

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/report"
)

type (
	// Competency is one rubric criterion students are rated on (eg. "Collaboration").
	Competency struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Category  string    `json:"category"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Scan is one evaluation round for a class: peers rate each other on every
	// competency while the scan window is open.
	Scan struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		ClassCode string    `json:"class_code"`
		OpensAt   time.Time `json:"opens_at"`  // UTC
		ClosesAt  null.Time `json:"closes_at"` // UTC; open-ended when null
		CreatedAt time.Time `json:"created_at"`
	}

	// Rating is one student's score on one competency within one scan.
	// Score is nullable: a comment-only rating carries no score, and that
	// absence must never collapse into a 0.
	Rating struct {
		ID           string       `json:"id"`
		ScanID       string       `json:"scan_id"`
		StudentID    string       `json:"student_id"`
		CompetencyID string       `json:"competency_id"`
		Score        null.Float64 `json:"score"`
		Comment      string       `json:"comment"`
		CreatedAt    time.Time    `json:"created_at"` // UTC
		UpdatedAt    time.Time    `json:"updated_at"` // UTC
	}
)

// Scores are on the rubric's 1..5 scale.
const (
	ScoreMin = 1.0
	ScoreMax = 5.0
)

func (s Scan) IsOpenAt(t time.Time) bool {
	if t.Before(s.OpensAt) {
		return false
	}
	return !s.ClosesAt.Valid || !t.After(s.ClosesAt.Time)
}

type NewCompetency struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func (nc *NewCompetency) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Category = core.CleanString(nc.Category)
	return validate.Struct(nc)
}

type NewScan struct {
	Name      string    `json:"name" validate:"required"`
	ClassCode string    `json:"class_code" validate:"required"`
	OpensAt   time.Time `json:"opens_at"`
	ClosesAt  null.Time `json:"closes_at"`
}

func (ns *NewScan) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ClassCode = core.CleanClassCode(ns.ClassCode)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.ClosesAt.Valid && !ns.OpensAt.IsZero() && ns.ClosesAt.Time.Before(ns.OpensAt) {
		return core.NewValidationError(nil, core.FieldError{Field: "closes_at", Error: "scan cannot close before it opens"})
	}
	return nil
}

// NewRating records or overwrites a student's rating on a competency.
type NewRating struct {
	ScanID       string       `json:"scan_id" validate:"required"`
	StudentID    string       `json:"student_id" validate:"required"`
	CompetencyID string       `json:"competency_id" validate:"required"`
	Score        null.Float64 `json:"score"`
	Comment      string       `json:"comment"`
}

func (nr *NewRating) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	if !nr.Score.Valid && nr.Comment == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: "a rating needs a score or a comment"})
	}
	if nr.Score.Valid && (nr.Score.Float64 < ScoreMin || nr.Score.Float64 > ScoreMax) {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score must be between 1 and 5"})
	}
	return nil
}

func (r Rating) reportRow(comp Competency, teamKey string) report.Row {
	return report.Row{
		"competency": comp.Name,
		"category":   comp.Category,
		"team":       teamKey,
		"score":      r.Score,
	}
}

var ratingSchema = report.Schema{
	{Name: "competency", Kind: report.Text},
	{Name: "category", Kind: report.Text},
	{Name: "team", Kind: report.Text},
	{Name: "score", Kind: report.Number},
}

type (
	// Cell is one heatmap cell: a competency's aggregate over a scan.
	// Mean is null when no rating carried a score; it renders as "no data",
	// never as 0.
	Cell struct {
		CompetencyID string       `json:"competency_id"`
		Competency   string       `json:"competency"`
		Category     string       `json:"category"`
		Count        int          `json:"count"`
		Mean         null.Float64 `json:"mean"`
	}

	// TrendCell joins a competency's aggregate in the current scan with the
	// previous scan's. Delta is null when either side has no data; a 0 delta
	// means a real, measured "no change".
	TrendCell struct {
		CompetencyID string       `json:"competency_id"`
		Competency   string       `json:"competency"`
		Category     string       `json:"category"`
		Current      null.Float64 `json:"current"`
		Previous     null.Float64 `json:"previous"`
		Delta        null.Float64 `json:"delta"`
	}
)
