package event

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/report"
)

// Event kinds
const (
	KindLesson   = "lesson"
	KindDeadline = "deadline"
	KindExam     = "exam"
	KindMeeting  = "meeting"
	KindOther    = "other"
)

var AllKinds = []string{KindLesson, KindDeadline, KindExam, KindMeeting, KindOther}

// Event is one calendar entry, school-wide (empty ClassCode) or class-bound.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	ClassCode string    `json:"class_code"`
	StartsAt  time.Time `json:"starts_at"` // UTC
	EndsAt    null.Time `json:"ends_at"`   // UTC; instantaneous when null
	CreatedAt time.Time `json:"created_at"`
}

var schema = report.Schema{
	{Name: "title", Kind: report.Text},
	{Name: "kind", Kind: report.Text},
	{Name: "class", Kind: report.Text},
	{Name: "starts_at", Kind: report.Date},
}

func (e Event) reportRow() report.Row {
	return report.Row{
		"title":     e.Title,
		"kind":      e.Kind,
		"class":     e.ClassCode,
		"starts_at": e.StartsAt,
	}
}

type NewEvent struct {
	Title     string    `json:"title" validate:"required"`
	Kind      string    `json:"kind" validate:"required,eventkind"`
	ClassCode string    `json:"class_code"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    null.Time `json:"ends_at"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.ClassCode = core.CleanClassCode(ne.ClassCode)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.EndsAt.Valid && ne.EndsAt.Time.Before(ne.StartsAt) {
		return core.NewValidationError(nil, core.FieldError{Field: "ends_at", Error: "event cannot end before it starts"})
	}
	return nil
}

type QueryFilter struct {
	Search    string    `query:"search"`
	Kinds     []string  `query:"kind"`
	ClassCode string    `query:"class"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassCode = core.CleanClassCode(qf.ClassCode)
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Kinds == nil && qf.ClassCode == "" && qf.From.IsZero() && qf.To.IsZero()
}

func (qf QueryFilter) criteria() report.Criteria {
	c := report.Criteria{}
	if qf.Search != "" {
		c = c.With("title", report.Search(qf.Search))
	}
	if len(qf.Kinds) > 0 {
		c = c.With("kind", report.OneOf(qf.Kinds))
	}
	if qf.ClassCode != "" {
		c = c.With("class", report.Equals(qf.ClassCode))
	}
	if !qf.From.IsZero() || !qf.To.IsZero() {
		b := report.Between{}
		if !qf.From.IsZero() {
			b.From = null.TimeFrom(qf.From.UTC())
		}
		if !qf.To.IsZero() {
			b.To = null.TimeFrom(qf.To.UTC())
		}
		c = c.With("starts_at", b)
	}
	return c
}

// DayBucket groups a day's events for the calendar grid.
type DayBucket struct {
	Day    string  `json:"day"` // YYYY-MM-DD, UTC
	Events []Event `json:"events"`
}

// BucketByDay groups events per UTC day, days ordered chronologically.
// Events within a day keep their given order.
func BucketByDay(events []Event) []DayBucket {
	byID := make(map[string]Event, len(events))
	rows := make([]report.Row, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		r := e.reportRow()
		r["id"] = e.ID
		rows = append(rows, r)
	}

	groups := report.GroupBy(rows, func(r report.Row) string {
		return r.Date("starts_at").Time.UTC().Format("2006-01-02")
	})

	buckets := make([]DayBucket, 0, len(groups))
	for _, g := range groups {
		b := DayBucket{Day: g.Key, Events: make([]Event, 0, len(g.Rows))}
		for _, r := range g.Rows {
			b.Events = append(b.Events, byID[r.Text("id").String])
		}
		buckets = append(buckets, b)
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Day < buckets[j].Day })
	return buckets
}
