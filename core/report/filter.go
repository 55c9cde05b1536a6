package report

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

type (
	// Predicate decides whether one row value satisfies a single constraint.
	// Implementations must be total: a missing or malformed value degrades to
	// a non-match (false for Bool predicates), never an error.
	Predicate interface {
		matches(f Field, r Row) bool
		active() bool
	}

	// Search matches when the Text field contains the keyword, case-insensitively.
	Search string

	// Equals matches on exact Text equality.
	Equals string

	// OneOf matches when the Text field equals any member of the set.
	OneOf []string

	// Is matches on Bool equality; a missing or malformed value counts as false.
	Is bool

	// Range matches when the Number field falls within [Min, Max] (inclusive);
	// an invalid bound is unconstrained.
	Range struct {
		Min null.Float64
		Max null.Float64
	}

	// Between matches when the Date field falls within [From, To] (inclusive);
	// an invalid bound is unconstrained.
	Between struct {
		From null.Time
		To   null.Time
	}
)

func (p Search) active() bool  { return p != "" }
func (p Equals) active() bool  { return p != "" }
func (p OneOf) active() bool   { return len(p) > 0 }
func (p Is) active() bool      { return true }
func (p Range) active() bool   { return p.Min.Valid || p.Max.Valid }
func (p Between) active() bool { return p.From.Valid || p.To.Valid }

func (p Search) matches(f Field, r Row) bool {
	if f.Kind != Text {
		return false
	}
	v := r.Text(f.Name)
	if !v.Valid {
		return false
	}
	return strings.Contains(strings.ToLower(v.String), strings.ToLower(string(p)))
}

func (p Equals) matches(f Field, r Row) bool {
	if f.Kind != Text {
		return false
	}
	v := r.Text(f.Name)
	return v.Valid && v.String == string(p)
}

func (p OneOf) matches(f Field, r Row) bool {
	if f.Kind != Text {
		return false
	}
	v := r.Text(f.Name)
	if !v.Valid {
		return false
	}
	for _, s := range p {
		if v.String == s {
			return true
		}
	}
	return false
}

func (p Is) matches(f Field, r Row) bool {
	if f.Kind != Bool {
		return false
	}
	// missing/malformed degrades to false rather than a non-match,
	// so Is(false) still matches rows without the field
	return r.Bool(f.Name).Bool == bool(p)
}

func (p Range) matches(f Field, r Row) bool {
	if f.Kind != Number {
		return false
	}
	v := r.Number(f.Name)
	if !v.Valid {
		return false
	}
	if p.Min.Valid && v.Float64 < p.Min.Float64 {
		return false
	}
	if p.Max.Valid && v.Float64 > p.Max.Float64 {
		return false
	}
	return true
}

func (p Between) matches(f Field, r Row) bool {
	if f.Kind != Date {
		return false
	}
	v := r.Date(f.Name)
	if !v.Valid {
		return false
	}
	if p.From.Valid && v.Time.Before(p.From.Time) {
		return false
	}
	if p.To.Valid && v.Time.After(p.To.Time) {
		return false
	}
	return true
}

// Criteria is the active set of inclusion predicates, keyed by field name.
// Values are never mutated in place; With and Without return fresh copies so
// the owner of the "current criteria" reference can treat them as immutable.
type Criteria map[string]Predicate

func (c Criteria) IsEmpty() bool {
	for _, p := range c {
		if p.active() {
			return false
		}
	}
	return true
}

// With returns a copy of c with the predicate set for the field.
func (c Criteria) With(field string, p Predicate) Criteria {
	next := make(Criteria, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	next[field] = p
	return next
}

// Without returns a copy of c with the field's predicate removed.
func (c Criteria) Without(field string) Criteria {
	next := make(Criteria, len(c))
	for k, v := range c {
		if k != field {
			next[k] = v
		}
	}
	return next
}

// Match reports whether the row passes every active predicate (logical AND).
// Inactive predicates and an empty criteria set always pass. A predicate on a
// field the schema does not declare excludes the row: its type is unknown, so
// it can never be shown to match.
func (c Criteria) Match(s Schema, r Row) bool {
	for name, p := range c {
		if !p.active() {
			continue
		}
		f, ok := s.Field(name)
		if !ok {
			return false
		}
		if !p.matches(f, r) {
			return false
		}
	}
	return true
}

// Apply filters rows by the criteria, preserving the original relative order.
// The result is freshly allocated, never aliased back into the input.
func Apply(s Schema, rows []Row, c Criteria) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if c.Match(s, r) {
			out = append(out, r)
		}
	}
	return out
}
