// Package report implements the filter → group → aggregate → export pipeline
// behind the portal's tabular and heatmap views. Everything in here is a pure,
// synchronous transform over rows already fetched from a repository: inputs are
// never mutated and "no data" is carried as an invalid null value end to end,
// distinct from zero.
package report

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type FieldKind int

const (
	Text FieldKind = iota
	Number
	Bool
	Date
)

// Field describes one named, typed column of a row collection.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema describes the shape of a row collection so predicate evaluation
// is type-aware instead of purely dynamic.
type Schema []Field

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Row is one externally-sourced record. Values may be missing, nil or of an
// unexpected type; the typed accessors below are total and degrade to invalid
// null values instead of panicking.
type Row map[string]interface{}

func (r Row) Text(name string) null.String {
	switch v := r[name].(type) {
	case string:
		return null.StringFrom(v)
	case null.String:
		return v
	}
	return null.String{}
}

func (r Row) Number(name string) null.Float64 {
	switch v := r[name].(type) {
	case float64:
		return null.Float64From(v)
	case float32:
		return null.Float64From(float64(v))
	case int:
		return null.Float64From(float64(v))
	case int64:
		return null.Float64From(float64(v))
	case null.Float64:
		return v
	case null.Int:
		if !v.Valid {
			return null.Float64{}
		}
		return null.Float64From(float64(v.Int))
	}
	return null.Float64{}
}

func (r Row) Bool(name string) null.Bool {
	switch v := r[name].(type) {
	case bool:
		return null.BoolFrom(v)
	case null.Bool:
		return v
	}
	return null.Bool{}
}

func (r Row) Date(name string) null.Time {
	switch v := r[name].(type) {
	case time.Time:
		return null.TimeFrom(v)
	case null.Time:
		return v
	}
	return null.Time{}
}
