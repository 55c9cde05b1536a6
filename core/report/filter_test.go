package report

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

var studentSchema = Schema{
	{Name: "name", Kind: Text},
	{Name: "class", Kind: Text},
	{Name: "team", Kind: Number},
	{Name: "unassigned", Kind: Bool},
	{Name: "score", Kind: Number},
	{Name: "enrolled", Kind: Date},
}

func student(name, class string, team interface{}) Row {
	r := Row{"name": name, "class": class, "team": team}
	r["unassigned"] = team == nil
	return r
}

func Test_Criteria_Match(t *testing.T) {
	anna := student("Anna", "5V1", 1)

	tests := []struct {
		name     string
		criteria Criteria
		row      Row
		want     bool
	}{
		{name: "empty criteria passes", criteria: Criteria{}, row: anna, want: true},
		{name: "nil criteria passes", criteria: nil, row: anna, want: true},
		{name: "inactive predicates pass", criteria: Criteria{"name": Search(""), "class": OneOf(nil)}, row: anna, want: true},
		{name: "search match", criteria: Criteria{"name": Search("an")}, row: anna, want: true},
		{name: "search is case-insensitive", criteria: Criteria{"name": Search("ANN")}, row: anna, want: true},
		{name: "search mismatch", criteria: Criteria{"name": Search("liam")}, row: anna, want: false},
		{name: "AND: all pass", criteria: Criteria{"name": Search("an"), "class": Equals("5V1")}, row: anna, want: true},
		{name: "AND: one fails", criteria: Criteria{"name": Search("an"), "class": Equals("5V2")}, row: anna, want: false},
		{name: "set membership", criteria: Criteria{"class": OneOf{"5V1", "5V2"}}, row: anna, want: true},
		{name: "set mismatch", criteria: Criteria{"class": OneOf{"4H1"}}, row: anna, want: false},
		{name: "numeric range", criteria: Criteria{"score": Range{Min: null.Float64From(1), Max: null.Float64From(5)}}, row: Row{"score": 3.5}, want: true},
		{name: "numeric range: below min", criteria: Criteria{"score": Range{Min: null.Float64From(4)}}, row: Row{"score": 3.5}, want: false},
		{name: "numeric range: missing value excluded", criteria: Criteria{"score": Range{Min: null.Float64From(1)}}, row: anna, want: false},
		{name: "bool predicate", criteria: Criteria{"unassigned": Is(false)}, row: anna, want: true},
		{name: "bool: missing field counts as false", criteria: Criteria{"unassigned": Is(false)}, row: Row{"name": "x"}, want: true},
		{name: "bool: missing field does not count as true", criteria: Criteria{"unassigned": Is(true)}, row: Row{"name": "x"}, want: false},
		{name: "substring on missing field excluded", criteria: Criteria{"name": Search("an")}, row: Row{"class": "5V1"}, want: false},
		{name: "malformed field excluded", criteria: Criteria{"name": Search("an")}, row: Row{"name": 42}, want: false},
		{name: "unknown schema field excluded", criteria: Criteria{"nope": Search("an")}, row: anna, want: false},
		{
			name: "date range",
			criteria: Criteria{"enrolled": Between{
				From: null.TimeFrom(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)),
			}},
			row:  Row{"enrolled": time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.Match(studentSchema, tt.row); got != tt.want {
				t.Errorf("Match() = %v; want %v", got, tt.want)
			}
		})
	}
}

func Test_Apply_passthroughAndOrder(t *testing.T) {
	rows := []Row{
		student("Anna", "5V1", 1),
		student("Liam", "5V1", nil),
		student("Emma", "5V2", 2),
	}

	got := Apply(studentSchema, rows, Criteria{})
	if len(got) != len(rows) {
		t.Fatalf("empty criteria: got %d rows; want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i].Text("name") != rows[i].Text("name") {
			t.Errorf("row %d: order not preserved", i)
		}
	}
}

func Test_Apply_unassignedOnly(t *testing.T) {
	// 10 students, 3 without a team; filtering must return exactly those 3 in order
	rows := make([]Row, 0, 10)
	for _, s := range []struct {
		name string
		team interface{}
	}{
		{"s0", 1}, {"s1", nil}, {"s2", 2}, {"s3", 1}, {"s4", nil},
		{"s5", 3}, {"s6", 2}, {"s7", nil}, {"s8", 1}, {"s9", 3},
	} {
		rows = append(rows, student(s.name, "5V1", s.team))
	}

	got := Apply(studentSchema, rows, Criteria{"unassigned": Is(true)})
	want := []string{"s1", "s4", "s7"}
	if len(got) != len(want) {
		t.Fatalf("got %d rows; want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Text("name").String != name {
			t.Errorf("row %d = %s; want %s", i, got[i].Text("name").String, name)
		}
	}
}

func Test_Criteria_reducers(t *testing.T) {
	c1 := Criteria{}.With("name", Search("an"))
	c2 := c1.With("class", Equals("5V1"))
	c3 := c2.Without("name")

	if len(c1) != 1 || len(c2) != 2 || len(c3) != 1 {
		t.Fatalf("unexpected criteria sizes: %d, %d, %d", len(c1), len(c2), len(c3))
	}
	// c1 must not have been mutated by With/Without
	if _, ok := c1["class"]; ok {
		t.Error("With() mutated its receiver")
	}
	if _, ok := c2["name"]; !ok {
		t.Error("Without() mutated its receiver")
	}
	if !(Criteria{}).IsEmpty() || !c2.Without("name").Without("class").IsEmpty() {
		t.Error("IsEmpty() = false; want true")
	}
	if (Criteria{"name": Search("")}).IsEmpty() != true {
		t.Error("criteria with only inactive predicates should be empty")
	}
}
