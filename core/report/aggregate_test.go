package report

import (
	"math"
	"reflect"
	"testing"

	"github.com/volatiletech/null/v8"
)

func scoreRow(class string, score interface{}) Row {
	return Row{"class": class, "score": score}
}

func byClass(r Row) string { return r.Text("class").String }

func Test_GroupBy_stability(t *testing.T) {
	rows := []Row{
		scoreRow("5V2", 4.0),
		scoreRow("5V1", 3.0),
		scoreRow("5V2", 2.0),
		scoreRow("4H1", 5.0),
		scoreRow("5V1", 1.0),
	}

	first := GroupBy(rows, byClass)
	second := GroupBy(rows, byClass)

	wantKeys := []string{"5V2", "5V1", "4H1"}
	wantCounts := []int{2, 2, 1}
	for _, groups := range [][]Group{first, second} {
		if len(groups) != len(wantKeys) {
			t.Fatalf("got %d groups; want %d", len(groups), len(wantKeys))
		}
		for i, g := range groups {
			if g.Key != wantKeys[i] {
				t.Errorf("group %d key = %s; want %s", i, g.Key, wantKeys[i])
			}
			if len(g.Rows) != wantCounts[i] {
				t.Errorf("group %s count = %d; want %d", g.Key, len(g.Rows), wantCounts[i])
			}
		}
	}
}

func Test_Mean(t *testing.T) {
	tests := []struct {
		name   string
		scores []interface{}
		want   null.Float64
	}{
		{name: "plain mean", scores: []interface{}{4.0, 3.0, 5.0}, want: null.Float64From(4)},
		{name: "nulls are skipped, not zeroed", scores: []interface{}{4.0, nil, 2.0}, want: null.Float64From(3)},
		{name: "zero scores aggregate to 0", scores: []interface{}{0.0, 0.0}, want: null.Float64From(0)},
		{name: "all null yields no data", scores: []interface{}{nil, nil}, want: null.Float64{}},
		{name: "empty group yields no data", scores: nil, want: null.Float64{}},
		{name: "NaN never leaks", scores: []interface{}{math.NaN()}, want: null.Float64{}},
		{name: "invalid null values are skipped", scores: []interface{}{null.Float64{}, 2.0}, want: null.Float64From(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, 0, len(tt.scores))
			for _, s := range tt.scores {
				rows = append(rows, scoreRow("5V1", s))
			}
			if got := Mean(rows, "score"); got != tt.want {
				t.Errorf("Mean() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func Test_Summarize_noDataSentinel(t *testing.T) {
	// a group whose mean is exactly 0 must stay distinguishable from a group without data
	rows := []Row{
		scoreRow("zeros", 0.0),
		scoreRow("zeros", 0.0),
		scoreRow("empty", nil),
		scoreRow("empty", nil),
	}
	sums := Summarize(GroupBy(rows, byClass), "score")

	want := []Summary{
		{Key: "zeros", Count: 2, Mean: null.Float64From(0)},
		{Key: "empty", Count: 2, Mean: null.Float64{}},
	}
	if !reflect.DeepEqual(sums, want) {
		t.Errorf("Summarize() = %+v; want %+v", sums, want)
	}
}

func Test_SortSummaries(t *testing.T) {
	sums := []Summary{
		{Key: "a", Count: 2, Mean: null.Float64From(3)},
		{Key: "b", Count: 5, Mean: null.Float64{}},
		{Key: "c", Count: 1, Mean: null.Float64From(4)},
		{Key: "d", Count: 1, Mean: null.Float64From(3)}, // ties with "a": insertion order wins
	}

	keys := func(s []Summary) []string {
		out := make([]string, len(s))
		for i, sum := range s {
			out[i] = sum.Key
		}
		return out
	}

	tests := []struct {
		name       string
		by         SortKey
		descending bool
		want       []string
	}{
		{name: "by mean asc, no-data last", by: ByMean, want: []string{"a", "d", "c", "b"}},
		{name: "by mean desc, no-data still last", by: ByMean, descending: true, want: []string{"c", "a", "d", "b"}},
		{name: "by count asc", by: ByCount, want: []string{"c", "d", "a", "b"}},
		{name: "by key desc", by: ByKey, descending: true, want: []string{"d", "c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(SortSummaries(sums, tt.by, tt.descending))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortSummaries() order = %v; want %v", got, tt.want)
			}
		})
	}

	// input must not be reordered
	if sums[0].Key != "a" || sums[3].Key != "d" {
		t.Error("SortSummaries() mutated its input")
	}
}

func Test_Delta(t *testing.T) {
	noData := null.Float64{}
	tests := []struct {
		name     string
		current  null.Float64
		previous null.Float64
		want     null.Float64
	}{
		{name: "improvement", current: null.Float64From(4.5), previous: null.Float64From(3.5), want: null.Float64From(1)},
		{name: "decline", current: null.Float64From(2), previous: null.Float64From(3.5), want: null.Float64From(-1.5)},
		{name: "no change is a defined zero", current: null.Float64From(4), previous: null.Float64From(4), want: null.Float64From(0)},
		{name: "missing baseline yields no data", current: null.Float64From(4), previous: noData, want: noData},
		{name: "missing current yields no data", current: noData, previous: null.Float64From(4), want: noData},
		{name: "both missing yields no data", current: noData, previous: noData, want: noData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.current, tt.previous); got != tt.want {
				t.Errorf("Delta() = %+v; want %+v", got, tt.want)
			}
		})
	}
}
