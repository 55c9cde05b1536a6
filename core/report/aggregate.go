package report

import (
	"math"
	"sort"

	"github.com/volatiletech/null/v8"
)

type (
	// Group is one partition of a row collection.
	Group struct {
		Key  string
		Rows []Row
	}

	// Summary is the aggregate of one group: its member count and the mean of
	// a Number field. Mean is invalid when the group holds no usable value
	// (the "no data" marker, distinct from a mean of exactly 0).
	Summary struct {
		Key   string       `json:"key"`
		Count int          `json:"count"`
		Mean  null.Float64 `json:"mean"`
	}
)

// GroupBy partitions rows by the key accessor. Group order is the insertion
// order of each key's first occurrence, so grouping the same collection twice
// yields identical output.
func GroupBy(rows []Row, key func(Row) string) []Group {
	var groups []Group
	idx := make(map[string]int, len(rows))
	for _, r := range rows {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Mean computes the arithmetic mean of a Number field over rows in double
// precision, skipping missing, malformed and non-finite values. No rounding
// is applied; display-time rounding is the caller's concern. When not a single
// usable value exists the result is invalid ("no data"), never 0 or NaN.
func Mean(rows []Row, field string) null.Float64 {
	var sum float64
	var n int
	for _, r := range rows {
		v := r.Number(field)
		if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
			continue
		}
		sum += v.Float64
		n++
	}
	if n == 0 {
		return null.Float64{}
	}
	return null.Float64From(sum / float64(n))
}

// Summarize computes the per-group member count and mean of the field.
// Output order follows the group order.
func Summarize(groups []Group, field string) []Summary {
	sums := make([]Summary, 0, len(groups))
	for _, g := range groups {
		sums = append(sums, Summary{
			Key:   g.Key,
			Count: len(g.Rows),
			Mean:  Mean(g.Rows, field),
		})
	}
	return sums
}

type SortKey int

const (
	ByKey SortKey = iota
	ByCount
	ByMean
)

// SortSummaries orders summaries by an explicit sort key, ascending or
// descending, with ties keeping their original (insertion) order. Groups
// without data sort after every valid mean regardless of direction.
func SortSummaries(sums []Summary, by SortKey, descending bool) []Summary {
	out := make([]Summary, len(sums))
	copy(out, sums)

	less := func(a, b Summary) bool {
		switch by {
		case ByCount:
			return a.Count < b.Count
		case ByMean:
			return a.Mean.Float64 < b.Mean.Float64
		default:
			return a.Key < b.Key
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if by == ByMean && a.Mean.Valid != b.Mean.Valid {
			return a.Mean.Valid // no-data always last
		}
		if descending {
			a, b = b, a
		}
		return less(a, b)
	})
	return out
}
