package report

import "github.com/volatiletech/null/v8"

// Delta computes the signed difference between two aggregate snapshots of the
// same group (eg. this scan vs the previous one). A delta cannot be computed
// from a missing baseline: when either side is invalid the result is invalid,
// never a fabricated 0. Two equal valid values yield a valid 0: "no change"
// and "no previous data" stay distinct, renderable states.
func Delta(current, previous null.Float64) null.Float64 {
	if !current.Valid || !previous.Valid {
		return null.Float64{}
	}
	return null.Float64From(current.Float64 - previous.Float64)
}
