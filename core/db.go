package core

// Ordering is one user-requested sort key, applied to query results.
type Ordering struct {
	Field     string
	Ascending bool
}
