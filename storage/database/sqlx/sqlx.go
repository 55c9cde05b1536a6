// Package sqlxrepos implements the domain repositories on PostgreSQL via sqlx.
package sqlxrepos

import "strconv"

func itoa(n int) string { return strconv.Itoa(n) }
