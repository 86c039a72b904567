// Package id generates the canonical 36-character UUIDv4 identifiers the
// placement engine uses for every entity, replacing the teacher's Snowflake
// int64 IDs — the wire contract requires UUID strings, not time-ordered
// integers (see DESIGN.md).
package id

import "github.com/google/uuid"

// New generates a fresh UUIDv4 string.
func New() string {
	return uuid.NewString()
}
