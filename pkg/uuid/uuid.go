// Package uuid issues time-ordered identifiers for served predictions.
// UUID v7 is sortable by timestamp, which keeps the predictions table index
// append-mostly.
package uuid

import guuid "github.com/google/uuid"

// NewV7 returns a canonical UUID v7 string. If the random source fails it
// falls back to a v4 identifier rather than returning an error.
func NewV7() string {
	id, err := guuid.NewV7()
	if err != nil {
		return guuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := guuid.Parse(s)
	return err == nil
}
