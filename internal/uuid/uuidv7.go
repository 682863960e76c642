// Package uuid generates the time-ordered identifiers used for transactions
// and persisted rows.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. UUIDv7 sorts by creation time, so
// transactions keep their entry order when listed by id. If the random
// source fails it falls back to a UUIDv4.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
