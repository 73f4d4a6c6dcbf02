package utils

import "github.com/google/uuid"

var newV7 = uuid.NewV7

// NewID returns a time-ordered UUID so primary keys follow insertion
// order. A random UUID is used if the v7 source fails.
func NewID() uuid.UUID {
	if id, err := newV7(); err == nil {
		return id
	}
	return uuid.New()
}
