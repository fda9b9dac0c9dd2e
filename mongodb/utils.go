package mongodb

import "github.com/google/uuid"

// NewID generates a new document id.
func NewID() string {
	return uuid.NewString()
}
