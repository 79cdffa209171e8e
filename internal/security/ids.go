package security

import "github.com/google/uuid"

// GenerateID returns a random identifier for practice instances and tokens
func GenerateID() string {
	return uuid.New().String()
}
