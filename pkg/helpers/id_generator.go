package helpers

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator generates various types of IDs
type IDGenerator struct{}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GenerateUUID generates a UUID v4
func (g *IDGenerator) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateReviewID generates a review-queue entry ID
// Format: rev-<uuid> (e.g. rev-8f14e45f-...)
func (g *IDGenerator) GenerateReviewID() string {
	return fmt.Sprintf("rev-%s", uuid.NewString())
}
