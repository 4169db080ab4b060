package model

import (
	"time"

	"github.com/google/uuid"
)

// Course represents one course in the catalog, used to label an exam scope.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Grade       *Grade    `json:"grade,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
