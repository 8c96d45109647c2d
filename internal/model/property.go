package model

import (
	"time"

	"github.com/google/uuid"
)

// Property is a physical site belonging to a business. ConnectionCode is the
// secret-like code staff use to self-associate during registration; it is
// unique across the whole system, not just within a business.
type Property struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"property_code"`
	Name           string    `json:"property_name"`
	ConnectionCode string    `json:"connection_code"`
	BusinessID     uuid.UUID `json:"business_id"`
	Address        string    `json:"address"`
	IsMain         bool      `json:"is_main_property"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
