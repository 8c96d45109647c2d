package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Staff is a member of a business, including the owner. Property visibility
// is never inferred from role or ownership: a staff member sees exactly the
// properties in PropertyAccess, including the business's main property only
// when it was explicitly seeded or granted.
type Staff struct {
	ID             uuid.UUID   `json:"id"`
	StaffID        string      `json:"staff_id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Role           Role        `json:"role"`
	BusinessID     uuid.UUID   `json:"business_id"`
	BusinessCode   string      `json:"business_code"`
	PasswordHash   string      `json:"-"`
	PropertyAccess []uuid.UUID `json:"property_access"`
	IsApproved     bool        `json:"is_approved"`
	IsActive       bool        `json:"is_active"`
	LastLogin      time.Time   `json:"last_login"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// HasAccess reports whether the explicit access list contains propertyID.
func (s Staff) HasAccess(propertyID uuid.UUID) bool {
	for _, id := range s.PropertyAccess {
		if id == propertyID {
			return true
		}
	}
	return false
}

// SplitFullName splits a display name into first/last, keeping everything
// after the first word in the last name.
func SplitFullName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
