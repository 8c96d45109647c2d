package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BusinessType string

const (
	BusinessTypeRestaurant BusinessType = "restaurant"
	BusinessTypeCafe       BusinessType = "cafe"
	BusinessTypeBar        BusinessType = "bar"
	BusinessTypeHotel      BusinessType = "hotel"
	BusinessTypeRetail     BusinessType = "retail"
	BusinessTypeFoodTruck  BusinessType = "food-truck"
	BusinessTypeCatering   BusinessType = "catering"
)

func (t BusinessType) IsValid() bool {
	switch t {
	case BusinessTypeRestaurant, BusinessTypeCafe, BusinessTypeBar, BusinessTypeHotel,
		BusinessTypeRetail, BusinessTypeFoodTruck, BusinessTypeCatering:
		return true
	default:
		return false
	}
}

func (t BusinessType) String() string {
	return string(t)
}

func ParseBusinessType(s string) (BusinessType, error) {
	t := BusinessType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid business type: %s", s)
	}
	return t, nil
}

// BusinessSettings are owner-tunable knobs scoped to one business.
type BusinessSettings struct {
	TaxRate          float64 `json:"tax_rate"`
	Currency         string  `json:"currency"`
	AutoApproveStaff bool    `json:"auto_approve_staff"`
}

// Business is the umbrella account: one tenant owning one or more properties.
// Code is the human-readable business code, BusinessID the globally unique
// public identifier. Deletion is soft via IsActive.
type Business struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"business_code"`
	BusinessID  string           `json:"business_id"`
	CompanyName string           `json:"company_name"`
	Type        BusinessType     `json:"business_type"`
	OwnerName   string           `json:"owner_name"`
	OwnerEmail  string           `json:"owner_email"`
	Phone       string           `json:"phone"`
	Settings    BusinessSettings `json:"settings"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
