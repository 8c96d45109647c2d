// Package registration orchestrates onboarding: creating a business with
// its main property, adding properties, and enrolling staff through
// connection codes.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/openfga"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
	"github.com/rBrown1405/zentry-pos-sub001/internal/validator"
)

var ErrEmailAlreadyInUse = errors.New("email already in use")

type Manager struct {
	store     store.Store
	registry  *registry.Registry
	validator *validator.Validator
	fga       *openfga.Client
	logger    *slog.Logger
}

func NewManager(st store.Store, reg *registry.Registry, val *validator.Validator, fga *openfga.Client, logger *slog.Logger) *Manager {
	return &Manager{store: st, registry: reg, validator: val, fga: fga, logger: logger.With("component", "registration")}
}

type RegisterBusinessParam struct {
	CompanyName  string  `validate:"required,min=2,max=100"`
	BusinessType string  `validate:"required,business_type"`
	OwnerName    string  `validate:"required,min=2,max=100"`
	Email        string  `validate:"required,email"`
	Phone        string  `validate:"omitempty,min=7,max=20"`
	Password     string  `validate:"required,min=8"`
	Address      string  `validate:"required,min=3,max=200"`
	TaxRate      float64 `validate:"gte=0,lte=1"`
	Currency     string  `validate:"omitempty,len=3"`
}

type RegisterBusinessResult struct {
	Business     model.Business
	MainProperty model.Property
	Owner        model.Staff
}

// RegisterBusiness creates the umbrella account: the business record, its
// single main property, and an approved owner staff record whose access
// list is explicitly seeded with the main property. Access is never implied
// by ownership, so without that seed even the owner would see no
// properties.
func (m *Manager) RegisterBusiness(ctx context.Context, param RegisterBusinessParam) (RegisterBusinessResult, error) {
	var result RegisterBusinessResult

	if err := m.validator.Validate(param); err != nil {
		return result, fmt.Errorf("invalid registration: %w", err)
	}

	if _, err := m.store.GetStaffByEmail(ctx, param.Email); err == nil {
		return result, ErrEmailAlreadyInUse
	} else if !errors.Is(err, store.ErrStaffNotFound) {
		return result, fmt.Errorf("failed to check if email exists: %w", err)
	}

	businessCode, err := m.registry.BusinessCode(ctx, param.CompanyName)
	if err != nil {
		return result, err
	}
	businessID, err := m.registry.BusinessID(ctx, businessCode)
	if err != nil {
		return result, err
	}

	currency := param.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	business := model.Business{
		ID:          uuid.New(),
		Code:        businessCode,
		BusinessID:  businessID,
		CompanyName: param.CompanyName,
		Type:        model.BusinessType(param.BusinessType),
		OwnerName:   param.OwnerName,
		OwnerEmail:  param.Email,
		Phone:       param.Phone,
		Settings: model.BusinessSettings{
			TaxRate:  param.TaxRate,
			Currency: currency,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateBusiness(ctx, business); err != nil {
		return result, fmt.Errorf("failed to create business: %w", err)
	}

	property, err := m.createProperty(ctx, business, createPropertyParam{
		name:         param.CompanyName,
		propertyType: business.Type.String(),
		address:      param.Address,
		isMain:       true,
	})
	if err != nil {
		return result, err
	}

	owner, err := m.createStaff(ctx, business, createStaffParam{
		fullName:       param.OwnerName,
		email:          param.Email,
		phone:          param.Phone,
		password:       param.Password,
		role:           model.RoleOwner,
		approved:       true,
		propertyAccess: []uuid.UUID{property.ID},
	})
	if err != nil {
		return result, err
	}

	m.logger.Info("business registered",
		"business_code", business.Code,
		"business_id", business.BusinessID,
		"main_property", property.Code,
		"owner_staff_id", owner.StaffID)

	result.Business = business
	result.MainProperty = property
	result.Owner = owner
	return result, nil
}

type AddPropertyParam struct {
	BusinessID uuid.UUID `validate:"required"`
	Name       string    `validate:"required,min=2,max=100"`
	Type       string    `validate:"omitempty,business_type"`
	Address    string    `validate:"required,min=3,max=200"`
}

// AddProperty creates an additional, non-main property for an existing
// business. Each property carries its own type, so a restaurant group can
// add a cafe whose code carries the cafe type code; an omitted type falls
// back to the business type. No staff member gains access implicitly; the
// owner grants access afterwards.
func (m *Manager) AddProperty(ctx context.Context, param AddPropertyParam) (model.Property, error) {
	if err := m.validator.Validate(param); err != nil {
		return model.Property{}, fmt.Errorf("invalid property: %w", err)
	}

	business, err := m.store.GetBusinessByID(ctx, param.BusinessID)
	if err != nil {
		return model.Property{}, fmt.Errorf("failed to get business %s: %w", param.BusinessID, err)
	}

	propertyType := param.Type
	if propertyType == "" {
		propertyType = business.Type.String()
	}

	property, err := m.createProperty(ctx, business, createPropertyParam{
		name:         param.Name,
		propertyType: propertyType,
		address:      param.Address,
		isMain:       false,
	})
	if err != nil {
		return model.Property{}, err
	}

	m.logger.Info("property added", "business_code", business.Code, "property_code", property.Code)
	return property, nil
}

// SetMainProperty promotes a property to main and demotes the previous one,
// keeping the one-main-property-per-business invariant.
func (m *Manager) SetMainProperty(ctx context.Context, businessID, propertyID uuid.UUID) error {
	properties, err := m.store.ListPropertiesByBusiness(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to list properties: %w", err)
	}

	var target *model.Property
	for i := range properties {
		if properties[i].ID == propertyID {
			target = &properties[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("property %s: %w", propertyID, store.ErrPropertyNotFound)
	}
	if target.IsMain {
		return nil
	}

	for _, p := range properties {
		if p.IsMain {
			p.IsMain = false
			p.UpdatedAt = time.Now()
			if err := m.store.UpdateProperty(ctx, p); err != nil {
				return fmt.Errorf("failed to demote property %s: %w", p.Code, err)
			}
		}
	}

	target.IsMain = true
	target.UpdatedAt = time.Now()
	if err := m.store.UpdateProperty(ctx, *target); err != nil {
		return fmt.Errorf("failed to promote property %s: %w", target.Code, err)
	}
	return nil
}

type RegisterStaffParam struct {
	FullName       string `validate:"required,min=2,max=100"`
	Email          string `validate:"required,email"`
	Phone          string `validate:"omitempty,min=7,max=20"`
	Password       string `validate:"required,min=8"`
	ConnectionCode string `validate:"required,connection_code"`
	Position       string `validate:"required,role"`
}

// RegisterStaff enrolls a staff member through a property connection code.
// The new record gets explicit access to that one property only, and is
// unapproved unless the business auto-approves staff.
func (m *Manager) RegisterStaff(ctx context.Context, param RegisterStaffParam) (model.Staff, error) {
	if err := m.validator.Validate(param); err != nil {
		return model.Staff{}, fmt.Errorf("invalid staff registration: %w", err)
	}

	property, err := m.store.GetPropertyByConnectionCode(ctx, param.ConnectionCode)
	if err != nil {
		if errors.Is(err, store.ErrPropertyNotFound) {
			return model.Staff{}, fmt.Errorf("invalid connection code: %w", err)
		}
		return model.Staff{}, fmt.Errorf("failed to resolve connection code: %w", err)
	}

	business, err := m.store.GetBusinessByID(ctx, property.BusinessID)
	if err != nil {
		return model.Staff{}, fmt.Errorf("failed to get business for property %s: %w", property.Code, err)
	}

	if _, err := m.store.GetStaffByEmail(ctx, param.Email); err == nil {
		return model.Staff{}, ErrEmailAlreadyInUse
	} else if !errors.Is(err, store.ErrStaffNotFound) {
		return model.Staff{}, fmt.Errorf("failed to check if email exists: %w", err)
	}

	role, err := model.ParseRole(param.Position)
	if err != nil {
		return model.Staff{}, err
	}

	staff, err := m.createStaff(ctx, business, createStaffParam{
		fullName:       param.FullName,
		email:          param.Email,
		phone:          param.Phone,
		password:       param.Password,
		role:           role,
		approved:       business.Settings.AutoApproveStaff,
		propertyAccess: []uuid.UUID{property.ID},
	})
	if err != nil {
		return model.Staff{}, err
	}

	m.logger.Info("staff registered",
		"staff_id", staff.StaffID,
		"business_code", business.Code,
		"property_code", property.Code,
		"approved", staff.IsApproved)
	return staff, nil
}

// ApproveStaff flips the approval gate on a pending staff record.
func (m *Manager) ApproveStaff(ctx context.Context, staffID string) error {
	staff, err := m.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}
	if staff.IsApproved {
		return nil
	}
	staff.IsApproved = true
	staff.UpdatedAt = time.Now()
	if err := m.store.UpdateStaff(ctx, staff); err != nil {
		return fmt.Errorf("failed to approve staff %s: %w", staffID, err)
	}
	m.logger.Info("staff approved", "staff_id", staffID)
	return nil
}

// DeactivateStaff soft-deletes a staff record.
func (m *Manager) DeactivateStaff(ctx context.Context, staffID string) error {
	staff, err := m.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}
	staff.IsActive = false
	staff.UpdatedAt = time.Now()
	if err := m.store.UpdateStaff(ctx, staff); err != nil {
		return fmt.Errorf("failed to deactivate staff %s: %w", staffID, err)
	}
	m.logger.Info("staff deactivated", "staff_id", staffID)
	return nil
}

// UpdateBusinessSettings replaces the owner-tunable settings of a business.
func (m *Manager) UpdateBusinessSettings(ctx context.Context, businessID uuid.UUID, settings model.BusinessSettings) error {
	business, err := m.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to get business %s: %w", businessID, err)
	}
	business.Settings = settings
	business.UpdatedAt = time.Now()
	if err := m.store.UpdateBusiness(ctx, business); err != nil {
		return fmt.Errorf("failed to update settings for business %s: %w", business.Code, err)
	}
	return nil
}

type createPropertyParam struct {
	name         string
	propertyType string
	address      string
	isMain       bool
}

func (m *Manager) createProperty(ctx context.Context, business model.Business, param createPropertyParam) (model.Property, error) {
	propertyCode, err := m.registry.PropertyCode(ctx, param.name, param.propertyType)
	if err != nil {
		return model.Property{}, err
	}
	connectionCode, err := m.registry.ConnectionCode(ctx)
	if err != nil {
		return model.Property{}, err
	}

	now := time.Now()
	property := model.Property{
		ID:             uuid.New(),
		Code:           propertyCode,
		Name:           param.name,
		ConnectionCode: connectionCode,
		BusinessID:     business.ID,
		Address:        param.address,
		IsMain:         param.isMain,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.CreateProperty(ctx, property); err != nil {
		return model.Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return property, nil
}

type createStaffParam struct {
	fullName       string
	email          string
	phone          string
	password       string
	role           model.Role
	approved       bool
	propertyAccess []uuid.UUID
}

func (m *Manager) createStaff(ctx context.Context, business model.Business, param createStaffParam) (model.Staff, error) {
	staffID, err := m.registry.StaffID(ctx, param.fullName, param.role.String())
	if err != nil {
		return model.Staff{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(param.password), bcrypt.DefaultCost)
	if err != nil {
		return model.Staff{}, fmt.Errorf("failed to hash password: %w", err)
	}

	first, last := model.SplitFullName(param.fullName)
	now := time.Now()
	staff := model.Staff{
		ID:             uuid.New(),
		StaffID:        staffID,
		FirstName:      first,
		LastName:       last,
		Email:          param.email,
		Phone:          param.phone,
		Role:           param.role,
		BusinessID:     business.ID,
		BusinessCode:   business.Code,
		PasswordHash:   string(passwordHash),
		PropertyAccess: param.propertyAccess,
		IsApproved:     param.approved,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.CreateStaff(ctx, staff); err != nil {
		return model.Staff{}, fmt.Errorf("failed to create staff: %w", err)
	}

	for _, propertyID := range param.propertyAccess {
		if err := m.fga.GrantAccess(ctx, staffID, propertyID.String()); err != nil {
			m.logger.Warn("failed to mirror seeded access to OpenFGA",
				"staff_id", staffID, "property_id", propertyID, "error", err)
		}
	}

	return staff, nil
}
