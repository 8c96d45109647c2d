// Package access implements the staff-property access relation. Visibility
// is an explicit many-to-many list on the staff record: roles and business
// ownership never imply access, and a staff record without an access entry
// for its business's main property will not see it.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/openfga"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

type Service struct {
	store  store.Store
	fga    *openfga.Client
	logger *slog.Logger
}

func NewService(st store.Store, fga *openfga.Client, logger *slog.Logger) *Service {
	return &Service{store: st, fga: fga, logger: logger.With("component", "access")}
}

// AccessibleProperties resolves the properties a staff member may see: those
// whose id is in the explicit access list and that belong to the staff's
// business, in storage iteration order. An unknown staff or business yields
// an empty list, not an error; callers treat "no access" and "not found"
// identically at this layer.
func (s *Service) AccessibleProperties(ctx context.Context, staffID string) ([]model.Property, error) {
	staff, err := s.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, store.ErrStaffNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}

	properties, err := s.store.ListPropertiesByBusiness(ctx, staff.BusinessID)
	if err != nil {
		if errors.Is(err, store.ErrBusinessNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list properties for business %s: %w", staff.BusinessID, err)
	}

	var accessible []model.Property
	for _, p := range properties {
		if staff.HasAccess(p.ID) {
			accessible = append(accessible, p)
		}
	}
	return accessible, nil
}

// MirrorAllows consults the OpenFGA tuple mirror as a secondary signal for
// a staff/property pair. The explicit access list stays the source of
// truth: a disabled or failing mirror never blocks, only a mirror that
// answers with an explicit deny does.
func (s *Service) MirrorAllows(ctx context.Context, staffID string, propertyID uuid.UUID) bool {
	if !s.fga.IsEnabled() {
		return true
	}
	allowed, err := s.fga.CheckAccess(ctx, staffID, propertyID.String())
	if err != nil {
		s.logger.Warn("OpenFGA access check failed, trusting access list",
			"staff_id", staffID, "property_id", propertyID, "error", err)
		return true
	}
	if !allowed {
		s.logger.Warn("OpenFGA mirror denies access the list grants",
			"staff_id", staffID, "property_id", propertyID)
	}
	return allowed
}

// Grant adds a property to the staff member's access list. Granting an
// already-present property is a no-op success. The property must exist and
// belong to the staff's business.
func (s *Service) Grant(ctx context.Context, staffID string, propertyID uuid.UUID) error {
	staff, err := s.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}

	property, err := s.store.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to get property %s: %w", propertyID, err)
	}
	if property.BusinessID != staff.BusinessID {
		return fmt.Errorf("property %s does not belong to business of staff %s: %w",
			propertyID, staffID, store.ErrPropertyNotFound)
	}

	if staff.HasAccess(propertyID) {
		return nil
	}

	staff.PropertyAccess = append(staff.PropertyAccess, propertyID)
	staff.UpdatedAt = time.Now()
	if err := s.store.UpdateStaff(ctx, staff); err != nil {
		return fmt.Errorf("failed to update access list for staff %s: %w", staffID, err)
	}

	// The access list is the source of truth; a failed tuple mirror is
	// logged and retried on the next grant, not surfaced.
	if err := s.fga.GrantAccess(ctx, staffID, propertyID.String()); err != nil {
		s.logger.Warn("failed to mirror grant to OpenFGA", "staff_id", staffID, "property_id", propertyID, "error", err)
	}

	s.logger.Info("property access granted", "staff_id", staffID, "property_id", propertyID)
	return nil
}

// Revoke removes a property from the staff member's access list. Revoking a
// property that is not in the list is a no-op success.
func (s *Service) Revoke(ctx context.Context, staffID string, propertyID uuid.UUID) error {
	staff, err := s.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}

	if !staff.HasAccess(propertyID) {
		return nil
	}

	// A fresh slice: compacting in place would mutate the backing array the
	// store handed out before the update is known to succeed.
	kept := make([]uuid.UUID, 0, len(staff.PropertyAccess)-1)
	for _, id := range staff.PropertyAccess {
		if id != propertyID {
			kept = append(kept, id)
		}
	}
	staff.PropertyAccess = kept
	staff.UpdatedAt = time.Now()
	if err := s.store.UpdateStaff(ctx, staff); err != nil {
		return fmt.Errorf("failed to update access list for staff %s: %w", staffID, err)
	}

	if err := s.fga.RevokeAccess(ctx, staffID, propertyID.String()); err != nil {
		s.logger.Warn("failed to mirror revoke to OpenFGA", "staff_id", staffID, "property_id", propertyID, "error", err)
	}

	s.logger.Info("property access revoked", "staff_id", staffID, "property_id", propertyID)
	return nil
}
