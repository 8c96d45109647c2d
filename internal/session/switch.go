package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

// SwitchBusiness moves the session to another business in the caller's
// umbrella account. The accessible set is re-fetched on every call so a
// revoked business can never be switched to from a stale option list. On
// success the property selection is cleared, the context is persisted, and
// a BusinessChanged event fires; on failure the prior context is untouched.
//
// Switches are serialized on the manager mutex so two rapid calls cannot
// interleave their validate/persist steps. Events are delivered after the
// mutex is released; subscribers may read the manager from their callback.
func (m *Manager) SwitchBusiness(ctx context.Context, businessID string) error {
	target, err := m.applyBusinessSwitch(ctx, businessID)
	if err != nil {
		return err
	}
	m.notify(Event{Kind: EventBusinessChanged, Business: &target})
	return nil
}

func (m *Manager) applyBusinessSwitch(ctx context.Context, businessID string) (model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.State != StateAuthenticated {
		return model.Business{}, ErrNotAuthenticated
	}

	target, ok, err := m.findAccessibleBusiness(ctx, businessID)
	if err != nil {
		return model.Business{}, err
	}
	if !ok {
		return model.Business{}, fmt.Errorf("%w: business %s is not in your account", ErrAccessDenied, businessID)
	}

	next := m.cur
	next.Business = &target
	next.Property = nil

	if err := m.persist(ctx, next); err != nil {
		return model.Business{}, fmt.Errorf("failed to persist business switch: %w", err)
	}

	m.cur = next
	m.logger.Info("switched business", "staff_id", m.cur.Staff.StaffID, "business", target.Code)
	return target, nil
}

// SwitchProperty moves the session to another property of the current
// business. The access list is re-fetched, never cached; super-admin may
// select any active property of the current business.
func (m *Manager) SwitchProperty(ctx context.Context, propertyID uuid.UUID) error {
	target, err := m.applyPropertySwitch(ctx, propertyID)
	if err != nil {
		return err
	}
	m.notify(Event{Kind: EventPropertyChanged, Property: &target})
	return nil
}

func (m *Manager) applyPropertySwitch(ctx context.Context, propertyID uuid.UUID) (model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.State != StateAuthenticated {
		return model.Property{}, ErrNotAuthenticated
	}
	if m.cur.Business == nil {
		return model.Property{}, fmt.Errorf("%w: no business selected", ErrAccessDenied)
	}

	target, ok, err := m.findAccessibleProperty(ctx, propertyID)
	if err != nil {
		return model.Property{}, err
	}
	if !ok {
		return model.Property{}, fmt.Errorf("%w: property %s is not in your access list", ErrAccessDenied, propertyID)
	}

	next := m.cur
	next.Property = &target

	if err := m.persist(ctx, next); err != nil {
		return model.Property{}, fmt.Errorf("failed to persist property switch: %w", err)
	}

	m.cur = next
	m.logger.Info("switched property", "staff_id", m.cur.Staff.StaffID, "property", target.Code)
	return target, nil
}

// AccessibleBusinesses lists the businesses the current identity may switch
// between, in storage iteration order: the owner's umbrella account for
// owners, the staff member's own business otherwise.
func (m *Manager) AccessibleBusinesses(ctx context.Context) ([]model.Business, error) {
	m.mu.Lock()
	cur := m.cur
	m.mu.Unlock()

	if cur.State != StateAuthenticated {
		return nil, ErrNotAuthenticated
	}

	if cur.Kind == model.KindOwner {
		businesses, err := m.store.ListBusinessesByOwner(ctx, cur.Staff.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to list owned businesses: %w", err)
		}
		return businesses, nil
	}

	business, err := m.store.GetBusinessByID(ctx, cur.Staff.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return []model.Business{business}, nil
}

func (m *Manager) findAccessibleBusiness(ctx context.Context, businessID string) (model.Business, bool, error) {
	var businesses []model.Business
	var err error

	if m.cur.Kind == model.KindOwner {
		businesses, err = m.store.ListBusinessesByOwner(ctx, m.cur.Staff.Email)
	} else {
		var b model.Business
		b, err = m.store.GetBusinessByID(ctx, m.cur.Staff.BusinessID)
		businesses = []model.Business{b}
	}
	if err != nil {
		return model.Business{}, false, fmt.Errorf("failed to resolve accessible businesses: %w", err)
	}

	for _, b := range businesses {
		if b.BusinessID == businessID && b.IsActive {
			return b, true, nil
		}
	}
	return model.Business{}, false, nil
}

func (m *Manager) findAccessibleProperty(ctx context.Context, propertyID uuid.UUID) (model.Property, bool, error) {
	if m.cur.Kind == model.KindSuperAdmin {
		properties, err := m.store.ListPropertiesByBusiness(ctx, m.cur.Business.ID)
		if err != nil {
			return model.Property{}, false, fmt.Errorf("failed to list properties: %w", err)
		}
		for _, p := range properties {
			if p.ID == propertyID && p.IsActive {
				return p, true, nil
			}
		}
		return model.Property{}, false, nil
	}

	accessible, err := m.access.AccessibleProperties(ctx, m.cur.Staff.StaffID)
	if err != nil {
		return model.Property{}, false, fmt.Errorf("failed to resolve accessible properties: %w", err)
	}
	for _, p := range accessible {
		if p.ID == propertyID && p.BusinessID == m.cur.Business.ID && p.IsActive {
			if !m.access.MirrorAllows(ctx, m.cur.Staff.StaffID, p.ID) {
				return model.Property{}, false, nil
			}
			return p, true, nil
		}
	}
	return model.Property{}, false, nil
}
