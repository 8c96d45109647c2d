package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

// FallbackStore writes through to both the primary store and the cache, and
// serves reads from the cache when the primary fails with anything other
// than a not-found. Cache write failures and fallback reads are logged, not
// surfaced; not-found from the primary is authoritative.
type FallbackStore struct {
	primary Store
	cache   Store
	logger  *slog.Logger
}

func NewFallbackStore(primary, cache Store, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, cache: cache, logger: logger.With("component", "fallback-store")}
}

func (s *FallbackStore) write(ctx context.Context, op string, primary, cache func() error) error {
	if err := primary(); err != nil {
		return err
	}
	if err := cache(); err != nil {
		s.logger.Warn("cache write failed", "op", op, "error", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrBusinessNotFound) ||
		errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrStaffNotFound)
}

func fallbackRead[T any](ctx context.Context, s *FallbackStore, op string,
	primary, cache func() (T, error)) (T, error) {
	v, err := primary()
	if err == nil || isNotFound(err) {
		return v, err
	}
	s.logger.Warn("primary read failed, falling back to cache", "op", op, "error", err)
	return cache()
}

func (s *FallbackStore) CreateBusiness(ctx context.Context, b model.Business) error {
	return s.write(ctx, "create_business",
		func() error { return s.primary.CreateBusiness(ctx, b) },
		func() error { return s.cache.CreateBusiness(ctx, b) })
}

func (s *FallbackStore) GetBusinessByID(ctx context.Context, id uuid.UUID) (model.Business, error) {
	return fallbackRead(ctx, s, "get_business_by_id",
		func() (model.Business, error) { return s.primary.GetBusinessByID(ctx, id) },
		func() (model.Business, error) { return s.cache.GetBusinessByID(ctx, id) })
}

func (s *FallbackStore) GetBusinessByCode(ctx context.Context, code string) (model.Business, error) {
	return fallbackRead(ctx, s, "get_business_by_code",
		func() (model.Business, error) { return s.primary.GetBusinessByCode(ctx, code) },
		func() (model.Business, error) { return s.cache.GetBusinessByCode(ctx, code) })
}

func (s *FallbackStore) GetBusinessByBusinessID(ctx context.Context, businessID string) (model.Business, error) {
	return fallbackRead(ctx, s, "get_business_by_business_id",
		func() (model.Business, error) { return s.primary.GetBusinessByBusinessID(ctx, businessID) },
		func() (model.Business, error) { return s.cache.GetBusinessByBusinessID(ctx, businessID) })
}

func (s *FallbackStore) ListBusinessesByOwner(ctx context.Context, ownerEmail string) ([]model.Business, error) {
	return fallbackRead(ctx, s, "list_businesses_by_owner",
		func() ([]model.Business, error) { return s.primary.ListBusinessesByOwner(ctx, ownerEmail) },
		func() ([]model.Business, error) { return s.cache.ListBusinessesByOwner(ctx, ownerEmail) })
}

func (s *FallbackStore) UpdateBusiness(ctx context.Context, b model.Business) error {
	return s.write(ctx, "update_business",
		func() error { return s.primary.UpdateBusiness(ctx, b) },
		func() error { return s.cache.UpdateBusiness(ctx, b) })
}

func (s *FallbackStore) CreateProperty(ctx context.Context, p model.Property) error {
	return s.write(ctx, "create_property",
		func() error { return s.primary.CreateProperty(ctx, p) },
		func() error { return s.cache.CreateProperty(ctx, p) })
}

func (s *FallbackStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (model.Property, error) {
	return fallbackRead(ctx, s, "get_property_by_id",
		func() (model.Property, error) { return s.primary.GetPropertyByID(ctx, id) },
		func() (model.Property, error) { return s.cache.GetPropertyByID(ctx, id) })
}

func (s *FallbackStore) GetPropertyByCode(ctx context.Context, code string) (model.Property, error) {
	return fallbackRead(ctx, s, "get_property_by_code",
		func() (model.Property, error) { return s.primary.GetPropertyByCode(ctx, code) },
		func() (model.Property, error) { return s.cache.GetPropertyByCode(ctx, code) })
}

func (s *FallbackStore) GetPropertyByConnectionCode(ctx context.Context, connectionCode string) (model.Property, error) {
	return fallbackRead(ctx, s, "get_property_by_connection_code",
		func() (model.Property, error) { return s.primary.GetPropertyByConnectionCode(ctx, connectionCode) },
		func() (model.Property, error) { return s.cache.GetPropertyByConnectionCode(ctx, connectionCode) })
}

func (s *FallbackStore) ListPropertiesByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Property, error) {
	return fallbackRead(ctx, s, "list_properties_by_business",
		func() ([]model.Property, error) { return s.primary.ListPropertiesByBusiness(ctx, businessID) },
		func() ([]model.Property, error) { return s.cache.ListPropertiesByBusiness(ctx, businessID) })
}

func (s *FallbackStore) UpdateProperty(ctx context.Context, p model.Property) error {
	return s.write(ctx, "update_property",
		func() error { return s.primary.UpdateProperty(ctx, p) },
		func() error { return s.cache.UpdateProperty(ctx, p) })
}

func (s *FallbackStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, "delete_property",
		func() error { return s.primary.DeleteProperty(ctx, id) },
		func() error { return s.cache.DeleteProperty(ctx, id) })
}

func (s *FallbackStore) CreateStaff(ctx context.Context, st model.Staff) error {
	return s.write(ctx, "create_staff",
		func() error { return s.primary.CreateStaff(ctx, st) },
		func() error { return s.cache.CreateStaff(ctx, st) })
}

func (s *FallbackStore) GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error) {
	return fallbackRead(ctx, s, "get_staff_by_staff_id",
		func() (model.Staff, error) { return s.primary.GetStaffByStaffID(ctx, staffID) },
		func() (model.Staff, error) { return s.cache.GetStaffByStaffID(ctx, staffID) })
}

func (s *FallbackStore) GetStaffByEmail(ctx context.Context, email string) (model.Staff, error) {
	return fallbackRead(ctx, s, "get_staff_by_email",
		func() (model.Staff, error) { return s.primary.GetStaffByEmail(ctx, email) },
		func() (model.Staff, error) { return s.cache.GetStaffByEmail(ctx, email) })
}

func (s *FallbackStore) ListStaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Staff, error) {
	return fallbackRead(ctx, s, "list_staff_by_business",
		func() ([]model.Staff, error) { return s.primary.ListStaffByBusiness(ctx, businessID) },
		func() ([]model.Staff, error) { return s.cache.ListStaffByBusiness(ctx, businessID) })
}

func (s *FallbackStore) UpdateStaff(ctx context.Context, st model.Staff) error {
	return s.write(ctx, "update_staff",
		func() error { return s.primary.UpdateStaff(ctx, st) },
		func() error { return s.cache.UpdateStaff(ctx, st) })
}

func (s *FallbackStore) HealthCheck(ctx context.Context) error {
	if err := s.primary.HealthCheck(ctx); err == nil {
		return nil
	}
	return s.cache.HealthCheck(ctx)
}
