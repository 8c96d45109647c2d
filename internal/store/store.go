// Package store is the persistence boundary for the POS admin core. A single
// Store interface has interchangeable implementations: postgres (primary),
// a redis key-value rendition of the legacy cache layout, an in-memory store
// for tests, and a fallback combinator that serves reads from the cache when
// the primary is unreachable. Which one runs is a single configuration
// decision, not a per-call-site choice.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrStaffNotFound    = errors.New("staff not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrKeyNotFound      = errors.New("key not found")
)

type Store interface {
	CreateBusiness(ctx context.Context, business model.Business) error
	GetBusinessByID(ctx context.Context, id uuid.UUID) (model.Business, error)
	GetBusinessByCode(ctx context.Context, code string) (model.Business, error)
	GetBusinessByBusinessID(ctx context.Context, businessID string) (model.Business, error)
	ListBusinessesByOwner(ctx context.Context, ownerEmail string) ([]model.Business, error)
	UpdateBusiness(ctx context.Context, business model.Business) error

	CreateProperty(ctx context.Context, property model.Property) error
	GetPropertyByID(ctx context.Context, id uuid.UUID) (model.Property, error)
	GetPropertyByCode(ctx context.Context, code string) (model.Property, error)
	GetPropertyByConnectionCode(ctx context.Context, connectionCode string) (model.Property, error)
	ListPropertiesByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Property, error)
	UpdateProperty(ctx context.Context, property model.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error

	CreateStaff(ctx context.Context, staff model.Staff) error
	GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (model.Staff, error)
	ListStaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Staff, error)
	UpdateStaff(ctx context.Context, staff model.Staff) error

	HealthCheck(ctx context.Context) error
}

// KeyValue is the generic string store consumed by the identifier registry
// and the redis entity cache. Implementations must treat a missing key as
// ErrKeyNotFound from Get.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Legacy key naming, preserved for compatibility with the cache layout the
// pre-existing clients read.
func StaffKey(staffID string) string          { return "staff_" + staffID }
func BusinessKey(code string) string          { return "business_" + code }
func BusinessIDKey(businessID string) string  { return "business_id_" + businessID }
func PropertyKey(code string) string          { return "property_" + code }
func ConnectionCodeKey(code string) string    { return "conncode_" + code }
func StaffEmailKey(email string) string       { return "staff_email_" + email }
func BusinessUUIDKey(id uuid.UUID) string     { return "business_uuid_" + id.String() }
func PropertyUUIDKey(id uuid.UUID) string     { return "property_uuid_" + id.String() }
