package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

var errPrimaryDown = errors.New("connection refused")

// brokenStore fails every operation with a transport error.
type brokenStore struct {
	Store
}

func (brokenStore) GetBusinessByCode(ctx context.Context, code string) (model.Business, error) {
	return model.Business{}, errPrimaryDown
}

func (brokenStore) GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error) {
	return model.Staff{}, errPrimaryDown
}

func (brokenStore) CreateBusiness(ctx context.Context, b model.Business) error {
	return errPrimaryDown
}

func (brokenStore) HealthCheck(ctx context.Context) error {
	return errPrimaryDown
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBusiness(code string) model.Business {
	now := time.Now()
	return model.Business{
		ID:          uuid.New(),
		Code:        code,
		BusinessID:  "BIZ" + code + "AB12345",
		CompanyName: "Demo Restaurant Group",
		Type:        model.BusinessTypeRestaurant,
		OwnerName:   "Dana Owner",
		OwnerEmail:  "dana@example.com",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestFallbackReadsCacheWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryStore()
	business := testBusiness("DEM1234")
	require.NoError(t, cache.CreateBusiness(ctx, business))

	fs := NewFallbackStore(brokenStore{}, cache, testLogger())

	got, err := fs.GetBusinessByCode(ctx, "DEM1234")
	require.NoError(t, err)
	assert.Equal(t, business.ID, got.ID)
}

func TestFallbackNotFoundIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	cache := NewMemoryStore()

	// The cache holds a stale record the primary no longer knows about.
	require.NoError(t, cache.CreateBusiness(ctx, testBusiness("OLD1234")))

	fs := NewFallbackStore(primary, cache, testLogger())

	_, err := fs.GetBusinessByCode(ctx, "OLD1234")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestFallbackWriteFailsWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryStore()
	fs := NewFallbackStore(brokenStore{}, cache, testLogger())

	err := fs.CreateBusiness(ctx, testBusiness("DEM1234"))
	require.Error(t, err)

	// The failed write must not have reached the cache either.
	_, err = cache.GetBusinessByCode(ctx, "DEM1234")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestFallbackWriteSurvivesCacheFailure(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	fs := NewFallbackStore(primary, brokenStore{}, testLogger())

	business := testBusiness("DEM1234")
	require.NoError(t, fs.CreateBusiness(ctx, business))

	got, err := primary.GetBusinessByCode(ctx, "DEM1234")
	require.NoError(t, err)
	assert.Equal(t, business.ID, got.ID)
}

func TestFallbackHealthCheckUsesCache(t *testing.T) {
	fs := NewFallbackStore(brokenStore{}, NewMemoryStore(), testLogger())
	assert.NoError(t, fs.HealthCheck(context.Background()))
}
