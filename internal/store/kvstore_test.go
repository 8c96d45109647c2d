package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

func TestKVStoreBusinessKeyLayout(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewKVStore(kv)

	business := testBusiness("DEM1234")
	require.NoError(t, s.CreateBusiness(ctx, business))

	// The entity lives under the legacy business_<code> key, with index
	// keys resolving the other identifiers.
	exists, err := kv.Exists(ctx, "business_DEM1234")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = kv.Exists(ctx, "business_id_"+business.BusinessID)
	require.NoError(t, err)
	assert.True(t, exists)

	byCode, err := s.GetBusinessByCode(ctx, "DEM1234")
	require.NoError(t, err)
	assert.Equal(t, business.ID, byCode.ID)

	byBusinessID, err := s.GetBusinessByBusinessID(ctx, business.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, business.ID, byBusinessID.ID)

	byUUID, err := s.GetBusinessByID(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, business.Code, byUUID.Code)
}

func TestKVStoreStaffAndPropertyKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewKVStore(kv)

	business := testBusiness("DEM1234")
	require.NoError(t, s.CreateBusiness(ctx, business))

	property := model.Property{
		ID:             uuid.New(),
		Code:           "DEMRES123",
		Name:           "Demo Main",
		ConnectionCode: "AB12CD",
		BusinessID:     business.ID,
		IsMain:         true,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.CreateProperty(ctx, property))

	staff := model.Staff{
		ID:           uuid.New(),
		StaffID:      "AMMG0042",
		FirstName:    "Alice",
		Email:        "alice@example.com",
		Role:         model.RoleManager,
		BusinessID:   business.ID,
		BusinessCode: business.Code,
		IsActive:     true,
	}
	require.NoError(t, s.CreateStaff(ctx, staff))

	for _, key := range []string{
		"property_DEMRES123",
		"conncode_AB12CD",
		"staff_AMMG0042",
		"staff_email_alice@example.com",
	} {
		exists, err := kv.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists, key)
	}

	byConn, err := s.GetPropertyByConnectionCode(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, property.ID, byConn.ID)

	byEmail, err := s.GetStaffByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, staff.StaffID, byEmail.StaffID)
}

func TestKVStoreListSkipsIndexKeys(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(NewMemoryKV())

	business := testBusiness("DEM1234")
	require.NoError(t, s.CreateBusiness(ctx, business))

	// business_id_* and business_uuid_* share the business_ prefix; the
	// list must not decode them as entities.
	businesses, err := s.ListBusinessesByOwner(ctx, business.OwnerEmail)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, business.ID, businesses[0].ID)
}

func TestKVStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(NewMemoryKV())

	_, err := s.GetBusinessByCode(ctx, "NOP1234")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	_, err = s.GetPropertyByConnectionCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	_, err = s.GetStaffByStaffID(ctx, "ZZZZ9999")
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestKVStoreDeleteProperty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewKVStore(kv)

	business := testBusiness("DEM1234")
	require.NoError(t, s.CreateBusiness(ctx, business))
	property := model.Property{
		ID:             uuid.New(),
		Code:           "DEMRES123",
		ConnectionCode: "AB12CD",
		BusinessID:     business.ID,
		IsActive:       true,
	}
	require.NoError(t, s.CreateProperty(ctx, property))

	require.NoError(t, s.DeleteProperty(ctx, property.ID))

	_, err := s.GetPropertyByCode(ctx, "DEMRES123")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	_, err = s.GetPropertyByConnectionCode(ctx, "AB12CD")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}
