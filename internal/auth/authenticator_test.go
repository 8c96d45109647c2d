package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

const password = "correct horse"

func seedStaff(t *testing.T, st *store.MemoryStore, staffID, email string, role model.Role, approved, active bool) model.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	staff := model.Staff{
		ID:           uuid.New(),
		StaffID:      staffID,
		FirstName:    "Test",
		Email:        email,
		Role:         role,
		BusinessID:   uuid.New(),
		BusinessCode: "DEM1234",
		PasswordHash: string(hash),
		IsApproved:   approved,
		IsActive:     active,
	}
	require.NoError(t, st.CreateStaff(context.Background(), staff))
	return staff
}

func newAuthenticator(st *store.MemoryStore) *Authenticator {
	return NewAuthenticator(st, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoginStaff(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedStaff(t, st, "AMMG0042", "alice@example.com", model.RoleManager, true, true)
	a := newAuthenticator(st)

	staff, err := a.LoginStaff(ctx, "AMMG0042", password)
	require.NoError(t, err)
	assert.Equal(t, "AMMG0042", staff.StaffID)
	assert.False(t, staff.LastLogin.IsZero())

	_, err = a.LoginStaff(ctx, "AMMG0042", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.LoginStaff(ctx, "ZZZZ9999", password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStaffGates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedStaff(t, st, "PEND0001", "pending@example.com", model.RoleServer, false, true)
	seedStaff(t, st, "GONE0001", "gone@example.com", model.RoleServer, true, false)
	a := newAuthenticator(st)

	_, err := a.LoginStaff(ctx, "PEND0001", password)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = a.LoginStaff(ctx, "GONE0001", password)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestLoginOwner(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedStaff(t, st, "DOOW0007", "dana@example.com", model.RoleOwner, true, true)
	seedStaff(t, st, "AMMG0042", "alice@example.com", model.RoleManager, true, true)
	a := newAuthenticator(st)

	owner, err := a.LoginOwner(ctx, "dana@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, owner.Role)

	// A staff profile through the owner surface reads as bad credentials,
	// not as a role hint.
	_, err = a.LoginOwner(ctx, "alice@example.com", password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSuperAdmin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedStaff(t, st, "SAAD0001", "sam@example.com", model.RoleSuperAdmin, true, true)
	seedStaff(t, st, "DOOW0007", "dana@example.com", model.RoleOwner, true, true)
	a := newAuthenticator(st)

	admin, err := a.LoginSuperAdmin(ctx, "sam@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, admin.Role)

	// Owner kind is not enough; the literal super_admin role is required.
	_, err = a.LoginSuperAdmin(ctx, "dana@example.com", password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type blockedLimiter struct{}

func (blockedLimiter) CheckLogin(ctx context.Context, identifier string) error {
	return ErrTooManyAttempts
}

func TestLoginRateLimited(t *testing.T) {
	st := store.NewMemoryStore()
	seedStaff(t, st, "AMMG0042", "alice@example.com", model.RoleManager, true, true)
	a := NewAuthenticator(st, blockedLimiter{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := a.LoginStaff(context.Background(), "AMMG0042", password)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}
