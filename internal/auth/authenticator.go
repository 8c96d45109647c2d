// Package auth verifies credentials for the three identity kinds: staff
// signing in with their staff ID, business owners with their email, and
// super-admins with an email plus an explicit super_admin role claim.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotApproved        = errors.New("account pending approval")
	ErrInactive           = errors.New("account deactivated")
	ErrTooManyAttempts    = errors.New("too many attempts")
)

// Limiter bounds login attempts per identifier. The redis implementation
// lives in this package; tests pass a no-op.
type Limiter interface {
	CheckLogin(ctx context.Context, identifier string) error
}

type Authenticator struct {
	store   store.Store
	limiter Limiter
	logger  *slog.Logger
}

func NewAuthenticator(st store.Store, limiter Limiter, logger *slog.Logger) *Authenticator {
	return &Authenticator{store: st, limiter: limiter, logger: logger.With("component", "auth")}
}

// LoginStaff authenticates a staff member by staff ID and password.
func (a *Authenticator) LoginStaff(ctx context.Context, staffID, password string) (model.Staff, error) {
	if err := a.check(ctx, staffID); err != nil {
		return model.Staff{}, err
	}

	staff, err := a.store.GetStaffByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, store.ErrStaffNotFound) {
			return model.Staff{}, ErrInvalidCredentials
		}
		return model.Staff{}, fmt.Errorf("failed to get staff %s: %w", staffID, err)
	}

	return a.verify(ctx, staff, password)
}

// LoginOwner authenticates a business owner by email and password. The
// profile must classify as an owner kind; a plain staff profile signing in
// through the owner surface is rejected as invalid credentials, not as a
// role hint.
func (a *Authenticator) LoginOwner(ctx context.Context, email, password string) (model.Staff, error) {
	staff, err := a.loginByEmail(ctx, email, password)
	if err != nil {
		return model.Staff{}, err
	}
	if model.Classify(staff.Role) != model.KindOwner {
		return model.Staff{}, ErrInvalidCredentials
	}
	return staff, nil
}

// LoginSuperAdmin authenticates the elevated role. Beyond the credential
// check it requires the literal super_admin role claim on the profile.
func (a *Authenticator) LoginSuperAdmin(ctx context.Context, email, password string) (model.Staff, error) {
	staff, err := a.loginByEmail(ctx, email, password)
	if err != nil {
		return model.Staff{}, err
	}
	if staff.Role != model.RoleSuperAdmin {
		return model.Staff{}, ErrInvalidCredentials
	}
	return staff, nil
}

func (a *Authenticator) loginByEmail(ctx context.Context, email, password string) (model.Staff, error) {
	if err := a.check(ctx, email); err != nil {
		return model.Staff{}, err
	}

	staff, err := a.store.GetStaffByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrStaffNotFound) {
			return model.Staff{}, ErrInvalidCredentials
		}
		return model.Staff{}, fmt.Errorf("failed to get staff by email: %w", err)
	}

	return a.verify(ctx, staff, password)
}

func (a *Authenticator) verify(ctx context.Context, staff model.Staff, password string) (model.Staff, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		a.logger.Info("failed login attempt", "staff_id", staff.StaffID)
		return model.Staff{}, ErrInvalidCredentials
	}
	if !staff.IsActive {
		return model.Staff{}, ErrInactive
	}
	if !staff.IsApproved {
		return model.Staff{}, ErrNotApproved
	}

	staff.LastLogin = time.Now()
	if err := a.store.UpdateStaff(ctx, staff); err != nil {
		// A failed last-login stamp must not block the sign-in.
		a.logger.Warn("failed to record last login", "staff_id", staff.StaffID, "error", err)
	}

	a.logger.Info("login successful", "staff_id", staff.StaffID, "role", staff.Role)
	return staff, nil
}

func (a *Authenticator) check(ctx context.Context, identifier string) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.CheckLogin(ctx, identifier)
}
