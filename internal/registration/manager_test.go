package registration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rBrown1405/zentry-pos-sub001/internal/access"
	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
	"github.com/rBrown1405/zentry-pos-sub001/internal/validator"
)

func newManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	reg := registry.New(store.NewMemoryKV(), logger)
	return NewManager(st, reg, validator.New(), nil, logger), st
}

func validBusinessParam() RegisterBusinessParam {
	return RegisterBusinessParam{
		CompanyName:  "Demo Restaurant Group",
		BusinessType: "restaurant",
		OwnerName:    "Dana Owner",
		Email:        "dana@example.com",
		Phone:        "+15550100",
		Password:     "correct horse",
		Address:      "1 Demo Street",
		TaxRate:      0.08,
	}
}

func TestRegisterBusiness(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	business := result.Business
	assert.Regexp(t, `^[A-Z]{3}[0-9]{4}$`, business.Code)
	assert.Equal(t, "DEM", business.Code[:3])
	assert.Regexp(t, `^BIZ[A-Z]{3}[0-9]{4}[A-Z0-9]{4}[0-9]{3}$`, business.BusinessID)
	assert.True(t, business.IsActive)
	assert.Equal(t, "USD", business.Settings.Currency)

	// One main property, created with the business.
	property := result.MainProperty
	assert.Regexp(t, `^[A-Z]{3}RES[0-9]{3}$`, property.Code)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, property.ConnectionCode)
	assert.True(t, property.IsMain)
	assert.Equal(t, business.ID, property.BusinessID)

	// The owner is approved immediately and explicitly holds the main
	// property; nothing is implied by the owner role.
	owner := result.Owner
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.True(t, owner.IsApproved)
	assert.Equal(t, []string{property.ID.String()}, accessIDs(owner))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte("correct horse")))

	// Everything round-trips through the store.
	stored, err := st.GetBusinessByCode(ctx, business.Code)
	require.NoError(t, err)
	assert.Equal(t, business.ID, stored.ID)
}

func accessIDs(s model.Staff) []string {
	out := make([]string, len(s.PropertyAccess))
	for i, id := range s.PropertyAccess {
		out[i] = id.String()
	}
	return out
}

func TestRegisterBusinessRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	param := validBusinessParam()
	param.CompanyName = "Other Venture"
	_, err = m.RegisterBusiness(ctx, param)
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestRegisterBusinessValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	tests := []struct {
		name   string
		mutate func(*RegisterBusinessParam)
	}{
		{"bad email", func(p *RegisterBusinessParam) { p.Email = "not-an-email" }},
		{"bad type", func(p *RegisterBusinessParam) { p.BusinessType = "spaceport" }},
		{"short password", func(p *RegisterBusinessParam) { p.Password = "short" }},
		{"missing name", func(p *RegisterBusinessParam) { p.CompanyName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param := validBusinessParam()
			tt.mutate(&param)
			_, err := m.RegisterBusiness(ctx, param)
			assert.Error(t, err)
		})
	}
}

func TestAddProperty(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	property, err := m.AddProperty(ctx, AddPropertyParam{
		BusinessID: result.Business.ID,
		Name:       "Downtown Cafe",
		Type:       "cafe",
		Address:    "2 Demo Street",
	})
	require.NoError(t, err)
	assert.False(t, property.IsMain)
	// The code carries the property's own type, not the group's.
	assert.Regexp(t, `^DOWCAF[0-9]{3}$`, property.Code)

	// No one gains access to the new property implicitly.
	owner, err := m.store.GetStaffByStaffID(ctx, result.Owner.StaffID)
	require.NoError(t, err)
	assert.False(t, owner.HasAccess(property.ID))
}

func TestAddPropertyDefaultsToBusinessType(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	property, err := m.AddProperty(ctx, AddPropertyParam{
		BusinessID: result.Business.ID,
		Name:       "Harborside",
		Address:    "3 Demo Street",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^HARRES[0-9]{3}$`, property.Code)
}

func TestAddPropertyRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	_, err = m.AddProperty(ctx, AddPropertyParam{
		BusinessID: result.Business.ID,
		Name:       "Downtown Cafe",
		Type:       "spaceport",
		Address:    "2 Demo Street",
	})
	assert.Error(t, err)
}

func TestSetMainPropertyDemotesPrevious(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	second, err := m.AddProperty(ctx, AddPropertyParam{
		BusinessID: result.Business.ID,
		Name:       "Downtown Cafe",
		Address:    "2 Demo Street",
	})
	require.NoError(t, err)

	require.NoError(t, m.SetMainProperty(ctx, result.Business.ID, second.ID))

	properties, err := st.ListPropertiesByBusiness(ctx, result.Business.ID)
	require.NoError(t, err)
	mains := 0
	for _, p := range properties {
		if p.IsMain {
			mains++
			assert.Equal(t, second.ID, p.ID)
		}
	}
	assert.Equal(t, 1, mains)
}

func TestRegisterStaffViaConnectionCode(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	staff, err := m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Alice Manager",
		Email:          "alice@example.com",
		Password:       "another pass",
		ConnectionCode: result.MainProperty.ConnectionCode,
		Position:       "manager",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^AMMG[0-9]{4}$`, staff.StaffID)
	assert.Equal(t, model.RoleManager, staff.Role)
	assert.Equal(t, result.Business.ID, staff.BusinessID)
	assert.Equal(t, result.Business.Code, staff.BusinessCode)
	assert.False(t, staff.IsApproved)
	assert.Equal(t, []string{result.MainProperty.ID.String()}, accessIDs(staff))
}

func TestRegisterStaffAutoApprove(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	settings := result.Business.Settings
	settings.AutoApproveStaff = true
	require.NoError(t, m.UpdateBusinessSettings(ctx, result.Business.ID, settings))

	staff, err := m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Bob Server",
		Email:          "bob@example.com",
		Password:       "another pass",
		ConnectionCode: result.MainProperty.ConnectionCode,
		Position:       "server",
	})
	require.NoError(t, err)
	assert.True(t, staff.IsApproved)

	stored, err := st.GetBusinessByID(ctx, result.Business.ID)
	require.NoError(t, err)
	assert.True(t, stored.Settings.AutoApproveStaff)
}

func TestRegisterStaffInvalidConnectionCode(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	_, err = m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Alice Manager",
		Email:          "alice@example.com",
		Password:       "another pass",
		ConnectionCode: "ZZZZZZ",
		Position:       "manager",
	})
	assert.ErrorIs(t, err, store.ErrPropertyNotFound)
}

func TestRegisterStaffLegacyRoleAlias(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	staff, err := m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Carol Jones",
		Email:          "carol@example.com",
		Password:       "another pass",
		ConnectionCode: result.MainProperty.ConnectionCode,
		Position:       "user",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, staff.Role)
}

func TestApproveAndDeactivateStaff(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	staff, err := m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Alice Manager",
		Email:          "alice@example.com",
		Password:       "another pass",
		ConnectionCode: result.MainProperty.ConnectionCode,
		Position:       "manager",
	})
	require.NoError(t, err)

	require.NoError(t, m.ApproveStaff(ctx, staff.StaffID))
	// Approving twice is a no-op.
	require.NoError(t, m.ApproveStaff(ctx, staff.StaffID))

	stored, err := st.GetStaffByStaffID(ctx, staff.StaffID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)

	require.NoError(t, m.DeactivateStaff(ctx, staff.StaffID))
	stored, err = st.GetStaffByStaffID(ctx, staff.StaffID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

// End-to-end: register a business, add a property, enroll a manager, grant
// access and verify the visibility rules hold.
func TestOnboardingScenario(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	reg := registry.New(store.NewMemoryKV(), logger)
	m := NewManager(st, reg, validator.New(), nil, logger)
	accessSvc := access.NewService(st, nil, logger)

	result, err := m.RegisterBusiness(ctx, validBusinessParam())
	require.NoError(t, err)

	cafe, err := m.AddProperty(ctx, AddPropertyParam{
		BusinessID: result.Business.ID,
		Name:       "Downtown Cafe",
		Type:       "cafe",
		Address:    "2 Demo Street",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^DOWCAF[0-9]{3}$`, cafe.Code)

	manager, err := m.RegisterStaff(ctx, RegisterStaffParam{
		FullName:       "Alice Manager",
		Email:          "alice@example.com",
		Password:       "another pass",
		ConnectionCode: result.MainProperty.ConnectionCode,
		Position:       "manager",
	})
	require.NoError(t, err)

	// The manager joined through the main property's code and sees only it.
	visible, err := accessSvc.AccessibleProperties(ctx, manager.StaffID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, result.MainProperty.ID, visible[0].ID)

	// An explicit grant extends visibility to the cafe.
	require.NoError(t, accessSvc.Grant(ctx, manager.StaffID, cafe.ID))
	visible, err = accessSvc.AccessibleProperties(ctx, manager.StaffID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}
