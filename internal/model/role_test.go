package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{"canonical role", "manager", RoleManager, false},
		{"owner", "owner", RoleOwner, false},
		{"legacy user alias", "user", RoleEmployee, false},
		{"legacy staff alias", "staff", RoleEmployee, false},
		{"super admin", "super_admin", RoleSuperAdmin, false},
		{"unknown role", "janitor", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindSuperAdmin, Classify(RoleSuperAdmin))
	assert.Equal(t, KindOwner, Classify(RoleOwner))
	assert.Equal(t, KindOwner, Classify(RoleAdmin))
	assert.Equal(t, KindStaff, Classify(RoleManager))
	assert.Equal(t, KindStaff, Classify(RoleServer))

	// Classify is total: garbage input still resolves, to the least
	// privileged kind.
	assert.Equal(t, KindStaff, Classify(Role("nonsense")))
	assert.Equal(t, KindStaff, Classify(Role("")))
}

func TestLandingRoute(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"super_admin", RouteAdminDashboard},
		{"owner", RouteBusinessDashboard},
		{"admin", RouteBusinessDashboard},
		{"manager", RouteStaffDashboard},
		{"user", RouteStaffDashboard},
		{"staff", RouteStaffDashboard},
		{"nonsense", RouteGenericDashboard},
		{"", RouteGenericDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, LandingRoute(tt.role))
		})
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"two words", "Alice Manager", "Alice", "Manager"},
		{"three words", "Anna Maria Dijk", "Anna", "Maria Dijk"},
		{"single word", "Cher", "Cher", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitFullName(tt.input)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestStaffHasAccess(t *testing.T) {
	granted := uuid.New()
	other := uuid.New()

	s := Staff{PropertyAccess: []uuid.UUID{granted}}
	assert.True(t, s.HasAccess(granted))
	assert.False(t, s.HasAccess(other))

	// Empty access list means no visibility at all, regardless of role.
	none := Staff{Role: RoleOwner}
	assert.False(t, none.HasAccess(granted))
}
