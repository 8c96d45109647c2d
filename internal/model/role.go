package model

import "fmt"

type Role string

// Canonical role vocabulary. The legacy system mixed "user", "staff" and
// "employee" freely; roleAliases is the explicit migration table.
const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
	RoleServer     Role = "server"
	RoleCashier    Role = "cashier"
	RoleKitchen    Role = "kitchen"
	RoleHost       Role = "host"
	RoleBartender  Role = "bartender"
	RoleChef       Role = "chef"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleAliases = map[string]Role{
	"user":  RoleEmployee,
	"staff": RoleEmployee,
}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee, RoleServer, RoleCashier,
		RoleKitchen, RoleHost, RoleBartender, RoleChef, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole maps a raw role string, including legacy aliases, onto the
// canonical vocabulary.
func ParseRole(s string) (Role, error) {
	if alias, ok := roleAliases[s]; ok {
		return alias, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}

// RoleKind collapses the role vocabulary into the three identity kinds the
// session layer distinguishes.
type RoleKind string

const (
	KindStaff      RoleKind = "staff"
	KindOwner      RoleKind = "business-owner"
	KindSuperAdmin RoleKind = "super-admin"
)

// Classify is total: any role, valid or not, maps to a kind. Unrecognized
// input defaults to the least-privileged kind.
func Classify(r Role) RoleKind {
	switch r {
	case RoleSuperAdmin:
		return KindSuperAdmin
	case RoleOwner, RoleAdmin:
		return KindOwner
	default:
		return KindStaff
	}
}

// Dashboard routes per role. LandingRoute is total and never errors; an
// unrecognized role lands on the generic dashboard.
const (
	RouteAdminDashboard    = "/admin/dashboard"
	RouteBusinessDashboard = "/business/dashboard"
	RouteStaffDashboard    = "/staff/dashboard"
	RouteGenericDashboard  = "/dashboard"
)

func LandingRoute(raw string) string {
	role, err := ParseRole(raw)
	if err != nil {
		return RouteGenericDashboard
	}
	switch Classify(role) {
	case KindSuperAdmin:
		return RouteAdminDashboard
	case KindOwner:
		return RouteBusinessDashboard
	default:
		return RouteStaffDashboard
	}
}
