package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
)

type loginRequest struct {
	Mode     string `json:"mode"`
	StaffID  string `json:"staff_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates in one of three modes. Staff sign in with their
// staff ID, owners and super admins with their email. On success the
// session context is established and returned together with the landing
// route for the caller's role.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := c.UserContext()

	var (
		staff model.Staff
		err   error
	)
	switch req.Mode {
	case "owner":
		staff, err = h.auth.LoginOwner(ctx, req.Email, req.Password)
	case "super_admin":
		staff, err = h.auth.LoginSuperAdmin(ctx, req.Email, req.Password)
	default:
		staff, err = h.auth.LoginStaff(ctx, req.StaffID, req.Password)
	}
	if err != nil {
		h.telemetry.RecordLogin(ctx, req.Mode, false)
		return fail(c, err)
	}

	mgr, err := h.manager(c)
	if err != nil {
		return fail(c, err)
	}
	if err := mgr.WaitReady(ctx, h.readyTimeout); err != nil {
		return fail(c, err)
	}

	sc, err := mgr.Establish(ctx, staff)
	if err != nil {
		h.telemetry.RecordLogin(ctx, req.Mode, false)
		return fail(c, err)
	}

	h.telemetry.RecordLogin(ctx, req.Mode, true)
	return c.JSON(contextResponse(sc))
}

// Logout clears the session context and destroys the cookie session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	mgr, err := h.manager(c)
	if err != nil {
		return fail(c, err)
	}
	if err := mgr.Logout(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "logged out"})
}

// Session returns the rehydrated session context for this request.
func (h *Handler) Session(c *fiber.Ctx) error {
	_, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.State != session.StateAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}
	return c.JSON(contextResponse(sc))
}

func contextResponse(sc session.Context) fiber.Map {
	resp := fiber.Map{
		"kind":          sc.Kind,
		"staff":         sc.Staff,
		"landing_route": model.LandingRoute(sc.Staff.Role.String()),
		"resolved_at":   sc.ResolvedAt,
	}
	if sc.Business != nil {
		resp["business"] = sc.Business
	}
	if sc.Property != nil {
		resp["property"] = sc.Property
	}
	return resp
}
