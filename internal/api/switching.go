package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
)

// SwitchBusiness changes the session's current business. The target must
// be in the caller's accessible set at switch time; the current property
// selection is cleared because it belongs to the old business.
func (h *Handler) SwitchBusiness(c *fiber.Ctx) error {
	mgr, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.State != session.StateAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	var body struct {
		BusinessID string `json:"business_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := c.UserContext()
	if err := mgr.SwitchBusiness(ctx, body.BusinessID); err != nil {
		h.telemetry.RecordSwitch(ctx, "business", false)
		return fail(c, err)
	}

	h.telemetry.RecordSwitch(ctx, "business", true)
	return c.JSON(contextResponse(mgr.Current()))
}

// SwitchProperty changes the session's current property within the current
// business, re-checking access at switch time.
func (h *Handler) SwitchProperty(c *fiber.Ctx) error {
	mgr, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.State != session.StateAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	var body struct {
		PropertyID string `json:"property_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	ctx := c.UserContext()
	if err := mgr.SwitchProperty(ctx, propertyID); err != nil {
		h.telemetry.RecordSwitch(ctx, "property", false)
		return fail(c, err)
	}

	h.telemetry.RecordSwitch(ctx, "property", true)
	return c.JSON(contextResponse(mgr.Current()))
}

// AccessibleBusinesses lists the businesses the caller may switch to.
func (h *Handler) AccessibleBusinesses(c *fiber.Ctx) error {
	mgr, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.State != session.StateAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	businesses, err := mgr.AccessibleBusinesses(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"businesses": businesses})
}

// AccessibleProperties lists the properties on the caller's explicit
// access list.
func (h *Handler) AccessibleProperties(c *fiber.Ctx) error {
	_, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.State != session.StateAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	properties, err := h.access.AccessibleProperties(c.UserContext(), sc.Staff.StaffID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"properties": properties})
}

// GrantAccess adds a property to a staff member's explicit access list.
func (h *Handler) GrantAccess(c *fiber.Ctx) error {
	_, scoped, err := h.resolvedForStaff(c)
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		PropertyID string `json:"property_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	if err := h.access.Grant(c.UserContext(), scoped.staffID, propertyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "granted"})
}

// RevokeAccess removes a property from a staff member's explicit access
// list.
func (h *Handler) RevokeAccess(c *fiber.Ctx) error {
	_, scoped, err := h.resolvedForStaff(c)
	if err != nil {
		return fail(c, err)
	}

	propertyID, err := uuid.Parse(c.Params("propertyID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	if err := h.access.Revoke(c.UserContext(), scoped.staffID, propertyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "revoked"})
}
