package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registration"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
)

// RegisterBusiness creates a business with its main property and owner
// account.
func (h *Handler) RegisterBusiness(c *fiber.Ctx) error {
	var param registration.RegisterBusinessParam
	if err := c.BodyParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := c.UserContext()
	result, err := h.registration.RegisterBusiness(ctx, param)
	if err != nil {
		h.telemetry.RecordRegistration(ctx, "business", false)
		return fail(c, err)
	}

	h.telemetry.RecordRegistration(ctx, "business", true)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"business":      result.Business,
		"main_property": result.MainProperty,
		"owner":         result.Owner,
	})
}

// RegisterStaff enrolls a staff member through a property connection code.
func (h *Handler) RegisterStaff(c *fiber.Ctx) error {
	var param registration.RegisterStaffParam
	if err := c.BodyParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := c.UserContext()
	staff, err := h.registration.RegisterStaff(ctx, param)
	if err != nil {
		h.telemetry.RecordRegistration(ctx, "staff", false)
		return fail(c, err)
	}

	h.telemetry.RecordRegistration(ctx, "staff", true)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"staff": staff})
}

// AddProperty creates an additional property under the caller's business.
func (h *Handler) AddProperty(c *fiber.Ctx) error {
	_, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.Business == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	var body struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Address string `json:"address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	property, err := h.registration.AddProperty(c.UserContext(), registration.AddPropertyParam{
		BusinessID: sc.Business.ID,
		Name:       body.Name,
		Type:       body.Type,
		Address:    body.Address,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"property": property})
}

// SetMainProperty promotes a property of the caller's business to main.
func (h *Handler) SetMainProperty(c *fiber.Ctx) error {
	_, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.Business == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	propertyID, err := uuid.Parse(c.Params("propertyID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	if err := h.registration.SetMainProperty(c.UserContext(), sc.Business.ID, propertyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// UpdateBusinessSettings replaces the caller's business settings.
func (h *Handler) UpdateBusinessSettings(c *fiber.Ctx) error {
	_, sc, err := h.resolved(c)
	if err != nil {
		return fail(c, err)
	}
	if sc.Business == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	var settings model.BusinessSettings
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.registration.UpdateBusinessSettings(c.UserContext(), sc.Business.ID, settings); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// ApproveStaff approves a pending staff member of the caller's business.
func (h *Handler) ApproveStaff(c *fiber.Ctx) error {
	_, sc, err := h.resolvedForStaff(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.registration.ApproveStaff(c.UserContext(), sc.staffID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "approved"})
}

// DeactivateStaff soft-deletes a staff member of the caller's business.
func (h *Handler) DeactivateStaff(c *fiber.Ctx) error {
	_, sc, err := h.resolvedForStaff(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.registration.DeactivateStaff(c.UserContext(), sc.staffID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deactivated"})
}

type staffScoped struct {
	caller  session.Context
	staffID string
}

// resolvedForStaff resolves the caller and checks the :staffID route param
// names a staff member of the caller's own business.
func (h *Handler) resolvedForStaff(c *fiber.Ctx) (*session.Manager, staffScoped, error) {
	mgr, sc, err := h.resolved(c)
	if err != nil {
		return nil, staffScoped{}, err
	}
	if sc.Business == nil {
		return nil, staffScoped{}, session.ErrNotAuthenticated
	}

	staffID := c.Params("staffID")
	target, err := h.store.GetStaffByStaffID(c.UserContext(), staffID)
	if err != nil {
		return nil, staffScoped{}, err
	}
	if target.BusinessID != sc.Business.ID {
		return nil, staffScoped{}, session.ErrAccessDenied
	}
	return mgr, staffScoped{caller: sc, staffID: staffID}, nil
}
