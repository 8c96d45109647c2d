// Package api exposes the HTTP surface: registration, login, session
// resolution, business and property switching, and access management.
package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/rBrown1405/zentry-pos-sub001/internal/access"
	"github.com/rBrown1405/zentry-pos-sub001/internal/auth"
	"github.com/rBrown1405/zentry-pos-sub001/internal/middleware"
	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registration"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
	"github.com/rBrown1405/zentry-pos-sub001/internal/telemetry"
)

type Handler struct {
	sessions     *fibersession.Store
	store        store.Store
	auth         *auth.Authenticator
	registration *registration.Manager
	access       *access.Service
	ready        *session.Ready
	telemetry    *telemetry.Telemetry
	logger       *slog.Logger
	readyTimeout time.Duration
}

type HandlerParam struct {
	Sessions     *fibersession.Store
	Store        store.Store
	Auth         *auth.Authenticator
	Registration *registration.Manager
	Access       *access.Service
	Ready        *session.Ready
	Telemetry    *telemetry.Telemetry
	Logger       *slog.Logger
	ReadyTimeout time.Duration
}

func NewHandler(param HandlerParam) *Handler {
	return &Handler{
		sessions:     param.Sessions,
		store:        param.Store,
		auth:         param.Auth,
		registration: param.Registration,
		access:       param.Access,
		ready:        param.Ready,
		telemetry:    param.Telemetry,
		logger:       param.Logger.With("component", "api"),
		readyTimeout: param.ReadyTimeout,
	}
}

// RegisterRoutes mounts all routes on the app. Owner-only management
// routes sit behind the role gate; switching and session resolution only
// require an authenticated session.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	api.Post("/register/business", h.RegisterBusiness)
	api.Post("/register/staff", h.RegisterStaff)
	api.Post("/login", h.Login)

	authed := api.Group("", middleware.AuthenticatedSession(h.sessions))
	authed.Post("/logout", h.Logout)
	authed.Get("/session", h.Session)
	authed.Get("/session/businesses", h.AccessibleBusinesses)
	authed.Get("/session/properties", h.AccessibleProperties)
	authed.Post("/session/switch-business", h.SwitchBusiness)
	authed.Post("/session/switch-property", h.SwitchProperty)

	owner := authed.Group("", middleware.RequireKind(h.sessions, model.KindOwner))
	owner.Post("/properties", h.AddProperty)
	owner.Post("/properties/:propertyID/main", h.SetMainProperty)
	owner.Put("/business/settings", h.UpdateBusinessSettings)
	owner.Post("/staff/:staffID/approve", h.ApproveStaff)
	owner.Post("/staff/:staffID/deactivate", h.DeactivateStaff)
	owner.Post("/staff/:staffID/access", h.GrantAccess)
	owner.Delete("/staff/:staffID/access/:propertyID", h.RevokeAccess)
}

// manager builds a session manager bound to this request's cookie session.
// The manager is per-session state; each request rehydrates it from the
// persisted markers.
func (h *Handler) manager(c *fiber.Ctx) (*session.Manager, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil, err
	}
	return session.NewManager(h.store, newFiberContextStore(sess), h.access, h.ready, h.logger), nil
}

// resolved returns the rehydrated session context for this request,
// waiting for store readiness first.
func (h *Handler) resolved(c *fiber.Ctx) (*session.Manager, session.Context, error) {
	mgr, err := h.manager(c)
	if err != nil {
		return nil, session.Context{}, err
	}
	if err := mgr.WaitReady(c.UserContext(), h.readyTimeout); err != nil {
		return nil, session.Context{}, err
	}
	return mgr, mgr.Resolve(c.UserContext()), nil
}

// Health reports liveness of the backing store.
func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.store.HealthCheck(c.UserContext()); err != nil {
		h.logger.Error("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
