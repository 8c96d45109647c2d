// Package session owns the authenticated context of one logical session:
// who is signed in, which business and property are selected, and how that
// survives page reloads. The manager is the single writer of context state;
// everything else reads snapshots or subscribes to change events.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/access"
	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAccessDenied     = errors.New("access denied")
	ErrNotReady         = errors.New("session backend not ready")
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

// Context is the resolved session view: identity kind, current business and
// current property. Business and Property may change many times within one
// authenticated session without altering the identity.
type Context struct {
	State      State
	Kind       model.RoleKind
	Staff      model.Staff
	Business   *model.Business
	Property   *model.Property
	ResolvedAt time.Time
}

// StoredContext is the persisted marker set a reload rehydrates from.
// Super-admin sessions are never written here.
type StoredContext struct {
	Kind       model.RoleKind `json:"kind"`
	StaffID    string         `json:"staff_id"`
	BusinessID string         `json:"business_id"`
	PropertyID string         `json:"property_id,omitempty"`
}

// ContextStore persists the session markers for one browser session. The
// HTTP layer adapts its cookie session; tests use the key-value variant.
type ContextStore interface {
	Save(ctx context.Context, sc StoredContext) error
	Load(ctx context.Context) (StoredContext, error)
	Clear(ctx context.Context) error
}

// ErrNoStoredContext is returned by ContextStore.Load when nothing was
// persisted for the session.
var ErrNoStoredContext = errors.New("no stored session context")

type Manager struct {
	mu       sync.Mutex
	cur      Context
	store    store.Store
	ctxStore ContextStore
	access   *access.Service
	ready    *Ready
	logger   *slog.Logger
	subs     subscribers
}

func NewManager(st store.Store, ctxStore ContextStore, acc *access.Service, ready *Ready, logger *slog.Logger) *Manager {
	return &Manager{
		store:    st,
		ctxStore: ctxStore,
		access:   acc,
		ready:    ready,
		logger:   logger.With("component", "session"),
	}
}

// Current returns a read-only snapshot of the session context.
func (m *Manager) Current() Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// WaitReady blocks until the backing store has signalled readiness, the
// timeout elapses, or ctx is done. Timeouts surface as ErrNotReady, which
// callers treat as retryable by the user.
func (m *Manager) WaitReady(ctx context.Context, timeout time.Duration) error {
	return m.ready.Wait(ctx, timeout)
}

// Establish transitions Unauthenticated -> Authenticated for a verified
// staff identity. The caller has already checked credentials; Establish
// resolves the business, seeds the initial context and persists it.
// Super-admin is the exception: its elevated state lives only in process
// memory and must be re-established after every reload.
func (m *Manager) Establish(ctx context.Context, staff model.Staff) (Context, error) {
	m.mu.Lock()
	m.cur = Context{State: StateAuthenticating}
	m.mu.Unlock()

	kind := model.Classify(staff.Role)

	business, err := m.store.GetBusinessByID(ctx, staff.BusinessID)
	if err != nil {
		m.setUnauthenticated()
		return Context{}, fmt.Errorf("failed to resolve business for staff %s: %w", staff.StaffID, err)
	}

	next := Context{
		State:      StateAuthenticated,
		Kind:       kind,
		Staff:      staff,
		Business:   &business,
		ResolvedAt: time.Now(),
	}

	if kind != model.KindSuperAdmin {
		if err := m.ctxStore.Save(ctx, StoredContext{
			Kind:       kind,
			StaffID:    staff.StaffID,
			BusinessID: business.BusinessID,
		}); err != nil {
			m.setUnauthenticated()
			return Context{}, fmt.Errorf("failed to persist session context: %w", err)
		}
	}

	m.mu.Lock()
	m.cur = next
	m.mu.Unlock()

	m.logger.Info("session established", "staff_id", staff.StaffID, "kind", kind, "business", business.Code)
	return next, nil
}

// Resolve rehydrates the session from persisted markers, as happens on
// every page load. Any failure degrades to Unauthenticated rather than
// erroring: an unauthenticated landing state is always a safe default.
// A persisted super-admin marker, which should never exist, is ignored.
func (m *Manager) Resolve(ctx context.Context) Context {
	sc, err := m.ctxStore.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoStoredContext) {
			m.logger.Warn("failed to load stored session context", "error", err)
		}
		m.setUnauthenticated()
		return m.Current()
	}

	if sc.Kind == model.KindSuperAdmin {
		m.logger.Warn("ignoring persisted super-admin session marker")
		m.setUnauthenticated()
		return m.Current()
	}

	staff, err := m.store.GetStaffByStaffID(ctx, sc.StaffID)
	if err != nil || !staff.IsActive {
		m.setUnauthenticated()
		return m.Current()
	}

	business, err := m.store.GetBusinessByBusinessID(ctx, sc.BusinessID)
	if err != nil {
		m.setUnauthenticated()
		return m.Current()
	}

	next := Context{
		State:      StateAuthenticated,
		Kind:       model.Classify(staff.Role),
		Staff:      staff,
		Business:   &business,
		ResolvedAt: time.Now(),
	}

	if sc.PropertyID != "" {
		if propertyID, err := uuid.Parse(sc.PropertyID); err == nil {
			if property, err := m.store.GetPropertyByID(ctx, propertyID); err == nil {
				next.Property = &property
			}
		}
	}

	m.mu.Lock()
	m.cur = next
	m.mu.Unlock()
	return next
}

// Logout clears persisted markers and returns the session to
// Unauthenticated.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.ctxStore.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session context: %w", err)
	}
	m.setUnauthenticated()
	m.logger.Info("session cleared")
	return nil
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.cur = Context{State: StateUnauthenticated}
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, cur Context) error {
	if cur.Kind == model.KindSuperAdmin {
		return nil
	}
	sc := StoredContext{
		Kind:       cur.Kind,
		StaffID:    cur.Staff.StaffID,
		BusinessID: cur.Business.BusinessID,
	}
	if cur.Property != nil {
		sc.PropertyID = cur.Property.ID.String()
	}
	return m.ctxStore.Save(ctx, sc)
}
