package api

import (
	"context"
	"encoding/json"
	"fmt"

	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/rBrown1405/zentry-pos-sub001/internal/middleware"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
)

// fiberContextStore adapts one request's cookie session to the session
// manager's ContextStore. Markers are stored as a JSON string so the role
// gate middleware can read them without going through the manager.
type fiberContextStore struct {
	sess *fibersession.Session
}

func newFiberContextStore(sess *fibersession.Session) *fiberContextStore {
	return &fiberContextStore{sess: sess}
}

func (s *fiberContextStore) Save(ctx context.Context, sc session.StoredContext) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal session context: %w", err)
	}
	s.sess.Set(middleware.SessionContextKey, string(data))
	if err := s.sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *fiberContextStore) Load(ctx context.Context) (session.StoredContext, error) {
	raw, ok := s.sess.Get(middleware.SessionContextKey).(string)
	if !ok {
		return session.StoredContext{}, session.ErrNoStoredContext
	}
	var sc session.StoredContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return session.StoredContext{}, fmt.Errorf("failed to unmarshal session context: %w", err)
	}
	return sc, nil
}

func (s *fiberContextStore) Clear(ctx context.Context) error {
	s.sess.Delete(middleware.SessionContextKey)
	if err := s.sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
