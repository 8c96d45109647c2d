package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

// KVContextStore persists session markers in the generic key-value store
// under session_<token>. The HTTP layer uses the cookie session instead;
// this variant serves embedded callers and tests.
type KVContextStore struct {
	kv    store.KeyValue
	token string
}

func NewKVContextStore(kv store.KeyValue, token string) *KVContextStore {
	return &KVContextStore{kv: kv, token: token}
}

func (s *KVContextStore) key() string {
	return "session_" + s.token
}

func (s *KVContextStore) Save(ctx context.Context, sc StoredContext) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode session context: %w", err)
	}
	return s.kv.Set(ctx, s.key(), string(raw))
}

func (s *KVContextStore) Load(ctx context.Context) (StoredContext, error) {
	raw, err := s.kv.Get(ctx, s.key())
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return StoredContext{}, ErrNoStoredContext
		}
		return StoredContext{}, err
	}
	var sc StoredContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return StoredContext{}, fmt.Errorf("failed to decode session context: %w", err)
	}
	return sc, nil
}

func (s *KVContextStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key())
}
