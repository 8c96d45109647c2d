package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

// RedisKV adapts a redis client to the KeyValue contract.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (kv *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := kv.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return v, nil
}

func (kv *RedisKV) Set(ctx context.Context, key, value string) error {
	return kv.client.Set(ctx, key, value, 0).Err()
}

func (kv *RedisKV) Delete(ctx context.Context, key string) error {
	return kv.client.Del(ctx, key).Err()
}

func (kv *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := kv.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (kv *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := kv.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// KVStore renders the Store contract over a generic key-value backend using
// the legacy cache layout: entities serialized as JSON under
// business_<code>, property_<code> and staff_<staffID>, with secondary index
// keys pointing back at the primary key. It is the fallback-cache
// implementation and has no transactional guarantees.
type KVStore struct {
	kv KeyValue
}

func NewKVStore(kv KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(raw))
}

func (s *KVStore) getJSON(ctx context.Context, key string, v any, notFound error) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return notFound
		}
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (s *KVStore) CreateBusiness(ctx context.Context, b model.Business) error {
	if exists, err := s.kv.Exists(ctx, BusinessKey(b.Code)); err != nil {
		return err
	} else if exists {
		return ErrDuplicate
	}
	if err := s.putJSON(ctx, BusinessKey(b.Code), b); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, BusinessIDKey(b.BusinessID), b.Code); err != nil {
		return err
	}
	return s.kv.Set(ctx, BusinessUUIDKey(b.ID), b.Code)
}

func (s *KVStore) GetBusinessByCode(ctx context.Context, code string) (model.Business, error) {
	var b model.Business
	if err := s.getJSON(ctx, BusinessKey(code), &b, ErrBusinessNotFound); err != nil {
		return model.Business{}, err
	}
	return b, nil
}

func (s *KVStore) getBusinessByIndex(ctx context.Context, indexKey string) (model.Business, error) {
	code, err := s.kv.Get(ctx, indexKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return model.Business{}, ErrBusinessNotFound
		}
		return model.Business{}, err
	}
	return s.GetBusinessByCode(ctx, code)
}

func (s *KVStore) GetBusinessByID(ctx context.Context, id uuid.UUID) (model.Business, error) {
	return s.getBusinessByIndex(ctx, BusinessUUIDKey(id))
}

func (s *KVStore) GetBusinessByBusinessID(ctx context.Context, businessID string) (model.Business, error) {
	return s.getBusinessByIndex(ctx, BusinessIDKey(businessID))
}

func (s *KVStore) ListBusinessesByOwner(ctx context.Context, ownerEmail string) ([]model.Business, error) {
	keys, err := s.kv.Keys(ctx, "business_")
	if err != nil {
		return nil, err
	}
	var out []model.Business
	for _, key := range keys {
		var b model.Business
		if err := s.getJSON(ctx, key, &b, ErrBusinessNotFound); err != nil {
			// Index keys share the business_ prefix; skip anything that
			// is not an entity document.
			continue
		}
		if b.Code != "" && BusinessKey(b.Code) == key && b.OwnerEmail == ownerEmail && b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *KVStore) UpdateBusiness(ctx context.Context, b model.Business) error {
	if exists, err := s.kv.Exists(ctx, BusinessKey(b.Code)); err != nil {
		return err
	} else if !exists {
		return ErrBusinessNotFound
	}
	return s.putJSON(ctx, BusinessKey(b.Code), b)
}

func (s *KVStore) CreateProperty(ctx context.Context, p model.Property) error {
	if exists, err := s.kv.Exists(ctx, PropertyKey(p.Code)); err != nil {
		return err
	} else if exists {
		return ErrDuplicate
	}
	if err := s.putJSON(ctx, PropertyKey(p.Code), p); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, ConnectionCodeKey(p.ConnectionCode), p.Code); err != nil {
		return err
	}
	return s.kv.Set(ctx, PropertyUUIDKey(p.ID), p.Code)
}

func (s *KVStore) GetPropertyByCode(ctx context.Context, code string) (model.Property, error) {
	var p model.Property
	if err := s.getJSON(ctx, PropertyKey(code), &p, ErrPropertyNotFound); err != nil {
		return model.Property{}, err
	}
	return p, nil
}

func (s *KVStore) getPropertyByIndex(ctx context.Context, indexKey string) (model.Property, error) {
	code, err := s.kv.Get(ctx, indexKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return model.Property{}, ErrPropertyNotFound
		}
		return model.Property{}, err
	}
	return s.GetPropertyByCode(ctx, code)
}

func (s *KVStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (model.Property, error) {
	return s.getPropertyByIndex(ctx, PropertyUUIDKey(id))
}

func (s *KVStore) GetPropertyByConnectionCode(ctx context.Context, connectionCode string) (model.Property, error) {
	return s.getPropertyByIndex(ctx, ConnectionCodeKey(connectionCode))
}

func (s *KVStore) ListPropertiesByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Property, error) {
	keys, err := s.kv.Keys(ctx, "property_")
	if err != nil {
		return nil, err
	}
	var out []model.Property
	for _, key := range keys {
		var p model.Property
		if err := s.getJSON(ctx, key, &p, ErrPropertyNotFound); err != nil {
			continue
		}
		if p.Code != "" && PropertyKey(p.Code) == key && p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *KVStore) UpdateProperty(ctx context.Context, p model.Property) error {
	if exists, err := s.kv.Exists(ctx, PropertyKey(p.Code)); err != nil {
		return err
	} else if !exists {
		return ErrPropertyNotFound
	}
	return s.putJSON(ctx, PropertyKey(p.Code), p)
}

func (s *KVStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetPropertyByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, PropertyKey(p.Code)); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, ConnectionCodeKey(p.ConnectionCode)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, PropertyUUIDKey(p.ID))
}

func (s *KVStore) CreateStaff(ctx context.Context, st model.Staff) error {
	if exists, err := s.kv.Exists(ctx, StaffKey(st.StaffID)); err != nil {
		return err
	} else if exists {
		return ErrDuplicate
	}
	if err := s.putJSON(ctx, StaffKey(st.StaffID), st); err != nil {
		return err
	}
	return s.kv.Set(ctx, StaffEmailKey(st.Email), st.StaffID)
}

func (s *KVStore) GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error) {
	var st model.Staff
	if err := s.getJSON(ctx, StaffKey(staffID), &st, ErrStaffNotFound); err != nil {
		return model.Staff{}, err
	}
	return st, nil
}

func (s *KVStore) GetStaffByEmail(ctx context.Context, email string) (model.Staff, error) {
	staffID, err := s.kv.Get(ctx, StaffEmailKey(email))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return model.Staff{}, ErrStaffNotFound
		}
		return model.Staff{}, err
	}
	return s.GetStaffByStaffID(ctx, staffID)
}

func (s *KVStore) ListStaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Staff, error) {
	keys, err := s.kv.Keys(ctx, "staff_")
	if err != nil {
		return nil, err
	}
	var out []model.Staff
	for _, key := range keys {
		var st model.Staff
		if err := s.getJSON(ctx, key, &st, ErrStaffNotFound); err != nil {
			continue
		}
		if st.StaffID != "" && StaffKey(st.StaffID) == key && st.BusinessID == businessID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *KVStore) UpdateStaff(ctx context.Context, st model.Staff) error {
	if exists, err := s.kv.Exists(ctx, StaffKey(st.StaffID)); err != nil {
		return err
	} else if !exists {
		return ErrStaffNotFound
	}
	return s.putJSON(ctx, StaffKey(st.StaffID), st)
}

func (s *KVStore) HealthCheck(ctx context.Context) error {
	_, err := s.kv.Exists(ctx, "healthcheck")
	return err
}
