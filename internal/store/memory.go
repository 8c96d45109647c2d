package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

// MemoryStore keeps entities in insertion order, matching the
// storage-iteration ordering contract of the list operations. It backs the
// test suites and doubles as a reference implementation of Store.
type MemoryStore struct {
	mu         sync.RWMutex
	businesses []model.Business
	properties []model.Property
	staff      []model.Staff
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateBusiness(ctx context.Context, b model.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.businesses {
		if existing.ID == b.ID || existing.Code == b.Code || existing.BusinessID == b.BusinessID {
			return ErrDuplicate
		}
	}
	s.businesses = append(s.businesses, b)
	return nil
}

func (s *MemoryStore) GetBusinessByID(ctx context.Context, id uuid.UUID) (model.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Business{}, ErrBusinessNotFound
}

func (s *MemoryStore) GetBusinessByCode(ctx context.Context, code string) (model.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if b.Code == code {
			return b, nil
		}
	}
	return model.Business{}, ErrBusinessNotFound
}

func (s *MemoryStore) GetBusinessByBusinessID(ctx context.Context, businessID string) (model.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if b.BusinessID == businessID {
			return b, nil
		}
	}
	return model.Business{}, ErrBusinessNotFound
}

func (s *MemoryStore) ListBusinessesByOwner(ctx context.Context, ownerEmail string) ([]model.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Business
	for _, b := range s.businesses {
		if b.OwnerEmail == ownerEmail && b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateBusiness(ctx context.Context, b model.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.businesses {
		if existing.ID == b.ID {
			s.businesses[i] = b
			return nil
		}
	}
	return ErrBusinessNotFound
}

func (s *MemoryStore) CreateProperty(ctx context.Context, p model.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.properties {
		if existing.ID == p.ID || existing.Code == p.Code || existing.ConnectionCode == p.ConnectionCode {
			return ErrDuplicate
		}
	}
	s.properties = append(s.properties, p)
	return nil
}

func (s *MemoryStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (model.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Property{}, ErrPropertyNotFound
}

func (s *MemoryStore) GetPropertyByCode(ctx context.Context, code string) (model.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.Code == code {
			return p, nil
		}
	}
	return model.Property{}, ErrPropertyNotFound
}

func (s *MemoryStore) GetPropertyByConnectionCode(ctx context.Context, connectionCode string) (model.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.ConnectionCode == connectionCode {
			return p, nil
		}
	}
	return model.Property{}, ErrPropertyNotFound
}

func (s *MemoryStore) ListPropertiesByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Property
	for _, p := range s.properties {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateProperty(ctx context.Context, p model.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.properties {
		if existing.ID == p.ID {
			s.properties[i] = p
			return nil
		}
	}
	return ErrPropertyNotFound
}

func (s *MemoryStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.properties {
		if existing.ID == id {
			s.properties = append(s.properties[:i], s.properties[i+1:]...)
			return nil
		}
	}
	return ErrPropertyNotFound
}

func (s *MemoryStore) CreateStaff(ctx context.Context, st model.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.staff {
		if existing.ID == st.ID || existing.StaffID == st.StaffID || existing.Email == st.Email {
			return ErrDuplicate
		}
	}
	s.staff = append(s.staff, st)
	return nil
}

func (s *MemoryStore) GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.StaffID == staffID {
			return st, nil
		}
	}
	return model.Staff{}, ErrStaffNotFound
}

func (s *MemoryStore) GetStaffByEmail(ctx context.Context, email string) (model.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.Email == email {
			return st, nil
		}
	}
	return model.Staff{}, ErrStaffNotFound
}

func (s *MemoryStore) ListStaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Staff
	for _, st := range s.staff {
		if st.BusinessID == businessID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateStaff(ctx context.Context, st model.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.staff {
		if existing.ID == st.ID {
			s.staff[i] = st
			return nil
		}
	}
	return ErrStaffNotFound
}

func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

// MemoryKV is the in-memory KeyValue used by tests, preserving key insertion
// order for Keys.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	order  []string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (kv *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (kv *MemoryKV) Set(ctx context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if _, ok := kv.values[key]; !ok {
		kv.order = append(kv.order, key)
	}
	kv.values[key] = value
	return nil
}

func (kv *MemoryKV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if _, ok := kv.values[key]; !ok {
		return nil
	}
	delete(kv.values, key)
	for i, k := range kv.order {
		if k == key {
			kv.order = append(kv.order[:i], kv.order[i+1:]...)
			break
		}
	}
	return nil
}

func (kv *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	_, ok := kv.values[key]
	return ok, nil
}

func (kv *MemoryKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	var out []string
	for _, k := range kv.order {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}
