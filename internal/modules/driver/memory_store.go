// README: In-memory driver store; lets the binary run without Postgres.
package driver

import (
	"context"
	"sync"
	"time"

	"ridebooking/internal/types"
)

type MemoryStore struct {
	mu      sync.RWMutex
	drivers map[types.ID]*Driver
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drivers: make(map[types.ID]*Driver)}
}

func (m *MemoryStore) Create(ctx context.Context, d *Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	m.drivers[d.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) GetByUsername(ctx context.Context, username string) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Username == username {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return ErrNotFound
	}
	d.Location = &types.Point{Lat: p.Lat, Lng: p.Lng}
	d.UpdatedAt = time.Now()
	return nil
}

// UpdateStatus applies the check-then-write under the store lock, so two
// racing status changes for the same driver serialize here.
func (m *MemoryStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return false, ErrNotFound
	}
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Driver, 0)
	for _, d := range m.drivers {
		if d.Status == status {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}
