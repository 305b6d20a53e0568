// README: In-memory ride store; CAS semantics match the Postgres store.
package ride

import (
	"context"
	"sync"
	"time"

	"ridebooking/internal/types"
)

type MemoryStore struct {
	mu    sync.RWMutex
	rides map[types.ID]*Ride
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[types.ID]*Ride)}
}

func (m *MemoryStore) Create(ctx context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// UpdateStatus serializes the check-then-write under the store lock, matching
// the row-level atomicity of the SQL version.
func (m *MemoryStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	now := time.Now()
	r.Status = to
	r.StatusVersion++
	r.UpdatedAt = now
	if patch.DriverID != nil {
		id := *patch.DriverID
		r.DriverID = &id
	}
	if patch.DistanceKm != nil {
		v := *patch.DistanceKm
		r.DistanceKm = &v
	}
	if patch.DurationMinutes != nil {
		v := *patch.DurationMinutes
		r.DurationMinutes = &v
	}
	if patch.Fare != nil {
		v := *patch.Fare
		r.Fare = &v
	}
	switch to {
	case StatusStarted:
		r.StartTime = &now
	case StatusCompleted:
		r.CompletionTime = &now
	}
	return true, nil
}

func (m *MemoryStore) SetRating(ctx context.Context, id types.ID, byDriver bool, rating int, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if byDriver {
		r.DriverRating = &rating
		r.DriverFeedback = &feedback
	} else {
		r.UserRating = &rating
		r.UserFeedback = &feedback
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) SetPayment(ctx context.Context, id types.ID, transactionID string, status PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if transactionID != "" {
		r.TransactionID = &transactionID
	}
	r.PaymentStatus = status
	r.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ActiveByRider(ctx context.Context, riderID types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.RiderID == riderID && r.Status.Active() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID != nil && *r.DriverID == driverID && r.Status.Active() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Ride, 0)
	for _, r := range m.rides {
		if r.RiderID == riderID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListByDriver(ctx context.Context, driverID types.ID) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Ride, 0)
	for _, r := range m.rides {
		if r.DriverID != nil && *r.DriverID == driverID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
