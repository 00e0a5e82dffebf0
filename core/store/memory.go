package store

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	user      User
	sales     []SaleRecord
	inventory map[string]int
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	now     func() time.Time
}

// NewMemoryStore constructs the default in-process Store implementation.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
}

func (m *memoryStore) record(sender string) *memoryRecord {
	rec, ok := m.records[sender]
	if !ok {
		rec = &memoryRecord{
			user: User{
				Sender:    sender,
				Stage:     StageNew,
				CreatedAt: m.now(),
			},
			inventory: make(map[string]int),
		}
		m.records[sender] = rec
	}
	return rec
}

func (m *memoryStore) GetOrCreateUser(_ context.Context, sender string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.records[sender]
	rec := m.record(sender)
	return rec.user, !existed, nil
}

func (m *memoryStore) SetStage(_ context.Context, sender string, st Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(sender).user.Stage = st
	return nil
}

func (m *memoryStore) SetBusinessName(_ context.Context, sender, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(sender)
	rec.user.BusinessName = name
	rec.user.Stage = StageActive
	return nil
}

func (m *memoryStore) AppendSale(_ context.Context, sender string, sale SaleRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(sender)
	rec.sales = append(rec.sales, sale)
	return len(rec.sales), nil
}

func (m *memoryStore) SalesSince(_ context.Context, sender string, since time.Time) ([]SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[sender]
	if !ok {
		return nil, nil
	}
	var out []SaleRecord
	for _, s := range rec.sales {
		if !s.RecordedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) AddStock(_ context.Context, sender, product string, qty int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(sender)
	rec.inventory[product] += qty
	return rec.inventory[product], nil
}

func (m *memoryStore) Inventory(_ context.Context, sender string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[sender]
	if !ok {
		return map[string]int{}, nil
	}
	out := make(map[string]int, len(rec.inventory))
	for k, v := range rec.inventory {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Stats{Users: len(m.records)}
	for _, rec := range m.records {
		st.TotalSales += len(rec.sales)
	}
	return st, nil
}

func (m *memoryStore) Close() error {
	return nil
}
