package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lightnav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu    sync.Mutex
	plans map[string]*model.RoutePlan // id -> plan
	order []string                    // insertion order for listing
}

func NewMemory() *Memory {
	return &Memory{plans: map[string]*model.RoutePlan{}}
}

func (m *Memory) SavePlan(ctx context.Context, plan *model.RoutePlan) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	cp := *plan
	cp.ID = id
	m.plans[id] = &cp
	m.order = append(m.order, id)
	plan.ID = id
	return id, nil
}

func (m *Memory) GetPlan(ctx context.Context, id string) (*model.RoutePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListPlans(ctx context.Context, cursor string, limit int) ([]*model.RoutePlan, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	start := 0
	if cursor != "" {
		for i, id := range m.order {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []*model.RoutePlan{}
	var next string
	for i := start; i < len(m.order) && len(out) < limit; i++ {
		cp := *m.plans[m.order[i]]
		out = append(out, &cp)
		next = m.order[i]
	}
	if start+len(out) >= len(m.order) {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) ReplacePlan(ctx context.Context, id string, plan *model.RoutePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return ErrNotFound
	}
	cp := *plan
	cp.ID = id
	m.plans[id] = &cp
	return nil
}

func (m *Memory) DeletePlan(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return ErrNotFound
	}
	delete(m.plans, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
