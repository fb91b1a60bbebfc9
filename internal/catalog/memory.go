package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Fields may be filled directly before
// the store is shared; reads hold a read lock.
type MemoryStore struct {
	mu sync.RWMutex

	Config    *ConfigGlobal
	Products  map[int64]*Product
	Variants  map[int64]*MaterialVariant
	Finishes  map[int64]*Finish
	Customers map[int64]*Customer
	Prices    []CustomerPrice
	Overrides []ProductCustomerOverride
	Margins   []MarginRule
	Dynamics  []MarginRuleDynamic
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Products:  make(map[int64]*Product),
		Variants:  make(map[int64]*MaterialVariant),
		Finishes:  make(map[int64]*Finish),
		Customers: make(map[int64]*Customer),
	}
}

func (m *MemoryStore) GetProduct(_ context.Context, id int64) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.Products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *MemoryStore) GetConfig(_ context.Context) (*ConfigGlobal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Config == nil {
		return nil, fmt.Errorf("config_global: %w", ErrNotFound)
	}
	c := *m.Config
	return &c, nil
}

func (m *MemoryStore) GetMaterialVariant(_ context.Context, id int64) (*MaterialVariant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.Variants[id]
	if !ok {
		return nil, fmt.Errorf("material variant %d: %w", id, ErrNotFound)
	}
	c := *v
	return &c, nil
}

func (m *MemoryStore) GetFinish(_ context.Context, id int64) (*Finish, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.Finishes[id]
	if !ok {
		return nil, fmt.Errorf("finish %d: %w", id, ErrNotFound)
	}
	c := *f
	return &c, nil
}

func (m *MemoryStore) GetCustomer(_ context.Context, id int64) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.Customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) CustomerPrices(_ context.Context, q PriceQuery) ([]CustomerPrice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CustomerPrice, 0)
	for _, p := range m.Prices {
		if !p.IsCurrent || p.Kind != q.Kind || p.EntityID != q.EntityID {
			continue
		}
		byCustomer := p.CustomerID != nil && *p.CustomerID == q.CustomerID
		byGroup := q.GroupID != nil && p.CustomerGroupID != nil && *p.CustomerGroupID == *q.GroupID
		if byCustomer || byGroup {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ProductOverrides(_ context.Context, customerID, productID int64) ([]ProductCustomerOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProductCustomerOverride, 0)
	for _, o := range m.Overrides {
		if o.IsCurrent && o.CustomerID == customerID && o.ProductID == productID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) MarginRules(_ context.Context, scope Scope, refID int64) ([]MarginRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MarginRule, 0)
	for _, r := range m.Margins {
		if r.Active && r.Scope == scope && matchesRef(scope, refID, r.CategoryID, r.ProductID, nil, nil) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.After(out[j].StartsAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) DynamicRules(_ context.Context, scope Scope, refID int64) ([]MarginRuleDynamic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MarginRuleDynamic, 0)
	for _, r := range m.Dynamics {
		if r.Active && r.Scope == scope && matchesRef(scope, refID, r.CategoryID, r.ProductID, r.CustomerID, r.CustomerGroupID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesRef(scope Scope, refID int64, categoryID, productID, customerID, groupID *int64) bool {
	eq := func(p *int64) bool { return p != nil && *p == refID }
	switch scope {
	case ScopeGlobal:
		return true
	case ScopeCategory:
		return eq(categoryID)
	case ScopeProduct:
		return eq(productID)
	case ScopeCustomer:
		return eq(customerID)
	case ScopeCustomerGroup:
		return eq(groupID)
	}
	return false
}
