package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

// Memory is a map-backed Store. Values are copied in and out so callers
// never share slices with the store.
type Memory struct {
	mu        sync.RWMutex
	products  map[string]models.Product
	preorders map[string]models.PreOrder
	profile   *models.CMSProfile
	messages  []models.ContactMessage
}

func NewMemory() *Memory {
	return &Memory{
		products:  make(map[string]models.Product),
		preorders: make(map[string]models.PreOrder),
	}
}

func (m *Memory) Mode() string               { return ModeMemory }
func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }

func (m *Memory) CreateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return fmt.Errorf("product %s: %w", p.ID, ErrConflict)
	}
	m.products[p.ID] = copyProduct(p)
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return copyProduct(p), nil
}

func (m *Memory) ListProducts(_ context.Context, f ProductFilter) ([]models.Product, error) {
	m.mu.RLock()
	items := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if !f.After.Before(p.CreatedAt, p.ID) {
			continue
		}
		items = append(items, copyProduct(p))
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return newerFirst(items[i].CreatedAt, items[i].ID, items[j].CreatedAt, items[j].ID)
	})
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (m *Memory) UpdateProduct(_ context.Context, p models.Product, replaceFields bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	next := copyProduct(p)
	next.TotalPreOrder = cur.TotalPreOrder
	next.CreatedAt = cur.CreatedAt
	if !replaceFields {
		next.AdditionalFields = cur.AdditionalFields
	}
	m.products[p.ID] = next
	return nil
}

func (m *Memory) SetProductStatus(_ context.Context, id, status string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	m.products[id] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	for oid, o := range m.preorders {
		if o.ProductID == id {
			delete(m.preorders, oid)
		}
	}
	return nil
}

func (m *Memory) ExplainProductList(context.Context, string) (any, error) {
	return map[string]any{"mode": ModeMemory, "note": "no SQL plan available"}, nil
}

func (m *Memory) CreatePreOrder(_ context.Context, o models.PreOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[o.ProductID]
	if !ok {
		return fmt.Errorf("product %s: %w", o.ProductID, ErrNotFound)
	}
	if _, ok := m.preorders[o.ID]; ok {
		return fmt.Errorf("pre-order %s: %w", o.ID, ErrConflict)
	}
	o.ProductName = ""
	o.ProductFields = nil
	o.CustomFields = append(models.CustomFields(nil), o.CustomFields...)
	m.preorders[o.ID] = o
	p.TotalPreOrder += o.Quantity
	m.products[p.ID] = p
	return nil
}

func (m *Memory) GetPreOrder(_ context.Context, id string) (models.PreOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.preorders[id]
	if !ok {
		return models.PreOrder{}, ErrNotFound
	}
	return m.withProduct(o), nil
}

func (m *Memory) ListPreOrders(_ context.Context, f PreOrderFilter) ([]models.PreOrder, error) {
	m.mu.RLock()
	items := make([]models.PreOrder, 0)
	for _, o := range m.preorders {
		if f.ProductID != "" && o.ProductID != f.ProductID {
			continue
		}
		if !f.After.Before(o.CreatedAt, o.ID) {
			continue
		}
		items = append(items, m.withProduct(o))
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return newerFirst(items[i].CreatedAt, items[i].ID, items[j].CreatedAt, items[j].ID)
	})
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (m *Memory) DeletePreOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.preorders[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.preorders, id)
	if p, ok := m.products[o.ProductID]; ok {
		total := 0
		for _, other := range m.preorders {
			if other.ProductID == p.ID {
				total += other.Quantity
			}
		}
		p.TotalPreOrder = total
		m.products[p.ID] = p
	}
	return nil
}

func (m *Memory) Totals(context.Context) (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := Totals{Orders: len(m.preorders), Products: len(m.products)}
	for _, o := range m.preorders {
		t.Quantity += o.Quantity
	}
	return t, nil
}

func (m *Memory) GetCMSProfile(context.Context) (models.CMSProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return models.CMSProfile{}, ErrNotFound
	}
	return copyProfile(*m.profile), nil
}

func (m *Memory) SaveCMSProfile(_ context.Context, p models.CMSProfile) error {
	cp := copyProfile(p)
	m.mu.Lock()
	m.profile = &cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) UpdateCMSProfile(_ context.Context, fn func(models.CMSProfile, bool) (models.CMSProfile, error)) (models.CMSProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cur models.CMSProfile
	found := m.profile != nil
	if found {
		cur = copyProfile(*m.profile)
	}
	next, err := fn(cur, found)
	if err != nil {
		return models.CMSProfile{}, err
	}
	cp := copyProfile(next)
	m.profile = &cp
	return copyProfile(next), nil
}

func (m *Memory) CreateContactMessage(_ context.Context, msg models.ContactMessage) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListContactMessages(_ context.Context, limit int) ([]models.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ContactMessage, 0, len(m.messages))
	for i := len(m.messages) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.messages[i])
	}
	return out, nil
}

// withProduct joins product name and fields. Caller holds mu.
func (m *Memory) withProduct(o models.PreOrder) models.PreOrder {
	o.CustomFields = append(models.CustomFields(nil), o.CustomFields...)
	if p, ok := m.products[o.ProductID]; ok {
		o.ProductName = p.Name
		o.ProductFields = append([]models.AdditionalField(nil), p.AdditionalFields...)
	}
	return o
}

func newerFirst(ti time.Time, idi string, tj time.Time, idj string) bool {
	if ti.Equal(tj) {
		return idi > idj
	}
	return ti.After(tj)
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	p.AdditionalFields = append([]models.AdditionalField(nil), p.AdditionalFields...)
	if p.ValidUntil != nil {
		v := *p.ValidUntil
		p.ValidUntil = &v
	}
	return p
}

func copyProfile(p models.CMSProfile) models.CMSProfile {
	p.Hero.Images = append([]string(nil), p.Hero.Images...)
	p.About.Items = append([]models.AboutItem(nil), p.About.Items...)
	return p
}
