package repl

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/MorseWayne/stock_console/internal/domain"
)

// memInventory 会话测试用的内存库存服务
type memInventory struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	nextID   int64
	restocks []int
	listErr  error
}

func newMemInventory(products ...domain.Product) *memInventory {
	m := &memInventory{products: make(map[int64]domain.Product), nextID: 1}
	for _, p := range products {
		p.ID = domain.Int64Ptr(m.nextID)
		m.products[m.nextID] = p
		m.nextID++
	}
	return m
}

func (m *memInventory) ListProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	ids := make([]int64, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []domain.Product
	for _, id := range ids {
		p := m.products[id]
		if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
			continue
		}
		if len(q.Categories) > 0 {
			found := false
			for _, c := range q.Categories {
				found = found || c == p.Category
			}
			if !found {
				continue
			}
		}
		if q.InStock != nil && p.InStock() != *q.InStock {
			continue
		}
		out = append(out, p)
	}

	start := q.Page * q.Size
	if start >= len(out) {
		return []domain.Product{}, nil
	}
	end := start + q.Size
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *memInventory) FetchMetrics(context.Context) (*domain.Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics := &domain.Metrics{ByCategory: map[string]domain.CategoryMetrics{}}
	for _, p := range m.products {
		metrics.TotalStock += int64(p.QuantityInStock)
		metrics.TotalValue += p.UnitPrice * float64(p.QuantityInStock)
		cm := metrics.ByCategory[p.Category]
		cm.TotalStock += int64(p.QuantityInStock)
		cm.TotalValue += p.UnitPrice * float64(p.QuantityInStock)
		metrics.ByCategory[p.Category] = cm
	}
	return metrics, nil
}

func (m *memInventory) CreateProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = domain.Int64Ptr(m.nextID)
	m.products[m.nextID] = p
	m.nextID++
	return &p, nil
}

func (m *memInventory) UpdateProduct(_ context.Context, id int64, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return nil, errors.New("not found")
	}
	p.ID = domain.Int64Ptr(id)
	m.products[id] = p
	return &p, nil
}

func (m *memInventory) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return errors.New("not found")
	}
	delete(m.products, id)
	return nil
}

func (m *memInventory) MarkOutOfStock(_ context.Context, id int64) (*domain.Product, error) {
	return m.setQuantity(id, 0)
}

func (m *memInventory) MarkInStock(_ context.Context, id int64, quantity int) (*domain.Product, error) {
	m.mu.Lock()
	m.restocks = append(m.restocks, quantity)
	m.mu.Unlock()
	return m.setQuantity(id, quantity)
}

func (m *memInventory) setQuantity(id int64, qty int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	p.QuantityInStock = qty
	m.products[id] = p
	return &p, nil
}

func (m *memInventory) get(id int64) (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}
