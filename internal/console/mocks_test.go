package console

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/MorseWayne/stock_console/internal/domain"
)

// fakeInventory 内存版库存服务，支持按名称挂起查询以模拟乱序返回
type fakeInventory struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64

	listErr    error
	metricsErr error
	deleteErr  error
	stockErr   error

	listCalls    int
	metricsCalls int
	deleteCalls  int
	outCalls     int
	inCalls      int
	lastRestock  int
	createCalls  int
	updateCalls  int

	gates   map[string]chan struct{} // 名称 -> 放行信号
	started chan string              // 被挂起的查询开始时写入名称
}

func newFakeInventory(products ...domain.Product) *fakeInventory {
	f := &fakeInventory{
		products: make(map[int64]*domain.Product),
		nextID:   1,
		gates:    make(map[string]chan struct{}),
		started:  make(chan string, 64),
	}
	for _, p := range products {
		f.add(p)
	}
	return f
}

func (f *fakeInventory) add(p domain.Product) int64 {
	id := f.nextID
	f.nextID++
	p.ID = domain.Int64Ptr(id)
	f.products[id] = &p
	return id
}

// hold 挂起名称为 name 的查询，返回放行函数
func (f *fakeInventory) hold(name string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[name] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeInventory) counts() (list, metrics int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.metricsCalls
}

func (f *fakeInventory) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.gates[q.Name]
	f.mu.Unlock()

	if gate != nil {
		f.started <- q.Name
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	ids := make([]int64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matched []domain.Product
	for _, id := range ids {
		p := f.products[id]
		if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
			continue
		}
		if len(q.Categories) > 0 && !contains(q.Categories, p.Category) {
			continue
		}
		if q.InStock != nil && p.InStock() != *q.InStock {
			continue
		}
		matched = append(matched, *p)
	}

	start := q.Page * q.Size
	if start >= len(matched) {
		return []domain.Product{}, nil
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (f *fakeInventory) FetchMetrics(ctx context.Context) (*domain.Metrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricsCalls++
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}

	m := &domain.Metrics{ByCategory: map[string]domain.CategoryMetrics{}}
	for _, p := range f.products {
		m.TotalStock += int64(p.QuantityInStock)
	}
	return m, nil
}

func (f *fakeInventory) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	id := f.add(p)
	out := *f.products[id]
	return &out, nil
}

func (f *fakeInventory) UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if _, ok := f.products[id]; !ok {
		return nil, errNotFound
	}
	p.ID = domain.Int64Ptr(id)
	f.products[id] = &p
	out := p
	return &out, nil
}

func (f *fakeInventory) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.products[id]; !ok {
		return errNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeInventory) MarkOutOfStock(ctx context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outCalls++
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errNotFound
	}
	p.QuantityInStock = 0
	out := *p
	return &out, nil
}

func (f *fakeInventory) MarkInStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inCalls++
	f.lastRestock = quantity
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errNotFound
	}
	p.QuantityInStock = quantity
	out := *p
	return &out, nil
}

var errNotFound = errors.New("product not found")

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func product(name, category string, qty int) domain.Product {
	return domain.Product{Name: name, Category: category, UnitPrice: 1, QuantityInStock: qty}
}
