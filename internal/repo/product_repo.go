// Package repo 实现本地库存服务的数据访问层。
package repo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/MorseWayne/stock_console/internal/domain"
)

// ErrNotFound 商品不存在
var ErrNotFound = errors.New("product not found")

// ProductRepository 定义商品数据访问接口
type ProductRepository interface {
	// Create 保存新商品并回填 ID
	Create(ctx context.Context, product *domain.Product) error
	// GetByID 商品不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	// List 按 ID 升序返回全部商品
	List(ctx context.Context) ([]domain.Product, error)
}

// memoryProductRepo 内存实现，用于开发和测试
type memoryProductRepo struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	nextID   int64
}

// NewMemoryProductRepository 创建内存商品仓储
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepo{
		products: make(map[int64]domain.Product),
		nextID:   1,
	}
}

func (r *memoryProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	product.ID = domain.Int64Ptr(id)
	r.products[id] = copyProduct(*product)
	return nil
}

func (r *memoryProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	out := copyProduct(p)
	return &out, nil
}

func (r *memoryProductRepo) Update(_ context.Context, product *domain.Product) error {
	if !product.HasID() {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := *product.ID
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	r.products[id] = copyProduct(*product)
	return nil
}

func (r *memoryProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

// copyProduct 深拷贝指针字段，避免调用方修改仓储内部数据
func copyProduct(p domain.Product) domain.Product {
	if p.ID != nil {
		p.ID = domain.Int64Ptr(*p.ID)
	}
	if p.ExpirationDate != nil {
		d := *p.ExpirationDate
		p.ExpirationDate = &d
	}
	return p
}
