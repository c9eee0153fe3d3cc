package service

import (
	"context"

	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/repo"
)

// failingProductRepository 所有操作都返回同一个错误
type failingProductRepository struct {
	err error
}

func (m *failingProductRepository) Create(context.Context, *domain.Product) error { return m.err }

func (m *failingProductRepository) GetByID(context.Context, int64) (*domain.Product, error) {
	return nil, m.err
}

func (m *failingProductRepository) Update(context.Context, *domain.Product) error { return m.err }

func (m *failingProductRepository) Delete(context.Context, int64) error { return m.err }

func (m *failingProductRepository) List(context.Context) ([]domain.Product, error) {
	return nil, m.err
}

var _ repo.ProductRepository = (*failingProductRepository)(nil)

// seededService 用内存仓储创建服务并写入商品
func seededService(products ...domain.Product) (ProductService, repo.ProductRepository) {
	r := repo.NewMemoryProductRepository()
	for i := range products {
		p := products[i]
		_ = r.Create(context.Background(), &p)
	}
	return NewProductService(r, nil), r
}

func item(name, category string, price float64, qty int) domain.Product {
	return domain.Product{Name: name, Category: category, UnitPrice: price, QuantityInStock: qty}
}
