// Package service 实现本地库存服务的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/logger"
	"github.com/MorseWayne/stock_console/internal/repo"
)

const (
	// DefaultRestockQuantity 补货请求未指定数量时使用的数量
	DefaultRestockQuantity = 10
	// MaxPageSize 单页最大商品数
	MaxPageSize = 100
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuery    = errors.New("invalid query")
)

// ProductService 定义商品业务逻辑接口
type ProductService interface {
	// 商品查询
	ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// 商品管理
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// 库存切换
	MarkOutOfStock(ctx context.Context, id int64) (*domain.Product, error)
	MarkInStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)

	// 库存指标
	Metrics(ctx context.Context) (*domain.Metrics, error)
}

// productInput 服务端校验规则
type productInput struct {
	Name            string  `validate:"required"`
	Category        string  `validate:"required"`
	UnitPrice       float64 `validate:"gte=0"`
	QuantityInStock int     `validate:"gte=0"`
	ExpirationDate  string  `validate:"omitempty,datetime=2006-01-02"`
}

// productService 实现 ProductService 接口
type productService struct {
	productRepo repo.ProductRepository
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewProductService 创建商品服务实例
func NewProductService(productRepo repo.ProductRepository, lg *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.OrNop(lg),
	}
}

// ListProducts 按条件过滤并分页：名称不区分大小写的子串匹配，分类任一匹配，按 ID 升序
func (s *productService) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	if q.Page < 0 {
		return nil, fmt.Errorf("%w: page must be >= 0", ErrInvalidQuery)
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		return nil, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidQuery, MaxPageSize)
	}

	all, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if matches(&p, q) {
			matched = append(matched, p)
		}
	}

	// 先按页数比较再相乘，超大页码不会溢出
	if q.Page >= (len(matched)+q.Size-1)/q.Size {
		return []domain.Product{}, nil
	}
	start := q.Page * q.Size
	end := min(start+q.Size, len(matched))
	return matched[start:end], nil
}

func matches(p *domain.Product, q domain.ProductQuery) bool {
	if name := strings.TrimSpace(q.Name); name != "" &&
		!strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
		return false
	}
	if len(q.Categories) > 0 {
		found := false
		for _, c := range q.Categories {
			if c == p.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.InStock != nil && p.InStock() != *q.InStock {
		return false
	}
	return true
}

// GetProduct 获取商品详情
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CreateProduct 创建商品，忽略请求中的 ID
func (s *productService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p, err := s.normalize(p)
	if err != nil {
		return nil, err
	}
	p.ID = nil

	if err := s.productRepo.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("product created", zap.Int64("product_id", *p.ID), zap.String("name", p.Name))
	return &p, nil
}

// UpdateProduct 整体替换商品，ID 以路径为准
func (s *productService) UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error) {
	p, err := s.normalize(p)
	if err != nil {
		return nil, err
	}
	p.ID = domain.Int64Ptr(id)

	if err := s.productRepo.Update(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &p, nil
}

// DeleteProduct 删除商品
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// MarkOutOfStock 将库存清零
func (s *productService) MarkOutOfStock(ctx context.Context, id int64) (*domain.Product, error) {
	return s.setQuantity(ctx, id, 0)
}

// MarkInStock 将库存设置为指定数量
func (s *productService) MarkInStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be >= 0", ErrInvalidProduct)
	}
	return s.setQuantity(ctx, id, quantity)
}

func (s *productService) setQuantity(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.QuantityInStock = quantity
	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	s.logger.Info("stock updated", zap.Int64("product_id", id), zap.Int("quantity", quantity))
	return product, nil
}

// Metrics 计算总体和各分类的库存指标：总库存、总价值（单价×数量之和）、平均单价
func (s *productService) Metrics(ctx context.Context) (*domain.Metrics, error) {
	all, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	overall := &accumulator{}
	byCategory := make(map[string]*accumulator)
	for i := range all {
		p := &all[i]
		overall.add(p)
		acc, ok := byCategory[p.Category]
		if !ok {
			acc = &accumulator{}
			byCategory[p.Category] = acc
		}
		acc.add(p)
	}

	m := &domain.Metrics{ByCategory: make(map[string]domain.CategoryMetrics, len(byCategory))}
	m.TotalStock, m.TotalValue, m.AvgPrice = overall.result()

	for c, acc := range byCategory {
		var cm domain.CategoryMetrics
		cm.TotalStock, cm.TotalValue, cm.AvgPrice = acc.result()
		m.ByCategory[c] = cm
	}
	return m, nil
}

// accumulator 以十进制累加金额
type accumulator struct {
	count      int64
	stock      int64
	value      decimal.Decimal
	priceTotal decimal.Decimal
}

func (a *accumulator) add(p *domain.Product) {
	price := decimal.NewFromFloat(p.UnitPrice)
	a.count++
	a.stock += int64(p.QuantityInStock)
	a.value = a.value.Add(price.Mul(decimal.NewFromInt(int64(p.QuantityInStock))))
	a.priceTotal = a.priceTotal.Add(price)
}

func (a *accumulator) result() (stock int64, value, avgPrice float64) {
	value = a.value.Round(2).InexactFloat64()
	if a.count > 0 {
		avgPrice = a.priceTotal.Div(decimal.NewFromInt(a.count)).Round(2).InexactFloat64()
	}
	return a.stock, value, avgPrice
}

// normalize 去除首尾空白并校验
func (s *productService) normalize(p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	in := productInput{
		Name:            p.Name,
		Category:        p.Category,
		UnitPrice:       p.UnitPrice,
		QuantityInStock: p.QuantityInStock,
	}
	if p.ExpirationDate != nil {
		in.ExpirationDate = strings.TrimSpace(*p.ExpirationDate)
		p.ExpirationDate = domain.StringPtr(in.ExpirationDate)
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return p, fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(fields, ", "))
		}
		return p, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return p, nil
}
