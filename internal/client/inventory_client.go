// Package client 封装远程库存服务的 HTTP 接口。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/domain"
)

const (
	// HeaderRequestID 每个请求携带的请求 ID 头
	HeaderRequestID = "X-Request-ID"

	defaultTimeout = 5 * time.Second
	maxErrorBody   = 512
)

// InventoryClient 远程库存服务客户端
type InventoryClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option 客户端可选配置
type Option func(*InventoryClient)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *InventoryClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout 设置单个请求的超时时间
func WithTimeout(d time.Duration) Option {
	return func(c *InventoryClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger 设置日志器
func WithLogger(lg *zap.Logger) Option {
	return func(c *InventoryClient) {
		if lg != nil {
			c.logger = lg
		}
	}
}

// NewInventoryClient 创建库存服务客户端，baseURL 形如 http://localhost:9090
func NewInventoryClient(baseURL string, opts ...Option) (*InventoryClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse inventory base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("inventory base url must be absolute: %q", baseURL)
	}

	c := &InventoryClient{
		baseURL: u,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EncodeQuery 将查询编码为 URL 参数
// 多个分类使用重复键编码（category=a&category=b），与服务端解析方式保持一致。
func EncodeQuery(q domain.ProductQuery) url.Values {
	v := url.Values{}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	for _, cat := range q.Categories {
		v.Add("category", cat)
	}
	if q.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*q.InStock))
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	return v
}

// ListProducts 按过滤条件分页查询商品
func (c *InventoryClient) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", EncodeQuery(q), nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// CreateProduct 创建商品，请求体不携带 ID
func (c *InventoryClient) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = nil
	var created domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, p, &created); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &created, nil
}

// UpdateProduct 更新商品
func (c *InventoryClient) UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error) {
	p.ID = &id
	var updated domain.Product
	if err := c.do(ctx, http.MethodPut, productPath(id), nil, p, &updated); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &updated, nil
}

// DeleteProduct 删除商品
func (c *InventoryClient) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// MarkOutOfStock 将商品库存置为 0
func (c *InventoryClient) MarkOutOfStock(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPost, productPath(id)+"/outofstock", nil, nil, &p); err != nil {
		return nil, fmt.Errorf("failed to mark product %d out of stock: %w", id, err)
	}
	return &p, nil
}

// MarkInStock 补货，将商品库存设置为 quantity
func (c *InventoryClient) MarkInStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	params := url.Values{}
	params.Set("quantity", strconv.Itoa(quantity))

	var p domain.Product
	if err := c.do(ctx, http.MethodPut, productPath(id)+"/instock", params, nil, &p); err != nil {
		return nil, fmt.Errorf("failed to restock product %d: %w", id, err)
	}
	return &p, nil
}

// FetchMetrics 获取库存聚合指标
func (c *InventoryClient) FetchMetrics(ctx context.Context) (*domain.Metrics, error) {
	var m domain.Metrics
	if err := c.do(ctx, http.MethodGet, "/products/metrics", nil, nil, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	if m.ByCategory == nil {
		m.ByCategory = map[string]domain.CategoryMetrics{}
	}
	return &m, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

// do 发送请求并解码 JSON 响应，非 2xx 响应返回 *APIError
func (c *InventoryClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("inventory request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("inventory request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
