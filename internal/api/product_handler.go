// Package api 提供本地库存服务的 HTTP API 处理器实现。
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/logger"
	"github.com/MorseWayne/stock_console/internal/middleware"
	"github.com/MorseWayne/stock_console/internal/resp"
	"github.com/MorseWayne/stock_console/internal/service"
)

// defaultPageSize 未指定 size 时的页大小
const defaultPageSize = 10

// ProductHandler 商品相关的 HTTP 处理器
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(productService service.ProductService, lg *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger.OrNop(lg),
	}
}

// Register 在路由器上注册商品路由
func (h *ProductHandler) Register(r *mux.Router) {
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/products/metrics", h.GetMetrics).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", h.UpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/products/{id:[0-9]+}", h.DeleteProduct).Methods(http.MethodDelete)
	r.HandleFunc("/products/{id:[0-9]+}/outofstock", h.MarkOutOfStock).Methods(http.MethodPost)
	r.HandleFunc("/products/{id:[0-9]+}/instock", h.MarkInStock).Methods(http.MethodPut)
}

// ListProducts 查询商品
// GET /products?name=&category=&category=&inStock=&page=&size=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	products, err := h.productService.ListProducts(r.Context(), q)
	if err != nil {
		h.writeError(w, r, "list products failed", err)
		return
	}
	resp.OK(w, products)
}

// GetProduct 获取商品详情
// GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get product failed", err)
		return
	}
	resp.OK(w, product)
}

// CreateProduct 创建商品
// POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.productService.CreateProduct(r.Context(), p)
	if err != nil {
		h.writeError(w, r, "create product failed", err)
		return
	}
	resp.Created(w, product)
}

// UpdateProduct 更新商品
// PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	p, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.productService.UpdateProduct(r.Context(), id, p)
	if err != nil {
		h.writeError(w, r, "update product failed", err)
		return
	}
	resp.OK(w, product)
}

// DeleteProduct 删除商品
// DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, "delete product failed", err)
		return
	}
	resp.NoContent(w)
}

// MarkOutOfStock 标记缺货
// POST /products/{id}/outofstock
func (h *ProductHandler) MarkOutOfStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.productService.MarkOutOfStock(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "mark out of stock failed", err)
		return
	}
	resp.OK(w, product)
}

// MarkInStock 补货，quantity 缺省为 10
// PUT /products/{id}/instock?quantity=N
func (h *ProductHandler) MarkInStock(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	quantity := service.DefaultRestockQuantity
	if raw := strings.TrimSpace(r.URL.Query().Get("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "quantity must be a non-negative integer", reqID, "")
			return
		}
		quantity = n
	}

	product, err := h.productService.MarkInStock(r.Context(), id, quantity)
	if err != nil {
		h.writeError(w, r, "mark in stock failed", err)
		return
	}
	resp.OK(w, product)
}

// GetMetrics 库存指标
// GET /products/metrics
func (h *ProductHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.productService.Metrics(r.Context())
	if err != nil {
		h.writeError(w, r, "get metrics failed", err)
		return
	}
	resp.OK(w, m)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		reqID := middleware.RequestIDFromContext(r.Context())
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (domain.Product, bool) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		reqID := middleware.RequestIDFromContext(r.Context())
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return p, false
	}
	return p, true
}

// writeError 将服务层错误映射为 HTTP 状态码
func (h *ProductHandler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
	case errors.Is(err, service.ErrInvalidProduct), errors.Is(err, service.ErrInvalidQuery):
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
	default:
		h.logger.Error(msg, zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, msg, reqID, "")
	}
}

// parseProductQuery 解析查询参数，分类使用重复键 category=a&category=b
func parseProductQuery(v url.Values) (domain.ProductQuery, error) {
	q := domain.ProductQuery{
		Name: strings.TrimSpace(v.Get("name")),
		Size: defaultPageSize,
	}
	for _, c := range v["category"] {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	if raw := v.Get("inStock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errors.New("inStock must be true or false")
		}
		q.InStock = &b
	}
	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("page must be an integer")
		}
		q.Page = n
	}
	if raw := v.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("size must be an integer")
		}
		q.Size = n
	}
	return q, nil
}
