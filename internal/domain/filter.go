package domain

import (
	"fmt"
	"strings"
)

// Availability 库存可用性三态过滤条件
type Availability string

const (
	AvailabilityAll        Availability = "all"
	AvailabilityInStock    Availability = "inStock"
	AvailabilityOutOfStock Availability = "outOfStock"
)

// ParseAvailability 解析可用性过滤条件，兼容 all/in/out 简写
func ParseAvailability(s string) (Availability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AvailabilityAll, nil
	case "in", "instock":
		return AvailabilityInStock, nil
	case "out", "outofstock":
		return AvailabilityOutOfStock, nil
	default:
		return "", fmt.Errorf("unknown availability %q", s)
	}
}

// InStock 将三态折叠为发送给服务端的可选布尔值
func (a Availability) InStock() *bool {
	var v bool
	switch a {
	case AvailabilityInStock:
		v = true
	case AvailabilityOutOfStock:
		v = false
	default:
		return nil
	}
	return &v
}

// Criteria 商品过滤条件
type Criteria struct {
	Name         string       `json:"name"`
	Categories   []string     `json:"categories"`   // 为空表示不限制分类
	Availability Availability `json:"availability"` // 零值按 all 处理
}

// HasCategory 判断分类是否已选中
func (c Criteria) HasCategory(category string) bool {
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// Equal 比较两组过滤条件，分类按集合比较，与选择顺序无关
func (c Criteria) Equal(o Criteria) bool {
	if c.Name != o.Name || c.availability() != o.availability() {
		return false
	}
	return sameSet(c.Categories, o.Categories)
}

func sameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
		other[v] = struct{}{}
	}
	return len(set) == len(other)
}

func (c Criteria) availability() Availability {
	if c.Availability == "" {
		return AvailabilityAll
	}
	return c.Availability
}

// ProductQuery 商品查询请求，对应服务端 GET /products
type ProductQuery struct {
	Name       string
	Categories []string
	InStock    *bool
	Page       int // 从 0 开始
	Size       int
}

// Query 根据过滤条件与分页游标构造查询
func (c Criteria) Query(page, size int) ProductQuery {
	cats := make([]string, len(c.Categories))
	copy(cats, c.Categories)
	return ProductQuery{
		Name:       c.Name,
		Categories: cats,
		InStock:    c.availability().InStock(),
		Page:       page,
		Size:       size,
	}
}
