// Package domain 定义库存控制台与库存服务共享的领域模型。
// 领域模型独立于外部依赖（HTTP、Redis 等），只包含数据结构和纯业务规则。
package domain

import (
	"math"
	"time"
)

// DateLayout 过期日期的线上格式
const DateLayout = "2006-01-02"

// StockLevel 定义库存水位
type StockLevel string

const (
	StockLevelLow    StockLevel = "low"    // 少于 5 件
	StockLevelMedium StockLevel = "medium" // 5 到 10 件
	StockLevelOK     StockLevel = "ok"     // 多于 10 件
)

// ExpiryStatus 定义过期状态
type ExpiryStatus string

const (
	ExpiryNone     ExpiryStatus = "none"     // 无过期日期
	ExpiryExpired  ExpiryStatus = "expired"  // 已过期
	ExpiryCritical ExpiryStatus = "critical" // 7 天内过期
	ExpiryWarning  ExpiryStatus = "warning"  // 14 天内过期
	ExpiryFresh    ExpiryStatus = "fresh"    // 14 天以上
)

// Product 表示商品领域模型
// ID 在持久化之前为空，由库存服务分配。
type Product struct {
	ID              *int64  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	UnitPrice       float64 `json:"unitPrice"`
	QuantityInStock int     `json:"quantityInStock"`
	ExpirationDate  *string `json:"expirationDate,omitempty"`
}

// HasID 判断商品是否已持久化
func (p *Product) HasID() bool {
	return p.ID != nil
}

// InStock 判断商品是否有库存
func (p *Product) InStock() bool {
	return p.QuantityInStock > 0
}

// StockLevel 返回库存水位
func (p *Product) StockLevel() StockLevel {
	switch {
	case p.QuantityInStock < 5:
		return StockLevelLow
	case p.QuantityInStock <= 10:
		return StockLevelMedium
	default:
		return StockLevelOK
	}
}

// ExpiryStatus 根据剩余天数返回过期状态，日期无法解析时视为无过期日期
func (p *Product) ExpiryStatus(now time.Time) ExpiryStatus {
	if p.ExpirationDate == nil || *p.ExpirationDate == "" {
		return ExpiryNone
	}
	exp, err := time.ParseInLocation(DateLayout, *p.ExpirationDate, now.Location())
	if err != nil {
		return ExpiryNone
	}

	daysLeft := math.Ceil(exp.Sub(now).Hours() / 24)
	switch {
	case daysLeft < 0:
		return ExpiryExpired
	case daysLeft <= 7:
		return ExpiryCritical
	case daysLeft <= 14:
		return ExpiryWarning
	default:
		return ExpiryFresh
	}
}

// Int64Ptr 返回 int64 指针，便于构造 Product.ID
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr 返回字符串指针，空字符串返回 nil
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
