// Package console 实现库存控制台的核心状态机：过滤状态、分类索引、视图控制器与库存变更协调器。
package console

import (
	"strings"

	"github.com/MorseWayne/stock_console/internal/domain"
)

// FilterState 当前过滤条件与页码（从 0 开始）
// 值类型，所有更新都返回新值。
type FilterState struct {
	Criteria domain.Criteria
	Page     int
}

// NewFilterState 返回清空后的过滤状态
func NewFilterState() FilterState {
	return FilterState{Criteria: domain.Criteria{Availability: domain.AvailabilityAll}}
}

// WithName 设置名称子串
func (f FilterState) WithName(name string) FilterState {
	next := f.clone()
	next.Criteria.Name = strings.TrimSpace(name)
	return settle(f, next)
}

// ToggleCategory 切换分类的选中状态
func (f FilterState) ToggleCategory(category string) FilterState {
	category = strings.TrimSpace(category)
	if category == "" {
		return f
	}

	next := f.clone()
	if f.Criteria.HasCategory(category) {
		cats := next.Criteria.Categories[:0]
		for _, c := range next.Criteria.Categories {
			if c != category {
				cats = append(cats, c)
			}
		}
		next.Criteria.Categories = cats
	} else {
		next.Criteria.Categories = append(next.Criteria.Categories, category)
	}
	return settle(f, next)
}

// WithCategories 整体替换分类集合，去重并忽略空值
func (f FilterState) WithCategories(categories []string) FilterState {
	next := f.clone()
	next.Criteria.Categories = nil
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		next.Criteria.Categories = append(next.Criteria.Categories, c)
	}
	return settle(f, next)
}

// WithAvailability 设置库存可用性过滤
func (f FilterState) WithAvailability(a domain.Availability) FilterState {
	next := f.clone()
	next.Criteria.Availability = a
	return settle(f, next)
}

// WithPage 设置页码，负数按 0 处理
func (f FilterState) WithPage(page int) FilterState {
	next := f.clone()
	next.Page = page
	return settle(f, next)
}

// Cleared 清空全部过滤条件并回到第一页
func (f FilterState) Cleared() FilterState {
	return NewFilterState()
}

// Query 构造发送给库存服务的查询
func (f FilterState) Query(size int) domain.ProductQuery {
	return f.Criteria.Query(f.Page, size)
}

func (f FilterState) clone() FilterState {
	next := f
	if f.Criteria.Categories != nil {
		next.Criteria.Categories = append([]string(nil), f.Criteria.Categories...)
	}
	return next
}

// settle 维护过滤状态的不变式：过滤条件变化时页码回到 0，页码不小于 0。
// 控制器对每个命令的结果都会再调用一次，不依赖调用方自行重置页码。
func settle(prev, next FilterState) FilterState {
	if next.Criteria.Availability == "" {
		next.Criteria.Availability = domain.AvailabilityAll
	}
	if !prev.Criteria.Equal(next.Criteria) {
		next.Page = 0
	}
	if next.Page < 0 {
		next.Page = 0
	}
	return next
}
