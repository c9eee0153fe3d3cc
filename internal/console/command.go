package console

import "github.com/MorseWayne/stock_console/internal/domain"

// Command 用户对过滤状态的操作，由控制器统一消费
type Command interface {
	// apply 基于当前过滤状态和已展示的视图计算新的过滤状态
	apply(f FilterState, v View) (FilterState, error)
}

// SetName 设置名称过滤
type SetName struct{ Name string }

// ToggleCategory 切换某个分类
type ToggleCategory struct{ Category string }

// SetCategories 替换分类集合
type SetCategories struct{ Categories []string }

// SetAvailability 设置可用性过滤
type SetAvailability struct{ Availability domain.Availability }

// SetPage 跳转到指定页（从 0 开始）
type SetPage struct{ Page int }

// NextPage 下一页，仅当上一次加载的是整页时允许
type NextPage struct{}

// PrevPage 上一页
type PrevPage struct{}

// ClearFilters 清空过滤条件
type ClearFilters struct{}

// Refresh 不改变过滤状态，仅重新加载
type Refresh struct{}

func (c SetName) apply(f FilterState, _ View) (FilterState, error) {
	return f.WithName(c.Name), nil
}

func (c ToggleCategory) apply(f FilterState, _ View) (FilterState, error) {
	return f.ToggleCategory(c.Category), nil
}

func (c SetCategories) apply(f FilterState, _ View) (FilterState, error) {
	return f.WithCategories(c.Categories), nil
}

func (c SetAvailability) apply(f FilterState, _ View) (FilterState, error) {
	return f.WithAvailability(c.Availability), nil
}

func (c SetPage) apply(f FilterState, _ View) (FilterState, error) {
	return f.WithPage(c.Page), nil
}

// 只依据与当前过滤状态一致的视图判断是否有下一页
func (NextPage) apply(f FilterState, v View) (FilterState, error) {
	if !v.Loaded || !v.HasNext || v.Page != f.Page || !v.Criteria.Equal(f.Criteria) {
		return f, ErrNoNextPage
	}
	return f.WithPage(f.Page + 1), nil
}

func (PrevPage) apply(f FilterState, _ View) (FilterState, error) {
	if f.Page == 0 {
		return f, ErrNoPrevPage
	}
	return f.WithPage(f.Page - 1), nil
}

func (ClearFilters) apply(f FilterState, _ View) (FilterState, error) {
	return f.Cleared(), nil
}

func (Refresh) apply(f FilterState, _ View) (FilterState, error) {
	return f, nil
}
