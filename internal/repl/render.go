package repl

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MorseWayne/stock_console/internal/console"
	"github.com/MorseWayne/stock_console/internal/domain"
)

// Renderer 将控制器视图渲染为文本
type Renderer struct {
	w   io.Writer
	now func() time.Time
}

// NewRenderer 创建渲染器，now 为空时使用 time.Now
func NewRenderer(w io.Writer, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{w: w, now: now}
}

// Products 渲染当前商品页，行号从 1 开始
func (r *Renderer) Products(v console.View) error {
	if !v.Loaded {
		_, err := fmt.Fprintln(r.w, "no data loaded yet, run `list`")
		return err
	}
	if len(v.Products) == 0 {
		_, err := fmt.Fprintln(r.w, "no products match the current filters")
		return err
	}

	now := r.now()
	t := newTable("#", "ID", "NAME", "CATEGORY", "PRICE", "QTY", "STOCK", "EXPIRES").alignRight(0, 1, 4, 5)
	for i := range v.Products {
		p := &v.Products[i]
		t.add(
			strconv.Itoa(i+1),
			formatID(p.ID),
			p.Name,
			p.Category,
			formatMoney(p.UnitPrice),
			strconv.Itoa(p.QuantityInStock),
			stockLabel(p),
			expiryLabel(p, now),
		)
	}
	return t.render(r.w)
}

// Metrics 渲染库存指标：先按分类，最后是总计
func (r *Renderer) Metrics(m *domain.Metrics) error {
	if m == nil {
		_, err := fmt.Fprintln(r.w, "no metrics loaded yet")
		return err
	}

	categories := make([]string, 0, len(m.ByCategory))
	for c := range m.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	t := newTable("CATEGORY", "TOTAL STOCK", "TOTAL VALUE", "AVG PRICE").alignRight(1, 2, 3)
	for _, c := range categories {
		cm := m.ByCategory[c]
		t.add(c, strconv.FormatInt(cm.TotalStock, 10), formatMoney(cm.TotalValue), formatMoney(cm.AvgPrice))
	}
	t.add("Overall", strconv.FormatInt(m.TotalStock, 10), formatMoney(m.TotalValue), formatMoney(m.AvgPrice))
	return t.render(r.w)
}

// Status 渲染状态行：页码、过滤条件和加载计数
func (r *Renderer) Status(f console.FilterState, v console.View, s console.Stats) error {
	parts := []string{fmt.Sprintf("page %d", f.Page+1)}
	if v.Loaded && v.Page == f.Page {
		if v.HasNext {
			parts = append(parts, "more pages")
		} else {
			parts = append(parts, "last page")
		}
	}
	parts = append(parts, "filters: "+describeCriteria(f.Criteria))
	parts = append(parts, fmt.Sprintf("reloads issued=%d applied=%d stale=%d failed=%d", s.Issued, s.Applied, s.Stale, s.Failed))
	_, err := fmt.Fprintln(r.w, strings.Join(parts, " | "))
	return err
}

// Categories 渲染当前页可选的分类，已选中的标记 *
func (r *Renderer) Categories(v console.View, c domain.Criteria) error {
	if len(v.Categories) == 0 && len(c.Categories) == 0 {
		_, err := fmt.Fprintln(r.w, "no categories on this page")
		return err
	}
	seen := make(map[string]bool, len(v.Categories))
	labels := make([]string, 0, len(v.Categories)+len(c.Categories))
	for _, cat := range v.Categories {
		seen[cat] = true
		labels = append(labels, categoryLabel(cat, c.HasCategory(cat)))
	}
	// 已选中但当前页没有的分类也要展示，否则无法取消
	for _, cat := range c.Categories {
		if !seen[cat] {
			labels = append(labels, categoryLabel(cat, true))
		}
	}
	_, err := fmt.Fprintln(r.w, "categories: "+strings.Join(labels, ", "))
	return err
}

func categoryLabel(cat string, selected bool) string {
	if selected {
		return "*" + cat
	}
	return cat
}

func describeCriteria(c domain.Criteria) string {
	var parts []string
	if c.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", c.Name))
	}
	if len(c.Categories) > 0 {
		parts = append(parts, "categories="+strings.Join(c.Categories, ","))
	}
	if c.Availability != "" && c.Availability != domain.AvailabilityAll {
		parts = append(parts, "stock="+string(c.Availability))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func stockLabel(p *domain.Product) string {
	if !p.InStock() {
		return "out"
	}
	return string(p.StockLevel())
}

func expiryLabel(p *domain.Product, now time.Time) string {
	status := p.ExpiryStatus(now)
	if status == domain.ExpiryNone {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", *p.ExpirationDate, status)
}
