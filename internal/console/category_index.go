package console

import "github.com/MorseWayne/stock_console/internal/domain"

// Categories 从当前页商品中提取去重后的分类，保持首次出现的顺序。
// 结果只反映已加载的这一页，不是全局分类列表；翻页或过滤后选项会随之增减。
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	cats := make([]string, 0, len(products))
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	return cats
}
