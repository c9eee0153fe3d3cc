package domain

// CategoryMetrics 单个分类的聚合指标
type CategoryMetrics struct {
	TotalStock int64   `json:"totalStock"`
	TotalValue float64 `json:"totalValue"`
	AvgPrice   float64 `json:"avgPrice"`
}

// Metrics 库存聚合指标快照
// 完全由库存服务计算，控制台只负责展示，从不在本地重新计算。
type Metrics struct {
	TotalStock int64                      `json:"totalStock"`
	TotalValue float64                    `json:"totalValue"`
	AvgPrice   float64                    `json:"avgPrice"`
	ByCategory map[string]CategoryMetrics `json:"byCategory"`
}
