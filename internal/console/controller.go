package console

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/logger"
)

// DefaultPageSize 默认每页商品数
const DefaultPageSize = 10

// ProductSource 视图控制器依赖的库存服务查询接口
type ProductSource interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error)
	FetchMetrics(ctx context.Context) (*domain.Metrics, error)
}

// View 当前展示的商品页与指标快照
type View struct {
	Products   []domain.Product
	Categories []string
	Metrics    *domain.Metrics
	Criteria   domain.Criteria // 该页对应的过滤条件
	Page       int             // 该页对应的页码
	HasNext    bool            // 上一页是否为整页
	Seq        uint64          // 产生该视图的加载序号
	Loaded     bool
}

// Stats 加载计数
type Stats struct {
	Issued  uint64 // 已发起的加载
	Applied uint64 // 结果被采用的加载
	Stale   uint64 // 因被后续加载取代而丢弃的结果
	Failed  uint64 // 失败且仍为最新的加载
}

// Controller 库存视图控制器
// 过滤状态和展示视图只由控制器修改：用户命令修改过滤状态，加载结果修改视图。
// 每次加载分配递增序号，只有序号仍为最新的结果才会被采用。
type Controller struct {
	source   ProductSource
	pageSize int
	logger   *zap.Logger

	mu     sync.Mutex
	filter FilterState
	view   View
	seq    uint64 // 最近一次发起的加载序号
	stats  Stats
}

// NewController 创建视图控制器，pageSize 非正数时使用默认值
func NewController(source ProductSource, pageSize int, lg *zap.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{
		source:   source,
		pageSize: pageSize,
		logger:   logger.OrNop(lg),
		filter:   NewFilterState(),
	}
}

// PageSize 返回固定的页大小
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Filter 返回当前过滤状态的副本
func (c *Controller) Filter() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.clone()
}

// View 返回当前视图的副本
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Stats 返回加载计数
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Dispatch 应用用户命令并重新加载。
// 命令被拒绝时（如没有下一页）不发送任何请求。
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	next, err := cmd.apply(c.filter.clone(), c.view)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.filter = settle(c.filter, next)
	seq, snapshot := c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, seq, snapshot)
}

// Reload 按当前过滤状态重新加载商品页和指标
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	seq, snapshot := c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, seq, snapshot)
}

// beginLocked 分配加载序号并记录本次加载对应的过滤状态，调用方需持有锁
func (c *Controller) beginLocked() (uint64, FilterState) {
	c.seq++
	c.stats.Issued++
	return c.seq, c.filter.clone()
}

// run 并发请求商品和指标，两者都成功且序号仍为最新时整体替换视图
func (c *Controller) run(ctx context.Context, seq uint64, f FilterState) error {
	q := f.Query(c.pageSize)

	var (
		products []domain.Product
		metrics  *domain.Metrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.source.ListProducts(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = c.source.FetchMetrics(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.stats.Stale++
		c.logger.Debug("discarding stale reload",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq),
			zap.Bool("failed", err != nil),
		)
		return nil
	}
	if err != nil {
		c.stats.Failed++
		c.logger.Warn("reload failed, keeping previous view", zap.Uint64("seq", seq), zap.Error(err))
		return fmt.Errorf("%w: reload: %w", ErrRequestFailed, err)
	}

	c.view = View{
		Products:   products,
		Categories: Categories(products),
		Metrics:    metrics,
		Criteria:   f.Criteria,
		Page:       f.Page,
		HasNext:    len(products) == c.pageSize,
		Seq:        seq,
		Loaded:     true,
	}
	c.stats.Applied++
	c.logger.Debug("view updated",
		zap.Uint64("seq", seq),
		zap.Int("page", f.Page),
		zap.Int("products", len(products)),
		zap.Bool("has_next", c.view.HasNext),
	)
	return nil
}

func (v View) clone() View {
	out := v
	if v.Products != nil {
		out.Products = append([]domain.Product(nil), v.Products...)
	}
	if v.Categories != nil {
		out.Categories = append([]string(nil), v.Categories...)
	}
	if v.Criteria.Categories != nil {
		out.Criteria.Categories = append([]string(nil), v.Criteria.Categories...)
	}
	return out
}
