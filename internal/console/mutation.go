package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/logger"
)

// StockService 库存变更协调器依赖的库存服务写接口
type StockService interface {
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	MarkOutOfStock(ctx context.Context, id int64) (*domain.Product, error)
	MarkInStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
}

// Reloader 变更成功后触发视图重新加载
type Reloader interface {
	Reload(ctx context.Context) error
}

// StockTarget 库存切换的目标状态
type StockTarget string

const (
	TargetOutOfStock StockTarget = "out of stock"
	TargetInStock    StockTarget = "in stock"
)

// Confirmation 库存切换的确认步骤
// 由 PrepareToggle 生成，展示目标状态；补货时还需要用户输入数量。
type Confirmation struct {
	ProductID       int64
	ProductName     string
	CurrentQuantity int
	Target          StockTarget
	NeedsQuantity   bool
}

// Prompt 返回展示给用户的确认提示
func (c Confirmation) Prompt() string {
	if c.NeedsQuantity {
		return fmt.Sprintf("Restock %q (currently out of stock): enter quantity", c.ProductName)
	}
	return fmt.Sprintf("Mark %q (quantity %d) as %s?", c.ProductName, c.CurrentQuantity, c.Target)
}

// Coordinator 库存变更协调器
// 只调用库存服务并在成功后触发重新加载，从不直接修改展示的视图。
type Coordinator struct {
	svc       StockService
	reloader  Reloader
	validator *FormValidator
	logger    *zap.Logger
}

// NewCoordinator 创建库存变更协调器
func NewCoordinator(svc StockService, reloader Reloader, lg *zap.Logger) *Coordinator {
	return &Coordinator{
		svc:       svc,
		reloader:  reloader,
		validator: NewFormValidator(),
		logger:    logger.OrNop(lg),
	}
}

// Delete 删除商品，成功后重新加载；失败时不重新加载
func (c *Coordinator) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeleteProduct(ctx, id); err != nil {
		c.logger.Warn("delete product failed", zap.Int64("product_id", id), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.logger.Info("product deleted", zap.Int64("product_id", id))
	return c.reload(ctx)
}

// PrepareToggle 生成库存切换的确认信息，目标总是当前状态的反面：
// 有库存的商品只能标记为缺货，缺货的商品只能补货。
func (c *Coordinator) PrepareToggle(p domain.Product) (Confirmation, error) {
	if !p.HasID() {
		return Confirmation{}, ErrMissingID
	}
	conf := Confirmation{
		ProductID:       *p.ID,
		ProductName:     p.Name,
		CurrentQuantity: p.QuantityInStock,
	}
	if p.InStock() {
		conf.Target = TargetOutOfStock
	} else {
		conf.Target = TargetInStock
		conf.NeedsQuantity = true
	}
	return conf, nil
}

// Confirm 提交已确认的库存切换。补货数量在发送请求前校验，非法输入不会发出请求。
func (c *Coordinator) Confirm(ctx context.Context, conf Confirmation, quantityInput string) error {
	switch conf.Target {
	case TargetOutOfStock:
		if _, err := c.svc.MarkOutOfStock(ctx, conf.ProductID); err != nil {
			c.logger.Warn("mark out of stock failed", zap.Int64("product_id", conf.ProductID), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
		c.logger.Info("product marked out of stock", zap.Int64("product_id", conf.ProductID))

	case TargetInStock:
		qty, err := ParseQuantity(quantityInput)
		if err != nil {
			return err
		}
		if _, err := c.svc.MarkInStock(ctx, conf.ProductID, qty); err != nil {
			c.logger.Warn("restock failed", zap.Int64("product_id", conf.ProductID), zap.Int("quantity", qty), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
		c.logger.Info("product restocked", zap.Int64("product_id", conf.ProductID), zap.Int("quantity", qty))

	default:
		return fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, conf.Target)
	}
	return c.reload(ctx)
}

// MarkOutOfStock 将有库存的商品标记为缺货
func (c *Coordinator) MarkOutOfStock(ctx context.Context, p domain.Product) error {
	conf, err := c.PrepareToggle(p)
	if err != nil {
		return err
	}
	if conf.Target != TargetOutOfStock {
		return fmt.Errorf("%w: %q is already out of stock", ErrInvalidTransition, p.Name)
	}
	return c.Confirm(ctx, conf, "")
}

// Restock 为缺货商品补货，quantityInput 为用户输入的数量
func (c *Coordinator) Restock(ctx context.Context, p domain.Product, quantityInput string) error {
	conf, err := c.PrepareToggle(p)
	if err != nil {
		return err
	}
	if conf.Target != TargetInStock {
		return fmt.Errorf("%w: %q still has %d in stock", ErrInvalidTransition, p.Name, p.QuantityInStock)
	}
	return c.Confirm(ctx, conf, quantityInput)
}

// Save 校验表单后新建或更新商品，成功后重新加载
func (c *Coordinator) Save(ctx context.Context, form ProductForm) (*domain.Product, error) {
	form, err := c.validator.Validate(form)
	if err != nil {
		return nil, err
	}

	var saved *domain.Product
	if form.ID == nil {
		saved, err = c.svc.CreateProduct(ctx, form.Product())
	} else {
		saved, err = c.svc.UpdateProduct(ctx, *form.ID, form.Product())
	}
	if err != nil {
		c.logger.Warn("save product failed", zap.String("name", form.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.logger.Info("product saved", zap.String("name", saved.Name), zap.Bool("created", form.ID == nil))
	return saved, c.reload(ctx)
}

func (c *Coordinator) reload(ctx context.Context) error {
	if err := c.reloader.Reload(ctx); err != nil {
		return fmt.Errorf("change applied but refresh failed: %w", err)
	}
	return nil
}
