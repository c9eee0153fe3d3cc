package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/console"
	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/logger"
)

const helpText = `commands:
  list | refresh          reload the current page
  name [text]             filter by name (empty clears)
  cat <category>          toggle a category filter
  cats [a,b,...]          replace the category filter
  categories              show categories on this page
  stock all|in|out        filter by availability
  page <n>                jump to page n
  next | prev             page forward / back
  clear                   reset all filters
  toggle <row>            mark out of stock, or restock
  delete <row>            delete a product
  new | edit <row>        create or edit a product
  metrics                 show inventory metrics
  status                  show filters and reload counters
  help                    show this help
  quit | exit             leave the console`

// Session 交互式控制台会话
// 每行输入转换为一个控制器命令或库存变更；错误只打印，不中断会话。
type Session struct {
	ctrl    *console.Controller
	coord   *console.Coordinator
	scanner *bufio.Scanner
	out     io.Writer
	render  *Renderer
	prompt  bool
	logger  *zap.Logger
}

// SessionOption 会话可选配置
type SessionOption func(*Session)

// WithPrompt 是否打印输入提示符，非交互输入时关闭
func WithPrompt(enabled bool) SessionOption {
	return func(s *Session) { s.prompt = enabled }
}

// WithClock 设置渲染过期状态使用的时钟
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.render = NewRenderer(s.out, now) }
}

// WithLogger 设置日志器
func WithLogger(lg *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger.OrNop(lg) }
}

// NewSession 创建会话
func NewSession(ctrl *console.Controller, coord *console.Coordinator, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		ctrl:    ctrl,
		coord:   coord,
		scanner: bufio.NewScanner(in),
		out:     out,
		render:  NewRenderer(out, nil),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 读取并执行命令，直到输入结束、收到 quit 或 ctx 取消
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, ok := s.readLine("> ")
		if !ok {
			return s.scanner.Err()
		}
		quit, err := s.Execute(ctx, line)
		if err != nil {
			s.printError(err)
		}
		if quit {
			return nil
		}
	}
}

// Execute 执行一行命令，返回是否退出
func (s *Session) Execute(ctx context.Context, line string) (bool, error) {
	in, ok := Parse(line)
	if !ok {
		return false, nil
	}
	s.logger.Debug("console command", zap.String("cmd", in.Cmd), zap.Strings("args", in.Args))

	switch in.Cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		s.println(helpText)
		return false, nil
	case "list", "ls", "refresh":
		return false, s.dispatch(ctx, console.Refresh{})
	case "name":
		return false, s.dispatch(ctx, console.SetName{Name: in.Rest})
	case "cat":
		if in.Rest == "" {
			return false, fmt.Errorf("%w: cat <category>", ErrUsage)
		}
		return false, s.dispatch(ctx, console.ToggleCategory{Category: in.Rest})
	case "cats":
		return false, s.dispatch(ctx, console.SetCategories{Categories: splitList(in.Rest)})
	case "categories":
		return false, s.render.Categories(s.ctrl.View(), s.ctrl.Filter().Criteria)
	case "stock":
		a, err := domain.ParseAvailability(in.Rest)
		if err != nil {
			return false, fmt.Errorf("%w: stock all|in|out", ErrUsage)
		}
		return false, s.dispatch(ctx, console.SetAvailability{Availability: a})
	case "page":
		return false, s.page(ctx, in.Arg(0))
	case "next":
		return false, s.dispatch(ctx, console.NextPage{})
	case "prev":
		return false, s.dispatch(ctx, console.PrevPage{})
	case "clear":
		return false, s.dispatch(ctx, console.ClearFilters{})
	case "toggle":
		return false, s.toggle(ctx, in.Arg(0))
	case "delete", "rm":
		return false, s.delete(ctx, in.Arg(0))
	case "new":
		return false, s.edit(ctx, console.ProductForm{})
	case "edit":
		p, err := s.row(in.Arg(0))
		if err != nil {
			return false, err
		}
		return false, s.edit(ctx, console.FormFromProduct(p))
	case "metrics":
		return false, s.render.Metrics(s.ctrl.View().Metrics)
	case "status":
		return false, s.status()
	default:
		return false, fmt.Errorf("%w %q, type `help`", ErrUnknownCommand, in.Cmd)
	}
}

func (s *Session) dispatch(ctx context.Context, cmd console.Command) error {
	if err := s.ctrl.Dispatch(ctx, cmd); err != nil {
		return err
	}
	return s.show()
}

func (s *Session) page(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return fmt.Errorf("%w: page <n>, n starts at 1", ErrUsage)
	}
	return s.dispatch(ctx, console.SetPage{Page: n - 1})
}

func (s *Session) toggle(ctx context.Context, arg string) error {
	p, err := s.row(arg)
	if err != nil {
		return err
	}
	conf, err := s.coord.PrepareToggle(p)
	if err != nil {
		return err
	}

	var input string
	if conf.NeedsQuantity {
		line, ok := s.readLine(conf.Prompt() + ": ")
		if !ok {
			return nil
		}
		input = line
	} else {
		line, ok := s.readLine(conf.Prompt() + " [y/N] ")
		if !ok || !isYes(line) {
			s.println("cancelled")
			return nil
		}
	}

	if err := s.coord.Confirm(ctx, conf, input); err != nil {
		return err
	}
	return s.show()
}

func (s *Session) delete(ctx context.Context, arg string) error {
	p, err := s.row(arg)
	if err != nil {
		return err
	}
	if !p.HasID() {
		return console.ErrMissingID
	}
	line, ok := s.readLine(fmt.Sprintf("Delete %q? [y/N] ", p.Name))
	if !ok || !isYes(line) {
		s.println("cancelled")
		return nil
	}
	if err := s.coord.Delete(ctx, *p.ID); err != nil {
		return err
	}
	return s.show()
}

// edit 逐项提示表单字段，编辑时直接回车保留原值
func (s *Session) edit(ctx context.Context, form console.ProductForm) error {
	editing := form.ID != nil

	field := func(label, current string) (string, bool) {
		prompt := label + ": "
		if editing {
			prompt = fmt.Sprintf("%s [%s]: ", label, current)
		}
		line, ok := s.readLine(prompt)
		if !ok {
			return "", false
		}
		line = strings.TrimSpace(line)
		if line == "" && editing {
			return current, true
		}
		return line, true
	}

	var ok bool
	if form.Name, ok = field("name", form.Name); !ok {
		return nil
	}
	if form.Category, ok = field("category", form.Category); !ok {
		return nil
	}

	price, ok := field("unit price", formatMoney(form.UnitPrice))
	if !ok {
		return nil
	}
	v, err := console.ParsePrice(price)
	if err != nil {
		return err
	}
	form.UnitPrice = v

	qty, ok := field("quantity", strconv.Itoa(form.QuantityInStock))
	if !ok {
		return nil
	}
	n, err := console.ParseQuantity(qty)
	if err != nil {
		return err
	}
	form.QuantityInStock = n

	// "-" 清除过期日期
	exp, ok := field("expiration date (YYYY-MM-DD, - for none)", form.ExpirationDate)
	if !ok {
		return nil
	}
	if exp == "-" {
		exp = ""
	}
	form.ExpirationDate = exp

	saved, err := s.coord.Save(ctx, form)
	if err != nil {
		return err
	}
	s.println(fmt.Sprintf("saved %q (id %s)", saved.Name, formatID(saved.ID)))
	return s.show()
}

// row 按 1 起始的行号取当前页的商品
func (s *Session) row(arg string) (domain.Product, error) {
	v := s.ctrl.View()
	if len(v.Products) == 0 {
		return domain.Product{}, fmt.Errorf("%w: no products on this page", ErrUsage)
	}
	i, err := parseRow(arg, len(v.Products))
	if err != nil {
		return domain.Product{}, err
	}
	return v.Products[i], nil
}

func (s *Session) show() error {
	if err := s.render.Products(s.ctrl.View()); err != nil {
		return err
	}
	return s.status()
}

func (s *Session) status() error {
	return s.render.Status(s.ctrl.Filter(), s.ctrl.View(), s.ctrl.Stats())
}

func (s *Session) readLine(prompt string) (string, bool) {
	if s.prompt {
		fmt.Fprint(s.out, prompt)
	}
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

func (s *Session) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Session) printError(err error) {
	switch {
	case errors.Is(err, console.ErrRequestFailed):
		fmt.Fprintf(s.out, "error: %v (previous results kept)\n", err)
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}
