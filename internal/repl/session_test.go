package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MorseWayne/stock_console/internal/console"
	"github.com/MorseWayne/stock_console/internal/domain"
)

func newTestSession(inv *memInventory, script string, pageSize int) (*Session, *console.Controller, *bytes.Buffer) {
	ctrl := console.NewController(inv, pageSize, nil)
	coord := console.NewCoordinator(inv, ctrl, nil)
	out := &bytes.Buffer{}
	s := NewSession(ctrl, coord, strings.NewReader(script), out, WithClock(fixedNow))
	return s, ctrl, out
}

func sampleInventory() *memInventory {
	return newMemInventory(
		domain.Product{Name: "Milk", Category: "Food", UnitPrice: 1.5, QuantityInStock: 3},
		domain.Product{Name: "Cola", Category: "Drink", UnitPrice: 2, QuantityInStock: 0},
		domain.Product{Name: "Bread", Category: "Food", UnitPrice: 3, QuantityInStock: 12},
	)
}

func TestSession_FilterFlow(t *testing.T) {
	inv := sampleInventory()
	script := strings.Join([]string{
		"list",
		"name mil",
		"clear",
		"cat Food",
		"stock out",
		"quit",
		"list",
	}, "\n")
	s, ctrl, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	f := ctrl.Filter()
	if !f.Criteria.HasCategory("Food") || f.Criteria.Availability != domain.AvailabilityOutOfStock {
		t.Errorf("filter = %+v", f)
	}
	if v := ctrl.View(); len(v.Products) != 0 {
		t.Errorf("Food + out of stock should be empty, got %+v", v.Products)
	}
	if !strings.Contains(out.String(), "no products match") {
		t.Errorf("output:\n%s", out.String())
	}
	// quit 之后的命令不再执行
	if s := ctrl.Stats(); s.Issued != 5 {
		t.Errorf("issued = %d, want 5", s.Issued)
	}
}

func TestSession_Paging(t *testing.T) {
	var products []domain.Product
	for i := 0; i < 5; i++ {
		products = append(products, domain.Product{Name: fmt.Sprintf("p%d", i), Category: "Food", QuantityInStock: 1})
	}
	inv := newMemInventory(products...)
	s, ctrl, out := newTestSession(inv, "", 2)
	ctx := context.Background()

	steps := []struct {
		line     string
		wantErr  error
		wantPage int
	}{
		{"list", nil, 0},
		{"prev", console.ErrNoPrevPage, 0},
		{"next", nil, 1},
		{"page 3", nil, 2},
		{"next", console.ErrNoNextPage, 2},
		{"page 0", ErrUsage, 2},
		{"page x", ErrUsage, 2},
	}
	for _, st := range steps {
		_, err := s.Execute(ctx, st.line)
		if st.wantErr == nil && err != nil {
			t.Fatalf("%q error = %v", st.line, err)
		}
		if st.wantErr != nil && !errors.Is(err, st.wantErr) {
			t.Fatalf("%q error = %v, want %v", st.line, err, st.wantErr)
		}
		if f := ctrl.Filter(); f.Page != st.wantPage {
			t.Fatalf("%q page = %d, want %d", st.line, f.Page, st.wantPage)
		}
	}
	if !strings.Contains(out.String(), "last page") {
		t.Errorf("status line missing last page:\n%s", out.String())
	}
}

func TestSession_ToggleRestock(t *testing.T) {
	inv := sampleInventory()
	// Cola 是第 2 行：先输入非法数量，再输入 7
	script := "list\ntoggle 2\nabc\ntoggle 2\n7\n"
	s, ctrl, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(out.String(), "error: validation failed: quantity must be a non-negative integer") {
		t.Errorf("missing quantity error:\n%s", out.String())
	}
	if len(inv.restocks) != 1 || inv.restocks[0] != 7 {
		t.Errorf("restocks = %v, want [7]", inv.restocks)
	}
	if v := ctrl.View(); v.Products[1].QuantityInStock != 7 {
		t.Errorf("view quantity = %d", v.Products[1].QuantityInStock)
	}
}

func TestSession_ToggleOutOfStockNeedsConfirmation(t *testing.T) {
	inv := sampleInventory()
	script := "list\ntoggle 1\nn\ntoggle 1\ny\n"
	s, _, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("first toggle should be cancelled:\n%s", out.String())
	}
	if p, _ := inv.get(1); p.QuantityInStock != 0 {
		t.Errorf("Milk quantity = %d, want 0", p.QuantityInStock)
	}
}

func TestSession_Delete(t *testing.T) {
	inv := sampleInventory()
	script := "list\ndelete 9\ndelete 3\ny\n"
	s, ctrl, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "out of range") {
		t.Errorf("missing range error:\n%s", out.String())
	}
	if _, ok := inv.get(3); ok {
		t.Error("Bread should be deleted")
	}
	if v := ctrl.View(); len(v.Products) != 2 {
		t.Errorf("view after delete = %+v", v.Products)
	}
}

func TestSession_NewAndEdit(t *testing.T) {
	inv := newMemInventory()
	script := strings.Join([]string{
		"new",
		"  Yogurt ",
		"Food",
		"2.25",
		"4",
		"2024-03-10",
		"edit 1",
		"",
		"Dairy",
		"",
		"9",
		"-",
	}, "\n") + "\n"
	s, ctrl, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	p, ok := inv.get(1)
	if !ok {
		t.Fatalf("product not created:\n%s", out.String())
	}
	if p.Name != "Yogurt" || p.Category != "Dairy" || p.UnitPrice != 2.25 || p.QuantityInStock != 9 || p.ExpirationDate != nil {
		t.Errorf("product = %+v", p)
	}
	if v := ctrl.View(); len(v.Products) != 1 || v.Products[0].Category != "Dairy" {
		t.Errorf("view = %+v", v.Products)
	}
}

func TestSession_NewRejectsInvalidForm(t *testing.T) {
	inv := newMemInventory()
	script := "new\n \nFood\n1\n1\n\n"
	s, _, out := newTestSession(inv, script, 10)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Name is required") {
		t.Errorf("missing validation message:\n%s", out.String())
	}
	if _, ok := inv.get(1); ok {
		t.Error("invalid product was created")
	}
}

func TestSession_RequestFailureKeepsView(t *testing.T) {
	inv := sampleInventory()
	s, ctrl, out := newTestSession(inv, "", 10)
	ctx := context.Background()

	if _, err := s.Execute(ctx, "list"); err != nil {
		t.Fatalf("list error = %v", err)
	}
	inv.mu.Lock()
	inv.listErr = errors.New("connection refused")
	inv.mu.Unlock()

	_, err := s.Execute(ctx, "name cola")
	if !errors.Is(err, console.ErrRequestFailed) {
		t.Fatalf("error = %v", err)
	}
	s.printError(err)
	if !strings.Contains(out.String(), "previous results kept") {
		t.Errorf("output:\n%s", out.String())
	}
	if v := ctrl.View(); len(v.Products) != 3 {
		t.Errorf("view changed: %+v", v.Products)
	}
}

func TestSession_UnknownAndHelp(t *testing.T) {
	s, _, out := newTestSession(newMemInventory(), "", 10)
	ctx := context.Background()

	if _, err := s.Execute(ctx, "frobnicate"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("error = %v", err)
	}
	if _, err := s.Execute(ctx, "stock maybe"); !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v", err)
	}
	if _, err := s.Execute(ctx, "toggle 1"); !errors.Is(err, ErrUsage) {
		t.Errorf("toggle on empty page error = %v", err)
	}
	if _, err := s.Execute(ctx, "help"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "toggle <row>") {
		t.Errorf("help output:\n%s", out.String())
	}
	quit, err := s.Execute(ctx, "exit")
	if !quit || err != nil {
		t.Errorf("exit = %v, %v", quit, err)
	}
}
