package domain

import (
	"testing"
	"time"
)

func TestProduct_StockLevel(t *testing.T) {
	tests := []struct {
		qty  int
		want StockLevel
	}{
		{0, StockLevelLow},
		{4, StockLevelLow},
		{5, StockLevelMedium},
		{10, StockLevelMedium},
		{11, StockLevelOK},
	}

	for _, tt := range tests {
		p := Product{QuantityInStock: tt.qty}
		if got := p.StockLevel(); got != tt.want {
			t.Errorf("StockLevel(%d) = %v, want %v", tt.qty, got, tt.want)
		}
	}
}

func TestProduct_ExpiryStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date *string
		want ExpiryStatus
	}{
		{"no date", nil, ExpiryNone},
		{"unparsable", StringPtr("soon"), ExpiryNone},
		{"expired", StringPtr("2024-02-20"), ExpiryExpired},
		{"today", StringPtr("2024-03-01"), ExpiryCritical},
		{"within a week", StringPtr("2024-03-07"), ExpiryCritical},
		{"within two weeks", StringPtr("2024-03-12"), ExpiryWarning},
		{"later", StringPtr("2024-04-30"), ExpiryFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{ExpirationDate: tt.date}
			if got := p.ExpiryStatus(now); got != tt.want {
				t.Errorf("ExpiryStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvailability_InStock(t *testing.T) {
	if AvailabilityAll.InStock() != nil {
		t.Error("all should collapse to an absent flag")
	}
	if v := AvailabilityInStock.InStock(); v == nil || !*v {
		t.Errorf("inStock should collapse to true, got %v", v)
	}
	if v := AvailabilityOutOfStock.InStock(); v == nil || *v {
		t.Errorf("outOfStock should collapse to false, got %v", v)
	}
}

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		in      string
		want    Availability
		wantErr bool
	}{
		{"", AvailabilityAll, false},
		{"ALL", AvailabilityAll, false},
		{"in", AvailabilityInStock, false},
		{"outOfStock", AvailabilityOutOfStock, false},
		{"maybe", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAvailability(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAvailability(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAvailability(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCriteria_Query(t *testing.T) {
	c := Criteria{Name: "milk", Categories: []string{"Food"}, Availability: AvailabilityOutOfStock}
	q := c.Query(2, 10)

	if q.Name != "milk" || q.Page != 2 || q.Size != 10 {
		t.Fatalf("unexpected query: %+v", q)
	}
	if q.InStock == nil || *q.InStock {
		t.Fatalf("expected inStock=false, got %v", q.InStock)
	}

	// 查询中的分类切片与过滤条件互不影响
	q.Categories[0] = "Drink"
	if c.Categories[0] != "Food" {
		t.Fatal("query categories must not alias criteria categories")
	}
}

func TestCriteria_Equal(t *testing.T) {
	base := Criteria{Name: "milk", Categories: []string{"Food", "Drink"}, Availability: AvailabilityAll}

	tests := []struct {
		name  string
		other Criteria
		want  bool
	}{
		{"same", Criteria{Name: "milk", Categories: []string{"Food", "Drink"}, Availability: AvailabilityAll}, true},
		{"categories reordered", Criteria{Name: "milk", Categories: []string{"Drink", "Food"}}, true},
		{"category missing", Criteria{Name: "milk", Categories: []string{"Food"}}, false},
		{"category replaced", Criteria{Name: "milk", Categories: []string{"Food", "Frozen"}}, false},
		{"name differs", Criteria{Name: "bread", Categories: []string{"Food", "Drink"}}, false},
		{"availability differs", Criteria{Name: "milk", Categories: []string{"Food", "Drink"}, Availability: AvailabilityInStock}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Equal(base); got != tt.want {
				t.Errorf("reverse Equal() = %v, want %v", got, tt.want)
			}
		})
	}

	if !(Criteria{}).Equal(Criteria{Categories: []string{}}) {
		t.Error("nil and empty category sets should be equal")
	}
}
