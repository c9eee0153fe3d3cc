package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/config"
	"github.com/MorseWayne/stock_console/internal/domain"
	"github.com/MorseWayne/stock_console/internal/router"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "stock-console-test", Version: "test"},
		Server: config.ServerConfig{RequestTimeout: time.Second},
		Store:  config.StoreConfig{Type: store},
		Redis:  config.RedisConfig{Host: "127.0.0.1", Port: 1},
	}
}

func TestInitRepository_FallsBackToMemory(t *testing.T) {
	r, client := initRepository(testConfig("redis"), zap.NewNop())
	if client != nil {
		t.Fatal("expected no redis client for unreachable address")
	}
	if err := r.Create(context.Background(), &domain.Product{Name: "Milk", Category: "Food"}); err != nil {
		t.Fatalf("fallback repository unusable: %v", err)
	}
}

func TestHealthz_OK(t *testing.T) {
	cfg := testConfig("memory")
	r, _ := initRepository(cfg, zap.NewNop())
	h := router.New(cfg, initDependencies(r, zap.NewNop()), zap.NewNop())

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rw.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
