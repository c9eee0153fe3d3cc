// Package router 组装本地库存服务的路由与中间件链
package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/api"
	"github.com/MorseWayne/stock_console/internal/config"
	"github.com/MorseWayne/stock_console/internal/logger"
	mw "github.com/MorseWayne/stock_console/internal/middleware"
	"github.com/MorseWayne/stock_console/internal/resp"
)

// Dependencies 包含路由设置所需的所有依赖
type Dependencies struct {
	ProductHandler *api.ProductHandler
	// Registry 为空时创建新的注册表
	Registry *prometheus.Registry
}

// New 创建路由并包装中间件链
func New(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	lg = logger.OrNop(lg)
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	r := mux.NewRouter()
	r.Use(mw.NewHTTPMetrics(reg).Middleware)

	// 健康检查
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		resp.OK(w, map[string]string{
			"status":  "ok",
			"version": cfg.App.Version,
		})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)

	deps.ProductHandler.Register(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "route not found", mw.RequestIDFromContext(r.Context()), "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp.Error(w, http.StatusMethodNotAllowed, resp.CodeInvalidParam, "method not allowed", mw.RequestIDFromContext(r.Context()), "")
	})

	// 请求进入时执行顺序为 tracing → access log → CORS → request ID → timeout → recovery → mux
	var handler http.Handler = r
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.Server.RequestTimeout)(handler)
	handler = mw.RequestID(handler)
	handler = mw.CORS(mw.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})(handler)
	handler = mw.AccessLog(lg)(handler)
	return otelhttp.NewHandler(handler, cfg.App.Name)
}
