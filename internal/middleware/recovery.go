package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/resp"
)

// Recovery 捕获 panic 并返回统一的错误响应
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// 客户端断开时 net/http 使用的哨兵 panic，继续向上抛出
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				reqID := RequestIDFromContext(r.Context())
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", reqID),
					zap.ByteString("stack", debug.Stack()),
				)
				resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "internal server error", reqID, "")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
