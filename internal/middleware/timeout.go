package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MorseWayne/stock_console/internal/resp"
)

// Timeout 超过 d 仍未完成的请求返回 503 和统一的错误信封，并取消请求上下文
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(resp.ErrorBody{Code: resp.CodeTimeout, Message: "request timeout"})
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, string(body))
	}
}
