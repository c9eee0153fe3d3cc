// Package middleware 提供本地库存服务的 HTTP 中间件：请求 ID、访问日志、恢复、超时、CORS、指标。
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxRequestIDLen = 128
)

type requestIDKey struct{}

// RequestIDFromContext 读取 RequestID 写入的请求 ID，未经过该中间件时为空
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID 沿用客户端传入的 X-Request-ID，缺失或超过 128 字节时生成 UUID，
// 同时写入响应头和请求上下文。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
