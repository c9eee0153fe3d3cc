package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORS 基于 rs/cors 处理预检请求，并向浏览器暴露 X-Request-ID
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         600,
	})
	return c.Handler
}
