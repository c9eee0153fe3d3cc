// Package config 负责加载应用配置：先读取可选的 .env 文件，再读取环境变量并填充默认值。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Log       LogConfig
	Inventory InventoryConfig
	Console   ConsoleConfig
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	CORS      CORSConfig
}

// AppConfig 应用基础信息
type AppConfig struct {
	Name    string
	Env     string // dev / test / prod
	Version string
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string // debug / info / warn / error
	Encoding string // json / console
}

// InventoryConfig 远程库存服务配置
type InventoryConfig struct {
	BaseURL string
	Timeout time.Duration // 单个请求超时
}

// ConsoleConfig 控制台配置
type ConsoleConfig struct {
	PageSize int
}

// ServerConfig 本地库存服务配置
type ServerConfig struct {
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig 本地库存服务的存储配置
type StoreConfig struct {
	Type string // memory / redis
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr 返回 host:port 形式的地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load 加载配置。.env 文件不存在时忽略。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "stock-console"),
			Env:     getEnv("APP_ENV", "dev"),
			Version: getEnv("APP_VERSION", "0.1.0"),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Inventory: InventoryConfig{
			BaseURL: getEnv("INVENTORY_BASE_URL", "http://localhost:9090"),
			Timeout: getEnvDuration("INVENTORY_TIMEOUT", 5*time.Second),
		},
		Console: ConsoleConfig{
			PageSize: getEnvInt("CONSOLE_PAGE_SIZE", 10),
		},
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 9090),
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Type: getEnv("STORE_TYPE", "memory"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	u, err := url.Parse(c.Inventory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid INVENTORY_BASE_URL %q", c.Inventory.BaseURL)
	}
	if c.Inventory.Timeout <= 0 {
		return errors.New("INVENTORY_TIMEOUT must be positive")
	}
	if c.Console.PageSize <= 0 {
		return errors.New("CONSOLE_PAGE_SIZE must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	switch c.Store.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown STORE_TYPE %q", c.Store.Type)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
