// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SessionStorePostgres / SessionStoreRedis はセッションストアのバックエンド種別。
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionStore string        // "postgres" または "redis"
	RedisURL     string        // SessionStore=redis の場合に必須
	SessionTTL   time.Duration // セッション有効期間（デフォルト: 7日）

	// Rate Limit（req/min/user）
	RateLimitGeneral    int
	RateLimitCaseCreate int

	// Check worker
	CheckInterval      time.Duration // チェックサイクルの間隔
	CheckTimeout       time.Duration // 1ターゲットあたりのHTTPタイムアウト
	CheckMaxSize       int64         // レスポンスボディの最大サイズ
	CheckMaxConcurrent int           // チェックの最大並列数
	CheckRecheckAfter  time.Duration // 再チェックまでの最短間隔

	// Server
	ServerPort  string
	MetricsPort string

	// Cookie
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（未存在は無視）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envは開発用の補助。既存の環境変数を上書きしない。
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionStore = getEnvString("SESSION_STORE", SessionStorePostgres)
	if cfg.SessionStore != SessionStorePostgres && cfg.SessionStore != SessionStoreRedis {
		return nil, fmt.Errorf("invalid SESSION_STORE: %q (must be %q or %q)",
			cfg.SessionStore, SessionStorePostgres, SessionStoreRedis)
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.SessionStore == SessionStoreRedis && cfg.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 7*24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCaseCreate = getEnvInt("RATE_LIMIT_CASE_CREATE", 20)
	cfg.CheckInterval = getEnvDuration("CHECK_INTERVAL", 10*time.Minute)
	cfg.CheckTimeout = getEnvDuration("CHECK_TIMEOUT", 10*time.Second)
	cfg.CheckMaxSize = getEnvInt64("CHECK_MAX_SIZE", 1048576)
	cfg.CheckMaxConcurrent = getEnvInt("CHECK_MAX_CONCURRENT", 10)
	cfg.CheckRecheckAfter = getEnvDuration("CHECK_RECHECK_AFTER", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
