package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Upstream
	HNBaseURL          string
	FetchTimeout       time.Duration
	FetchMaxConcurrent int
	UpstreamRateLimit  float64 // 1秒あたりのリクエスト数。0は無制限
	SSRFProtection     bool

	// Cache
	CacheDuration        time.Duration
	CacheCleanupInterval time.Duration

	// Paging
	StoriesPerPage int
	MaxPageSize    int

	// Server
	ServerPort        string
	RateLimitGeneral  int // 1分あたりのリクエスト数（クライアント単位）
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 値が解析できない場合や範囲外の場合はエラーを返す。
func Load() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{}
	var err error

	cfg.HNBaseURL = getEnvString("HN_BASE_URL", "https://hacker-news.firebaseio.com/v0")
	cfg.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.FetchMaxConcurrent, err = getEnvInt("FETCH_MAX_CONCURRENT", 10)
	collect(err)
	cfg.UpstreamRateLimit, err = getEnvFloat("UPSTREAM_RATE_LIMIT", 50)
	collect(err)
	cfg.SSRFProtection, err = getEnvBool("SSRF_PROTECTION", true)
	collect(err)

	cfg.CacheDuration, err = getEnvMillisOrDuration("CACHE_DURATION", 5*time.Minute)
	collect(err)
	cfg.CacheCleanupInterval, err = getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute)
	collect(err)

	cfg.StoriesPerPage, err = getEnvInt("STORIES_PER_PAGE", 30)
	collect(err)
	cfg.MaxPageSize, err = getEnvInt("MAX_PAGE_SIZE", 100)
	collect(err)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.RateLimitGeneral, err = getEnvInt("RATE_LIMIT_GENERAL", 120)
	collect(err)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:4200")
	cfg.LogLevel = strings.ToLower(getEnvString("LOG_LEVEL", "info"))

	if len(errs) == 0 {
		collect(cfg.validate())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// validate は値の範囲と組み合わせを検証する。
func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.HNBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("HN_BASE_URL must be an http(s) URL with a host: %q", c.HNBaseURL))
	}
	if c.CacheDuration <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_DURATION must be positive: %v", c.CacheDuration))
	}
	if c.CacheCleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("CACHE_CLEANUP_INTERVAL must not be negative: %v", c.CacheCleanupInterval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive: %v", c.FetchTimeout))
	}
	if c.FetchMaxConcurrent < 1 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_CONCURRENT must be >= 1: %d", c.FetchMaxConcurrent))
	}
	if c.UpstreamRateLimit < 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_RATE_LIMIT must not be negative: %v", c.UpstreamRateLimit))
	}
	if c.StoriesPerPage < 1 {
		errs = append(errs, fmt.Errorf("STORIES_PER_PAGE must be >= 1: %d", c.StoriesPerPage))
	}
	if c.MaxPageSize < c.StoriesPerPage {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE (%d) must be >= STORIES_PER_PAGE (%d)", c.MaxPageSize, c.StoriesPerPage))
	}
	if c.RateLimitGeneral < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_GENERAL must be >= 1: %d", c.RateLimitGeneral))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return i, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// getEnvMillisOrDuration はGoのduration表記に加え、単位なしの整数をミリ秒として受け付ける。
func getEnvMillisOrDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: invalid duration %q (use e.g. 5m or 300000)", key, v)
	}
	return d, nil
}
