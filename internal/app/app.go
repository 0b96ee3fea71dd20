package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/storybrowser/internal/config"
	"github.com/hitoshi/storybrowser/internal/handler"
	"github.com/hitoshi/storybrowser/internal/hackernews"
	"github.com/hitoshi/storybrowser/internal/logger"
	"github.com/hitoshi/storybrowser/internal/metrics"
	"github.com/hitoshi/storybrowser/internal/middleware"
	"github.com/hitoshi/storybrowser/internal/model"
	"github.com/hitoshi/storybrowser/internal/security"
	"github.com/hitoshi/storybrowser/internal/story"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		// 設定エラーもJSONログとして出力できるようにする
		logger.SetupDefault(w, "info")
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logger.SetupDefault(w, cfg.LogLevel), nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。pageサブコマンドの結果はwに、ログは標準エラー出力に書き出す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	logW := w
	if cmd == CommandPage {
		logW = os.Stderr
	}

	cfg, log, err := Init(logW)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandPage:
		return runPage(ctx, w, cfg, log, args[1:])
	default:
		log.Info("starting application",
			slog.String("command", string(cmd)),
			slog.String("port", cfg.ServerPort),
			slog.String("hn_base_url", cfg.HNBaseURL),
		)
		return runServe(ctx, cfg, log)
	}
}

// buildService は上流クライアントと記事サービスを組み立てる。
// メトリクスとキャッシュ統計はregに登録する。
func buildService(cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (*story.Service, error) {
	if err := security.ValidateBaseURL(cfg.HNBaseURL, cfg.SSRFProtection); err != nil {
		return nil, fmt.Errorf("invalid HN_BASE_URL: %w", err)
	}

	collector := metrics.NewCollector(reg)

	opts := []hackernews.Option{
		hackernews.WithSanitizer(security.NewTextSanitizer()),
		hackernews.WithObserver(collector),
	}
	if cfg.UpstreamRateLimit > 0 {
		burst := max(int(cfg.UpstreamRateLimit), 1)
		opts = append(opts, hackernews.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.UpstreamRateLimit), burst)))
	}

	client := hackernews.NewClient(
		security.NewUpstreamClient(cfg.FetchTimeout, cfg.SSRFProtection),
		cfg.HNBaseURL,
		log,
		opts...,
	)

	svc := story.NewService(client, collector, log, story.Options{
		CacheDuration:   cfg.CacheDuration,
		CleanupInterval: cfg.CacheCleanupInterval,
		MaxConcurrent:   cfg.FetchMaxConcurrent,
	})
	metrics.RegisterCacheStats(reg, svc.CacheStats)

	return svc, nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := buildService(cfg, log, reg)
	if err != nil {
		return err
	}
	defer svc.Close()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral), log)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		StoryService:      svc,
		ItemService:       svc,
		Pages: handler.PageConfig{
			DefaultPageSize: cfg.StoriesPerPage,
			MaxPageSize:     cfg.MaxPageSize,
		},
		CacheService: svc,
		Gatherer:     reg,
		Logger:       log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runPage は1ページ分の記事を取得し、JSONとしてwに書き出す。
// 引数は <category> [page] [pageSize]。
func runPage(ctx context.Context, w io.Writer, cfg *config.Config, log *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: storybrowser page <category> [page] [pageSize]")
	}

	category, ok := model.ParseCategory(args[0])
	if !ok {
		return fmt.Errorf("unknown category %q", args[0])
	}

	page, err := positiveArg(args, 1, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := positiveArg(args, 2, "pageSize", cfg.StoriesPerPage)
	if err != nil {
		return err
	}
	pageSize = min(pageSize, cfg.MaxPageSize)

	svc, err := buildService(cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer svc.Close()

	items, err := svc.GetPage(ctx, category, page, pageSize)
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(handler.NewStoryPageResponse(category, page, pageSize, items, time.Now()))
}

// positiveArg はargs[i]を1以上の整数として読み取る。存在しない場合はdefを返す。
func positiveArg(args []string, i int, name string, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer: %q", name, args[i])
	}
	return n, nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
