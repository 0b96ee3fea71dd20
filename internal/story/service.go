// Package story はページ単位の記事取得とキャッシュを提供する。
//
// 記事ID一覧のページ範囲、記事単体、組み立て済みページの3種類を
// それぞれ独立したキーでキャッシュし、ClearCacheで一括して破棄する。
package story

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/model"
)

// Upstream は記事ID一覧と記事単体を取得する上流の抽象。
type Upstream interface {
	ListingSource
	ItemSource
}

// Options はServiceの設定。
type Options struct {
	// CacheDuration はエントリの有効期間。0以下の場合は5分。
	CacheDuration time.Duration
	// CleanupInterval は失効エントリの掃除間隔。0以下の場合は掃除しない。
	CleanupInterval time.Duration
	// MaxConcurrent は記事取得の並列数。
	MaxConcurrent int
	// Clock はテスト用の時刻取得関数。nilの場合はtime.Now。
	Clock cache.Clock
}

// defaultCacheDuration はキャッシュの既定の有効期間。
const defaultCacheDuration = 5 * time.Minute

// Service はキャッシュとその利用者をまとめて構築し、
// アプリケーションの生存期間を通じて共有される。
type Service struct {
	ids   *cache.Cache[[]int64]
	items *cache.Cache[*model.Item]
	pages *cache.Cache[[]*model.Item]

	listings  *ListingResolver
	itemCache *ItemFetchCache
	assembler *PageAssembler
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(upstream Upstream, recorder Recorder, logger *slog.Logger, opts Options) *Service {
	ttl := opts.CacheDuration
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}

	cacheOpts := []cache.Option{cache.WithCleanupInterval(opts.CleanupInterval)}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	s := &Service{
		ids:    cache.New[[]int64]("ids", ttl, cacheOpts...),
		items:  cache.New[*model.Item]("items", ttl, cacheOpts...),
		pages:  cache.New[[]*model.Item]("pages", ttl, cacheOpts...),
		logger: logger,
	}
	s.listings = NewListingResolver(upstream, s.ids, logger)
	s.itemCache = NewItemFetchCache(upstream, s.items, logger)
	s.assembler = NewPageAssembler(s.listings, s.itemCache, s.pages, recorder, logger, opts.MaxConcurrent)

	return s
}

// GetPage はページの記事を返す。詳細はPageAssembler.GetPageを参照。
func (s *Service) GetPage(ctx context.Context, category model.Category, page, pageSize int) ([]*model.Item, error) {
	return s.assembler.GetPage(ctx, category, page, pageSize)
}

// GetPageIDs はページの記事IDを返す。詳細はListingResolver.GetPageIDsを参照。
func (s *Service) GetPageIDs(ctx context.Context, category model.Category, page, pageSize int) ([]int64, error) {
	return s.listings.GetPageIDs(ctx, category, page, pageSize)
}

// GetItem は記事を1件返す。取得に失敗した場合は*FetchErrorを返す。
func (s *Service) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if id < 0 {
		return nil, invalidArgumentf("item id must be >= 0, got %d", id)
	}
	return s.itemCache.Get(ctx, id)
}

// ClearCache は3種類のキャッシュをすべて破棄する。
// 破棄前に開始された取得の結果は、完了してもキャッシュされない。
func (s *Service) ClearCache() {
	cache.ClearAll(s.ids, s.items, s.pages)
	s.logger.Info("キャッシュをクリアしました")
}

// CacheStats はキャッシュごとの統計情報を返す。
func (s *Service) CacheStats() []cache.Stats {
	return []cache.Stats{s.ids.Stats(), s.items.Stats(), s.pages.Stats()}
}

// Close はキャッシュの掃除を停止する。
func (s *Service) Close() {
	s.ids.Close()
	s.items.Close()
	s.pages.Close()
}
