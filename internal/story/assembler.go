package story

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/hackernews"
	"github.com/hitoshi/storybrowser/internal/model"
)

// defaultMaxConcurrent は記事取得の既定の並列数。
const defaultMaxConcurrent = 10

// 除外理由（メトリクスのラベルとして使用する）
const (
	DropReasonNotFound    = "not_found"
	DropReasonUnavailable = "unavailable"
	DropReasonUpstream    = "upstream_status"
	DropReasonError       = "error"
)

// Recorder はページ組み立ての結果を記録する。
type Recorder interface {
	RecordPageRequest(category string, cacheHit bool)
	RecordPageLatency(duration time.Duration)
	RecordItemDropped(category string, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPageRequest(string, bool) {}
func (nopRecorder) RecordPageLatency(time.Duration) {}
func (nopRecorder) RecordItemDropped(string, string) {}

// PageAssembler はページ単位で記事を組み立てる。
// 記事IDの解決、記事の並列取得、失敗した記事の除外、結果のキャッシュを行う。
type PageAssembler struct {
	listings      *ListingResolver
	items         *ItemFetchCache
	pages         *cache.Cache[[]*model.Item]
	recorder      Recorder
	logger        *slog.Logger
	maxConcurrent int
}

// NewPageAssembler はPageAssemblerの新しいインスタンスを生成する。
// maxConcurrentが0以下の場合は既定値10を使用する。recorderはnilでもよい。
func NewPageAssembler(
	listings *ListingResolver,
	items *ItemFetchCache,
	pages *cache.Cache[[]*model.Item],
	recorder Recorder,
	logger *slog.Logger,
	maxConcurrent int,
) *PageAssembler {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &PageAssembler{
		listings:      listings,
		items:         items,
		pages:         pages,
		recorder:      recorder,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// fetchResult は記事1件の取得結果。
type fetchResult struct {
	item *model.Item
	err  error
}

// GetPage はページの記事を一覧の順序で返す。
//
// 有効なページキャッシュがあれば通信しない。個々の記事の取得失敗は
// ログに記録したうえで結果から除外し、エラーとしては返さない。
// 記事ID一覧の取得に失敗した場合のみ*ListingFetchErrorを返し、何もキャッシュしない。
// ctxが組み立て完了前に終了した場合はctx.Err()を返し、ページはキャッシュしない。
// 返されるスライスはキャッシュと共有されるため変更してはならない。
func (a *PageAssembler) GetPage(ctx context.Context, category model.Category, page, pageSize int) ([]*model.Item, error) {
	if err := validateWindow(category, page, pageSize); err != nil {
		return nil, err
	}

	key := pageKey(category, page, pageSize)
	if items, ok := a.pages.Get(key); ok {
		a.recorder.RecordPageRequest(string(category), true)
		return items, nil
	}
	a.recorder.RecordPageRequest(string(category), false)

	start := time.Now()
	ticket := a.pages.Begin(key)

	ids, err := a.listings.GetPageIDs(ctx, category, page, pageSize)
	if err != nil {
		var listingErr *ListingFetchError
		if errors.As(err, &listingErr) {
			a.logger.Error("記事ID一覧の取得に失敗したためページを組み立てられません",
				slog.String("category", string(category)),
				slog.Int("page", page),
				slog.Int("page_size", pageSize),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	results := a.fetchAll(ctx, ids)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]*model.Item, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			a.logger.Warn("記事の取得に失敗したため除外しました",
				slog.String("category", string(category)),
				slog.Int64("item_id", ids[i]),
				slog.String("error", r.err.Error()),
			)
			a.recorder.RecordItemDropped(string(category), dropReason(r.err))
			continue
		}
		items = append(items, r.item)
	}

	if !a.pages.Commit(ticket, items) {
		a.logger.Debug("新しいリクエストが先行しているためページをキャッシュしません",
			slog.String("category", string(category)),
			slog.Int("page", page),
			slog.Int("page_size", pageSize),
		)
	}

	duration := time.Since(start)
	a.recorder.RecordPageLatency(duration)
	a.logger.Debug("ページを組み立てました",
		slog.String("category", string(category)),
		slog.Int("page", page),
		slog.Int("page_size", pageSize),
		slog.Int("item_count", len(items)),
		slog.Int("dropped_count", len(ids)-len(items)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return items, nil
}

// fetchAll はすべての記事を並列に取得し、IDと同じ順序で結果を返す。
// 1件の失敗が他の取得を中断することはなく、全件の完了を待ってから戻る。
// semaphoreで同時実行数を制限する。
func (a *PageAssembler) fetchAll(ctx context.Context, ids []int64) []fetchResult {
	results := make([]fetchResult, len(ids))
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for i, id := range ids {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := a.items.Get(ctx, id)
			results[i] = fetchResult{item: item, err: err}
		}(i, id)
	}

	wg.Wait()
	return results
}

// dropReason はエラーを除外理由のラベルに変換する。
func dropReason(err error) string {
	var statusErr *hackernews.StatusError
	switch {
	case errors.Is(err, hackernews.ErrItemNotFound):
		return DropReasonNotFound
	case errors.Is(err, hackernews.ErrItemUnavailable):
		return DropReasonUnavailable
	case errors.As(err, &statusErr):
		return DropReasonUpstream
	default:
		return DropReasonError
	}
}
