package story

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/model"
)

// ListingSource はカテゴリの全記事ID一覧を取得する上流の抽象。
type ListingSource interface {
	GetStoryIDs(ctx context.Context, category model.Category) ([]int64, error)
}

// ListingResolver はカテゴリの記事ID一覧からページ範囲を切り出す。
// 結果は (カテゴリ, ページ, ページサイズ) ごとに独立してキャッシュする。
type ListingResolver struct {
	source ListingSource
	ids    *cache.Cache[[]int64]
	group  singleflight.Group
	logger *slog.Logger
}

// NewListingResolver はListingResolverの新しいインスタンスを生成する。
func NewListingResolver(source ListingSource, ids *cache.Cache[[]int64], logger *slog.Logger) *ListingResolver {
	return &ListingResolver{
		source: source,
		ids:    ids,
		logger: logger,
	}
}

// GetPageIDs はページに対応する記事IDを一覧の順序のまま返す。
// 範囲は [(page-1)*pageSize, page*pageSize) で、一覧の長さで切り詰める。
// 範囲が一覧の外にある場合は空のスライスを返す。
//
// page < 1 または pageSize < 1 の場合は通信せずにErrInvalidArgumentを返す。
// 一覧の取得に失敗した場合は*ListingFetchErrorを返し、何もキャッシュしない。
// 返されるスライスはキャッシュと共有されるため変更してはならない。
func (r *ListingResolver) GetPageIDs(ctx context.Context, category model.Category, page, pageSize int) ([]int64, error) {
	if err := validateWindow(category, page, pageSize); err != nil {
		return nil, err
	}

	key := listingKey(category, page, pageSize)
	if ids, ok := r.ids.Get(key); ok {
		return ids, nil
	}

	ticket := r.ids.Begin(key)
	all, err := r.fetchListing(ctx, category)
	if err != nil {
		return nil, err
	}

	ids := pageSlice(all, page, pageSize)
	if !r.ids.Commit(ticket, ids) {
		r.logger.Debug("新しいリクエストが先行しているため記事IDをキャッシュしません",
			slog.String("category", string(category)),
			slog.Int("page", page),
			slog.Int("page_size", pageSize),
		)
	}
	return ids, nil
}

// fetchListing は一覧を上流から取得する。同じカテゴリの同時取得は1回にまとめる。
// まとめる単位はキャッシュの世代ごとで、クリア後の呼び出しは新たに取得する。
func (r *ListingResolver) fetchListing(ctx context.Context, category model.Category) ([]int64, error) {
	ch := r.group.DoChan(flightKey(r.ids.Epoch(), string(category)), func() (any, error) {
		ids, err := r.source.GetStoryIDs(context.WithoutCancel(ctx), category)
		if err != nil {
			return nil, &ListingFetchError{Category: category, Err: err}
		}
		return ids, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]int64), nil
	}
}

// pageSlice は一覧からページ範囲をコピーして返す。
// 範囲外の場合は空のスライス（nilではない）を返す。
func pageSlice(all []int64, page, pageSize int) []int64 {
	// (page-1)*pageSize のオーバーフローを避けるため先に範囲外を判定する
	if page-1 > len(all)/pageSize {
		return []int64{}
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []int64{}
	}

	end := len(all)
	if pageSize < end-start {
		end = start + pageSize
	}

	out := make([]int64, end-start)
	copy(out, all[start:end])
	return out
}
