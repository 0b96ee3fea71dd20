package story

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/hitoshi/storybrowser/internal/cache"
	"github.com/hitoshi/storybrowser/internal/model"
)

// ItemSource は記事を1件取得する上流の抽象。
type ItemSource interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
}

// ItemFetchCache はIDによる記事取得の唯一の窓口。
// 記事単位のキャッシュに書き込むのはこの型だけである。
type ItemFetchCache struct {
	source ItemSource
	items  *cache.Cache[*model.Item]
	group  singleflight.Group
	logger *slog.Logger
}

// NewItemFetchCache はItemFetchCacheの新しいインスタンスを生成する。
func NewItemFetchCache(source ItemSource, items *cache.Cache[*model.Item], logger *slog.Logger) *ItemFetchCache {
	return &ItemFetchCache{
		source: source,
		items:  items,
		logger: logger,
	}
}

// Get は記事を返す。有効なキャッシュがあれば通信せずに同一のオブジェクトを返す。
// キャッシュがなければ上流から1回取得し、成功した場合のみ格納する。
// 取得に失敗した場合は*FetchErrorを返す。
//
// 同じIDの同時取得は1回の上流リクエストにまとめる。
// ClearCache後の呼び出しはクリア前に開始した取得には合流しない。
// ctxが先に終了した場合は待機をやめてctx.Err()を返すが、
// 進行中の取得は完了時にキャッシュへ反映される。
func (f *ItemFetchCache) Get(ctx context.Context, id int64) (*model.Item, error) {
	key := itemKey(id)
	if item, ok := f.items.Get(key); ok {
		return item, nil
	}

	ch := f.group.DoChan(flightKey(f.items.Epoch(), key), func() (any, error) {
		ticket := f.items.Begin(key)
		item, err := f.source.GetItem(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, &FetchError{ItemID: id, Err: err}
		}
		if !f.items.Commit(ticket, item) {
			f.logger.Debug("新しい取得が先行しているため記事をキャッシュしません",
				slog.Int64("item_id", id),
			)
		}
		return item, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Item), nil
	}
}
