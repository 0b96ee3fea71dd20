package story

import (
	"strconv"

	"github.com/hitoshi/storybrowser/internal/model"
)

// キャッシュキーは種別の接頭辞と ":" 区切りの10進表記で構成する。
// カテゴリ名は ":" を含まないため、異なるリクエストのキーが衝突することはない。

func listingKey(category model.Category, page, pageSize int) string {
	return windowKey("ids", category, page, pageSize)
}

func pageKey(category model.Category, page, pageSize int) string {
	return windowKey("page", category, page, pageSize)
}

func itemKey(id int64) string {
	return "item:" + strconv.FormatInt(id, 10)
}

func windowKey(prefix string, category model.Category, page, pageSize int) string {
	return prefix + ":" + string(category) + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
}

// flightKey は同時取得をまとめるキー。キャッシュの世代を含めることで、
// クリアの前後に開始した取得が合流しないようにする。
func flightKey(epoch uint64, key string) string {
	return strconv.FormatUint(epoch, 10) + "@" + key
}
