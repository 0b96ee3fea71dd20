package model

// Category は記事一覧の種別（一覧エンドポイントの選択）を表す。
type Category string

const (
	CategoryTop  Category = "top"
	CategoryNew  Category = "new"
	CategoryBest Category = "best"
	CategoryAsk  Category = "ask"
	CategoryShow Category = "show"
	CategoryJob  Category = "job"
)

// CategoryInfo はカテゴリと表示名の組。
type CategoryInfo struct {
	ID    Category
	Label string
}

// Categories はサポートするカテゴリの一覧（表示順）。
var Categories = []CategoryInfo{
	{ID: CategoryTop, Label: "Top"},
	{ID: CategoryNew, Label: "New"},
	{ID: CategoryBest, Label: "Best"},
	{ID: CategoryAsk, Label: "Ask HN"},
	{ID: CategoryShow, Label: "Show HN"},
	{ID: CategoryJob, Label: "Jobs"},
}

// ParseCategory は文字列をCategoryに変換する。未知の値の場合はfalseを返す。
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c.ID) == s {
			return c.ID, true
		}
	}
	return "", false
}

// Label はカテゴリの表示名を返す。
func (c Category) Label() string {
	for _, info := range Categories {
		if info.ID == c {
			return info.Label
		}
	}
	return "Stories"
}
