// Package hackernews はHacker News APIの読み取りクライアントを提供する。
// カテゴリ別の記事ID一覧と記事単体の取得のみを扱う。
package hackernews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/storybrowser/internal/model"
)

const (
	// DefaultBaseURL は公式APIのベースURL。
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	// maxResponseSize はレスポンスボディの読み取り上限（4MB）。
	maxResponseSize = 4 * 1024 * 1024
	userAgent       = "StoryBrowser/1.0"
)

// エンドポイント種別（メトリクスのラベルとして使用する）
const (
	EndpointListing = "listing"
	EndpointItem    = "item"
)

var (
	// ErrItemNotFound は記事のレスポンスボディがnullまたは空の場合に返される。
	ErrItemNotFound = errors.New("item not found")
	// ErrItemUnavailable は記事が削除済みまたはdeadの場合に返される。
	ErrItemUnavailable = errors.New("item is deleted or dead")
)

// StatusError は上流APIが2xx以外のステータスを返した場合のエラー。
type StatusError struct {
	StatusCode int
	URL        string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.URL)
}

// Sanitizer は記事本文のHTMLを無害化する。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// RequestObserver は上流リクエストの結果を受け取る。メトリクス収集に使用する。
type RequestObserver interface {
	ObserveUpstreamRequest(endpoint string, err error, elapsed time.Duration)
}

// itemPayload は /item/{id}.json のレスポンス。
type itemPayload struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithRateLimiter は上流へのリクエスト頻度を制限する。nilの場合は無制限。
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithSanitizer は記事本文のサニタイザーを設定する。
func WithSanitizer(s Sanitizer) Option {
	return func(c *Client) {
		c.sanitizer = s
	}
}

// WithObserver はリクエスト結果の通知先を設定する。
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client はHacker News APIのクライアント。
// 読み取り専用で副作用を持たないため、複数のゴルーチンから同時に使用できる。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	limiter    *rate.Limiter
	sanitizer  Sanitizer
	observer   RequestObserver
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLが空の場合はDefaultBaseURLを使用する。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStoryIDs はカテゴリの全記事ID一覧を上流の順序のまま返す。
// 一覧自体はページングされていない。nullのレスポンスは空の一覧として扱う。
func (c *Client) GetStoryIDs(ctx context.Context, category model.Category) ([]int64, error) {
	reqURL := fmt.Sprintf("%s/%sstories.json", c.baseURL, category)

	var ids []int64
	start := time.Now()
	err := c.getJSON(ctx, reqURL, &ids)
	c.observe(EndpointListing, err, time.Since(start))
	if err != nil {
		c.logger.Debug("記事ID一覧の取得に失敗しました",
			slog.String("category", string(category)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// GetItem は記事を1件取得する。
// レスポンスがnullの場合はErrItemNotFound、削除済みまたはdeadの場合は
// ErrItemUnavailableを返す。
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	reqURL := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)

	var payload *itemPayload
	start := time.Now()
	err := c.getJSON(ctx, reqURL, &payload)
	if err == nil {
		switch {
		case payload == nil:
			err = ErrItemNotFound
		case payload.Deleted || payload.Dead:
			err = ErrItemUnavailable
		}
	}
	c.observe(EndpointItem, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return c.toItem(id, payload), nil
}

// toItem はレスポンスをドメインモデルに変換する。
func (c *Client) toItem(id int64, p *itemPayload) *model.Item {
	if p.ID == 0 {
		p.ID = id
	}

	text := p.Text
	if c.sanitizer != nil && text != "" {
		text = c.sanitizer.Sanitize(text)
	}

	kind := model.ItemKind(p.Type)
	if kind == "" {
		kind = model.ItemKindStory
	}

	return &model.Item{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.By,
		Score:        max(p.Score, 0),
		CreatedAt:    p.Time,
		CommentCount: max(p.Descendants, 0),
		Kind:         kind,
		TargetURL:    p.URL,
		Text:         text,
	}
}

// getJSON はGETリクエストを送信し、レスポンスボディをdstにデコードする。
// 空のボディはJSONのnullとして扱う。
func (c *Client) getJSON(ctx context.Context, reqURL string, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		body = []byte("null")
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return nil
}

func (c *Client) observe(endpoint string, err error, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamRequest(endpoint, err, elapsed)
	}
}
