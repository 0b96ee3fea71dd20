// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storybrowser"

// Collector はPrometheusメトリクスを収集する実装。
// hackernews.RequestObserver と story.Recorder を満たす。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	pageRequests     *prometheus.CounterVec
	pageLatency      prometheus.Histogram
	itemsDropped     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "上流APIへのリクエスト数（エンドポイント、結果別）",
		}, []string{"endpoint", "result"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "上流APIのレイテンシ（秒）",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "ページ要求数（カテゴリ、キャッシュ結果別）",
		}, []string{"category", "cache"}),
		pageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_assembly_duration_seconds",
			Help:      "キャッシュミス時のページ組み立て時間（秒）",
			Buckets:   prometheus.DefBuckets,
		}),
		itemsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_dropped_total",
			Help:      "取得に失敗してページから除外した記事数",
		}, []string{"category", "reason"}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.pageRequests,
		c.pageLatency,
		c.itemsDropped,
	)

	return c
}

// ObserveUpstreamRequest は上流APIへのリクエスト結果を記録する。
func (c *Collector) ObserveUpstreamRequest(endpoint string, err error, elapsed time.Duration) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.upstreamRequests.WithLabelValues(endpoint, result).Inc()
	c.upstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordPageRequest はページ要求とキャッシュの結果を記録する。
func (c *Collector) RecordPageRequest(category string, cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	c.pageRequests.WithLabelValues(category, result).Inc()
}

// RecordPageLatency はページ組み立て時間を記録する。
func (c *Collector) RecordPageLatency(duration time.Duration) {
	c.pageLatency.Observe(duration.Seconds())
}

// RecordItemDropped はページから除外した記事を記録する。
func (c *Collector) RecordItemDropped(category string, reason string) {
	c.itemsDropped.WithLabelValues(category, reason).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
