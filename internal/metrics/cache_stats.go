package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/storybrowser/internal/cache"
)

// StatsSource はキャッシュ統計のスナップショットを返す。
type StatsSource func() []cache.Stats

// cacheStatsCollector はスクレイプ時にキャッシュ統計を読み出す。
type cacheStatsCollector struct {
	source      StatsSource
	entries     *prometheus.Desc
	hits        *prometheus.Desc
	misses      *prometheus.Desc
	expirations *prometheus.Desc
}

// RegisterCacheStats はキャッシュ統計をレジストリに登録する。
func RegisterCacheStats(reg prometheus.Registerer, source StatsSource) {
	labels := []string{"cache"}
	reg.MustRegister(&cacheStatsCollector{
		source: source,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"キャッシュに格納されているエントリ数", labels, nil),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"キャッシュヒット数", labels, nil),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"キャッシュミス数", labels, nil),
		expirations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "expirations_total"),
			"失効により削除されたエントリ数", labels, nil),
	})
}

// Describe はprometheus.Collectorを実装する。
func (c *cacheStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.hits
	ch <- c.misses
	ch <- c.expirations
}

// Collect はprometheus.Collectorを実装する。
func (c *cacheStatsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.source() {
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries), s.Name)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), s.Name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), s.Name)
		ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations), s.Name)
	}
}
