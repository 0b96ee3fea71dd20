// Package cache はプロセス内で完結するTTL付きインメモリキャッシュを提供する。
// 読み取り時の遅延失効、ジャニターによる定期掃除、世代番号による
// 追い越し防止付きコミットを備える。
package cache

import (
	"sync"
	"time"
)

// Clock は現在時刻を返す関数。テスト時に差し替える。
type Clock func() time.Time

// entry はキャッシュに格納された値と失効時刻を保持する。
// キャッシュ外に共有されることはない。
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Ticket はBeginで発行される書き込み予約。
// Commit時に同一キーの最新世代かつClear前の予約であることを検証する。
type Ticket struct {
	key   string
	gen   uint64
	epoch uint64
}

// Key は予約対象のキーを返す。
func (t Ticket) Key() string {
	return t.key
}

// Stats はキャッシュの統計情報。
type Stats struct {
	Name        string `json:"name"`
	Entries     int    `json:"entries"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Expirations uint64 `json:"expirations"`
}

// options はNewに渡す設定。
type options struct {
	now             Clock
	cleanupInterval time.Duration
}

// Option はCacheの設定を変更する関数。
type Option func(*options)

// WithClock は時刻の取得元を差し替える。
func WithClock(now Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCleanupInterval はジャニターの掃除間隔を設定する。
// 0以下の場合はジャニターを起動せず、遅延失効のみとなる。
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = d
	}
}

// Cache はキー単位でTTLを管理するスレッドセーフなキャッシュ。
// 書き込みは同一キーに対して後勝ちで、Begin/Commitを使う場合は
// より新しい予約が存在する古い予約のコミットを拒否する。
type Cache[V any] struct {
	name string
	ttl  time.Duration
	now  Clock

	mu          sync.Mutex
	entries     map[string]entry[V]
	gens        map[string]uint64
	epoch       uint64
	hits        uint64
	misses      uint64
	expirations uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New はCacheを生成する。ttlは格納時刻からの有効期間。
func New[V any](name string, ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		entries: make(map[string]entry[V]),
		gens:    make(map[string]uint64),
		stopCh:  make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go c.janitor(o.cleanupInterval)
	}

	return c
}

// Name はキャッシュ名を返す。
func (c *Cache[V]) Name() string {
	return c.name
}

// TTL はエントリの有効期間を返す。
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get は有効なエントリの値を返す。
// 失効済みのエントリはミスとして扱い、その場で削除する。
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.expirations++
		c.misses++
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Set は値を無条件に格納する。失効時刻は現在時刻+TTL。
// 進行中の予約はすべて古くなる。
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	c.storeLocked(key, value)
}

// Begin はキーに対する新しい書き込み予約を発行する。
// 同一キーの以前の予約はこの時点で古くなる。
func (c *Cache[V]) Begin(key string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	return Ticket{key: key, gen: c.gens[key], epoch: c.epoch}
}

// Commit は予約がまだ最新の場合に限り値を格納する。
// 後発の予約やClearによって古くなった予約の場合はfalseを返し、何もしない。
func (c *Cache[V]) Commit(t Ticket, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.epoch != c.epoch || c.gens[t.key] != t.gen {
		return false
	}
	c.storeLocked(t.key, value)
	return true
}

// Delete はエントリを削除する。
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear はすべてのエントリを破棄し、発行済みの予約を無効化する。
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Epoch はClearの実行回数を返す。Clearのたびに増加する。
func (c *Cache[V]) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Len は失効済みを含む格納エントリ数を返す。
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats は統計情報のスナップショットを返す。
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:        c.name,
		Entries:     len(c.entries),
		Hits:        c.hits,
		Misses:      c.misses,
		Expirations: c.expirations,
	}
}

// DeleteExpired は失効済みエントリをすべて削除し、削除件数を返す。
func (c *Cache[V]) DeleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.expirations += uint64(removed)
	return removed
}

// Close はジャニターを停止する。複数回呼び出しても安全。
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache[V]) storeLocked(key string, value V) {
	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *Cache[V]) clearLocked() {
	c.entries = make(map[string]entry[V])
	c.gens = make(map[string]uint64)
	c.epoch++
}

// janitor は一定間隔で失効済みエントリを掃除する。
func (c *Cache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.DeleteExpired()
		case <-c.stopCh:
			return
		}
	}
}
