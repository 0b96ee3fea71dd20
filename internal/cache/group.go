package cache

// Clearable は複数キャッシュの一括クリアに参加できるキャッシュ。
// このパッケージのCacheのみが実装する。
type Clearable interface {
	lock()
	unlock()
	clearLocked()
}

func (c *Cache[V]) lock()   { c.mu.Lock() }
func (c *Cache[V]) unlock() { c.mu.Unlock() }

// ClearAll は渡されたすべてのキャッシュのロックを取得してから一括でクリアする。
// 途中状態（一部だけクリア済み）が他のゴルーチンから観測されることはない。
// ロックは常に引数の順で取得するため、呼び出し側は順序を固定すること。
func ClearAll(caches ...Clearable) {
	for _, c := range caches {
		c.lock()
	}
	for _, c := range caches {
		c.clearLocked()
	}
	for i := len(caches) - 1; i >= 0; i-- {
		caches[i].unlock()
	}
}
