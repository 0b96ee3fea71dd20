package story

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/storybrowser/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeClock はテスト用の手動で進める時計。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeUpstream はUpstreamのテスト用実装。呼び出し回数を記録する。
type fakeUpstream struct {
	mu sync.Mutex

	listings   map[model.Category][]int64
	listingErr error
	items      map[int64]*model.Item
	itemErrs   map[int64]error
	delays     map[int64]time.Duration

	// listingGate/itemGate がnilでない場合、閉じられるまで応答を保留する
	listingGate chan struct{}
	itemGate    chan struct{}
	// listingStarted/itemStarted には呼び出し開始時に通知する
	listingStarted chan model.Category
	itemStarted    chan int64

	listingCalls map[model.Category]int
	itemCalls    map[int64]int
	inFlight     int
	maxInFlight  int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		listings:       make(map[model.Category][]int64),
		items:          make(map[int64]*model.Item),
		itemErrs:       make(map[int64]error),
		delays:         make(map[int64]time.Duration),
		listingStarted: make(chan model.Category, 100),
		itemStarted:    make(chan int64, 1000),
		listingCalls:   make(map[model.Category]int),
		itemCalls:      make(map[int64]int),
	}
}

// withStories は連番IDの一覧と対応する記事を登録する。
func (f *fakeUpstream) withStories(category model.Category, ids ...int64) *fakeUpstream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[category] = ids
	for _, id := range ids {
		f.items[id] = &model.Item{
			ID:    id,
			Title: fmt.Sprintf("story %d", id),
			Kind:  model.ItemKindStory,
		}
	}
	return f
}

func (f *fakeUpstream) GetStoryIDs(ctx context.Context, category model.Category) ([]int64, error) {
	f.mu.Lock()
	f.listingCalls[category]++
	gate := f.listingGate
	f.mu.Unlock()

	f.listingStarted <- category
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	ids, ok := f.listings[category]
	if !ok {
		return []int64{}, nil
	}
	return append([]int64(nil), ids...), nil
}

func (f *fakeUpstream) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	f.mu.Lock()
	f.itemCalls[id]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	gate := f.itemGate
	delay := f.delays[id]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	f.itemStarted <- id
	if gate != nil {
		<-gate
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.itemErrs[id]; ok {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("no such item %d", id)
	}
	return item, nil
}

func (f *fakeUpstream) setListingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listingErr = err
}

func (f *fakeUpstream) setItem(item *model.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
}

func (f *fakeUpstream) setItemErr(id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemErrs[id] = err
}

func (f *fakeUpstream) listingCallCount(category model.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listingCalls[category]
}

func (f *fakeUpstream) itemCallCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.itemCalls[id]
}

func (f *fakeUpstream) totalItemCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.itemCalls {
		total += n
	}
	return total
}

func (f *fakeUpstream) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// recorderMock はRecorderのテスト用実装。
type recorderMock struct {
	mu      sync.Mutex
	hits    int
	misses  int
	dropped map[string]int
}

func newRecorderMock() *recorderMock {
	return &recorderMock{dropped: make(map[string]int)}
}

func (r *recorderMock) RecordPageRequest(_ string, cacheHit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cacheHit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *recorderMock) RecordPageLatency(time.Duration) {}

func (r *recorderMock) RecordItemDropped(_ string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped[reason]++
}

// newTestService はフェイクの上流と時計でServiceを構築する。
func newTestService(t *testing.T, up *fakeUpstream, clock *fakeClock, buf *bytes.Buffer) *Service {
	t.Helper()
	return newTestServiceWithRecorder(t, up, clock, buf, nil, 0)
}

func newTestServiceWithRecorder(t *testing.T, up *fakeUpstream, clock *fakeClock, buf *bytes.Buffer, rec Recorder, maxConcurrent int) *Service {
	t.Helper()
	s := NewService(up, rec, newTestLogger(buf), Options{
		CacheDuration: 5 * time.Minute,
		MaxConcurrent: maxConcurrent,
		Clock:         clock.Now,
	})
	t.Cleanup(s.Close)
	return s
}

// seq はfrom以上to以下の連番を返す。
func seq(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func itemIDs(items []*model.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
