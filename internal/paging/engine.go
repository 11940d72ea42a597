// Package paging accumulates pages of payment records for one view context at
// a time.
//
// The engine is driven by explicit signals (first load, next page, near-end,
// pull-refresh, removal) rather than by any UI event system. Two guards keep
// it consistent: an in-flight flag so pages of one context are fetched and
// applied strictly in order, and a generation token so responses issued for a
// superseded context are dropped on arrival. There is no request
// cancellation; stale work simply finishes and is discarded.
package paging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spend/internal/cache"
	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/grouping"
	"github.com/Veraticus/spend/internal/model"
)

// Defaults used when no option overrides them.
const (
	DefaultPageSize         = 20
	DefaultNearEndThreshold = 5
	viewCacheSize           = 8
)

// Fetcher fetches one page of payments for a scope. Pages are 1-based; a page
// shorter than size means there is nothing after it.
type Fetcher interface {
	FetchPage(ctx context.Context, scope model.Scope, page, size int) ([]model.Payment, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, scope model.Scope, page, size int) ([]model.Payment, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, scope model.Scope, page, size int) ([]model.Payment, error) {
	return f(ctx, scope, page, size)
}

// Deleter deletes a payment on the server.
type Deleter interface {
	DeletePayment(ctx context.Context, id string) error
}

// Cursor tracks pagination progress for the active context.
type Cursor struct {
	Page      int
	Size      int
	Exhausted bool
}

// Result describes the outcome of a load.
type Result struct {
	// Records holds the records this load added to the set.
	Records []model.Payment
	// Exhausted reports the cursor state after the load.
	Exhausted bool
	// Skipped is set when no request was issued.
	Skipped bool
	// Stale is set when the response belonged to a superseded generation and
	// was dropped.
	Stale bool
}

type viewKey struct {
	context   string
	version   uint64
	hideEmpty bool
}

// Engine accumulates payment pages for the current view context.
// It is safe for use from multiple goroutines; the lock is never held across
// a fetch.
type Engine struct {
	fetcher    Fetcher
	deleter    Deleter
	loc        *time.Location
	views      *cache.LRU[viewKey, []model.DateBucket]
	seen       map[string]struct{}
	records    []model.Payment
	vc         model.ViewContext
	cursor     Cursor
	pageSize   int
	nearEnd    int
	generation uint64
	version    uint64
	mu         sync.Mutex
	loading    bool
	loaded     bool
	started    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the page size requested from the fetcher.
func WithPageSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// WithNearEndThreshold sets how many rows from the end OnNearEnd starts
// loading the next page.
func WithNearEndThreshold(rows int) Option {
	return func(e *Engine) {
		if rows >= 0 {
			e.nearEnd = rows
		}
	}
}

// WithDeleter enables Delete.
func WithDeleter(d Deleter) Option {
	return func(e *Engine) {
		e.deleter = d
	}
}

// WithLocation sets the calendar used for day grouping. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New creates an engine over fetcher.
func New(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		loc:      time.Local,
		pageSize: DefaultPageSize,
		nearEnd:  DefaultNearEndThreshold,
		seen:     make(map[string]struct{}),
		vc:       model.DefaultViewContext(),
		views:    cache.NewLRU[viewKey, []model.DateBucket](viewCacheSize, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cursor = Cursor{Size: e.pageSize}
	return e
}

// LoadFirstPage fetches page 1 for vc and replaces the accumulated set with
// it. Every call starts a new generation, so a response to an earlier call
// that arrives later is dropped (last request wins).
//
// Switching to a different context clears the set immediately, so records of
// the old context are never shown under the new one. Refreshing the same
// context keeps the current set until the new page arrives, and keeps it if
// the fetch fails.
func (e *Engine) LoadFirstPage(ctx context.Context, vc model.ViewContext) (Result, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	size := e.pageSize
	if !e.started || !vc.Equal(e.vc) {
		e.resetLocked(vc)
	}
	e.started = true
	e.loading = true
	e.mu.Unlock()

	slog.Debug("Loading first page",
		"scope", vc.Scope.String(),
		"generation", gen,
		"page_size", size)

	records, err := e.fetcher.FetchPage(ctx, vc.Scope, 1, size)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		slog.Debug("Dropping stale first page", "generation", gen, "current", e.generation)
		return Result{Stale: true}, nil
	}
	e.loading = false

	if err != nil {
		return Result{Exhausted: e.cursor.Exhausted}, fetchError(err)
	}

	e.records = e.records[:0]
	e.seen = make(map[string]struct{}, len(records))
	added := e.appendLocked(records)
	e.cursor = Cursor{Page: 1, Size: size, Exhausted: len(records) < size}
	e.loaded = true
	e.version++

	return Result{Records: added, Exhausted: e.cursor.Exhausted}, nil
}

// LoadNextPage fetches the page after the cursor and appends it. It returns a
// skipped result without issuing a request when the list is exhausted, a load
// is already in flight, or no first page has been loaded yet.
func (e *Engine) LoadNextPage(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if !e.loaded || e.loading || e.cursor.Exhausted {
		res := Result{Skipped: true, Exhausted: e.cursor.Exhausted}
		e.mu.Unlock()
		return res, nil
	}
	gen := e.generation
	scope := e.vc.Scope
	next := e.cursor.Page + 1
	size := e.cursor.Size
	e.loading = true
	e.mu.Unlock()

	slog.Debug("Loading next page", "scope", scope.String(), "page", next, "generation", gen)

	records, err := e.fetcher.FetchPage(ctx, scope, next, size)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		slog.Debug("Dropping stale page", "page", next, "generation", gen, "current", e.generation)
		return Result{Stale: true}, nil
	}
	e.loading = false

	if err != nil {
		return Result{Exhausted: e.cursor.Exhausted}, fetchError(err)
	}

	added := e.appendLocked(records)
	e.cursor.Page = next
	e.cursor.Exhausted = len(records) < size
	e.version++

	return Result{Records: added, Exhausted: e.cursor.Exhausted}, nil
}

// OnNearEnd is the scroll-proximity signal: index is the position of the
// focused row among total rendered rows. The next page is requested once the
// focus is within the threshold of the last row.
func (e *Engine) OnNearEnd(ctx context.Context, index, total int) (Result, error) {
	e.mu.Lock()
	threshold := e.nearEnd
	e.mu.Unlock()

	if total-index > threshold {
		return Result{Skipped: true}, nil
	}
	return e.LoadNextPage(ctx)
}

// OnPullRefresh reloads the first page of the current context. It is skipped
// until a context has been loaded at least once.
func (e *Engine) OnPullRefresh(ctx context.Context) (Result, error) {
	e.mu.Lock()
	started := e.started
	vc := e.vc
	e.mu.Unlock()

	if !started {
		return Result{Skipped: true}, nil
	}
	return e.LoadFirstPage(ctx, vc)
}

// Remove drops a record from the accumulated set. The cursor is untouched and
// nothing is refetched. It reports whether the record was present.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.records {
		if p.ID == id {
			e.records = append(e.records[:i], e.records[i+1:]...)
			delete(e.seen, id)
			e.version++
			return true
		}
	}
	return false
}

// Delete deletes the payment on the server and, only once that succeeded,
// removes it from the set. On failure the set is unchanged.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if e.deleter == nil {
		return fmt.Errorf("%w: no deleter configured", common.ErrDeleteFailed)
	}

	if err := e.deleter.DeletePayment(ctx, id); err != nil {
		if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, common.ErrDeleteFailed) {
			return err
		}
		return fmt.Errorf("%w: payment %s: %w", common.ErrDeleteFailed, id, err)
	}

	e.Remove(id)
	return nil
}

// View returns the grouped, currency-filtered buckets for the current set and
// context. Results are memoized per set version and context; callers must
// treat the returned slices as read-only.
func (e *Engine) View(hideEmpty bool) []model.DateBucket {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := viewKey{context: e.vc.Key(), version: e.version, hideEmpty: hideEmpty}
	if buckets, ok := e.views.Get(key); ok {
		return buckets
	}

	buckets := grouping.View(e.records, e.vc, e.loc, hideEmpty)
	e.views.Set(key, buckets)
	return buckets
}

// Records returns a copy of the accumulated set in page order.
func (e *Engine) Records() []model.Payment {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Payment, len(e.records))
	copy(out, e.records)
	return out
}

// Cursor returns the current cursor.
func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Context returns the active view context.
func (e *Engine) Context() model.ViewContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vc
}

// Loading reports whether a load for the current generation is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Version increases on every change to the accumulated set.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

func (e *Engine) resetLocked(vc model.ViewContext) {
	e.vc = vc
	e.records = nil
	e.seen = make(map[string]struct{})
	e.cursor = Cursor{Size: e.pageSize}
	e.loaded = false
	e.version++
}

// appendLocked appends records not seen before and returns the ones added.
func (e *Engine) appendLocked(records []model.Payment) []model.Payment {
	added := make([]model.Payment, 0, len(records))
	for _, p := range records {
		if _, dup := e.seen[p.ID]; dup {
			slog.Debug("Skipping duplicate payment", "id", p.ID)
			continue
		}
		e.seen[p.ID] = struct{}{}
		e.records = append(e.records, p)
		added = append(added, p)
	}
	return added
}

func fetchError(err error) error {
	if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, common.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
}
