// Package search drives the product list and the facet counts from the
// current filter state. Each of the two results is fetched on its own channel;
// a newer update supersedes the older attempt so only the latest result is shown.
package search

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront.GO/client/filters"
	"storefront.GO/client/request"
)

// DefaultDelay batches updates that arrive together, such as a filter change
// and the page reset it causes.
const DefaultDelay = 50 * time.Millisecond

// View receives results. Calls are serialized and may re-enter the Orchestrator.
type View interface {
	SetLoading(loading bool)
	ShowProducts(page ProductPage)
	ShowError(err error, retry func())
	ShowCounts(counts filters.Counts)
	CountsFailed(err error)
	ScrollToTop()
}

// Config tunes an Orchestrator.
type Config struct {
	Delay    time.Duration
	PageSize int
	Logger   *zap.Logger
}

type channel struct {
	name   string
	gen    uint64
	key    string
	cancel context.CancelFunc
	timer  *time.Timer
}

// supersede stops the pending timer and cancels the in-flight attempt.
// The returned generation identifies the next attempt.
func (ch *channel) supersede() uint64 {
	if ch.timer != nil {
		ch.timer.Stop()
		ch.timer = nil
	}
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}
	ch.gen++
	return ch.gen
}

// Orchestrator schedules catalog queries for the latest State.
type Orchestrator struct {
	catalog  Catalog
	view     View
	delay    time.Duration
	pageSize int
	logger   *zap.Logger

	// applyMu serializes view calls and is always taken before mu.
	applyMu sync.Mutex

	mu       sync.Mutex
	products channel
	counts   channel
	last     State
	updated  bool
	settled  bool
	closed   bool
}

// New returns an idle Orchestrator; nothing is fetched until Update.
func New(catalog Catalog, view View, cfg Config) *Orchestrator {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Orchestrator{
		catalog:  catalog,
		view:     view,
		delay:    cfg.Delay,
		pageSize: cfg.PageSize,
		logger:   cfg.Logger,
		products: channel{name: "products"},
		counts:   channel{name: "counts"},
	}
}

// Update schedules the product list for st, and the facet counts when the
// filter selection or currency changed. Pagination and sorting never refetch
// counts. An update equal to the last one is ignored.
func (o *Orchestrator) Update(st State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.last = st
	o.updated = true

	list := ListParams(st, o.pageSize)
	if key := list.Encode(); key != o.products.key {
		o.products.key = key
		o.scheduleLocked(&o.products, list, o.runProducts)
	}
	counts := FilterParams(st)
	if key := counts.Encode(); key != o.counts.key {
		o.counts.key = key
		o.scheduleLocked(&o.counts, counts, o.runCounts)
	}
}

// Retry refetches both results for the last state.
func (o *Orchestrator) Retry() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || !o.updated {
		return
	}
	o.scheduleLocked(&o.products, ListParams(o.last, o.pageSize), o.runProducts)
	o.scheduleLocked(&o.counts, FilterParams(o.last), o.runCounts)
}

// Close cancels pending and in-flight attempts. Results arriving afterwards
// are dropped.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.products.supersede()
	o.counts.supersede()
}

type runFunc func(ctx context.Context, gen uint64, params url.Values)

func (o *Orchestrator) scheduleLocked(ch *channel, params url.Values, run runFunc) {
	gen := ch.supersede()
	ch.timer = time.AfterFunc(o.delay, func() { o.start(ch, gen, params, run) })
}

func (o *Orchestrator) start(ch *channel, gen uint64, params url.Values, run runFunc) {
	o.mu.Lock()
	if ch.gen != gen || o.closed {
		o.mu.Unlock()
		return
	}
	ch.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	ch.cancel = cancel
	o.mu.Unlock()

	o.logger.Debug("catalog fetch started", zap.String("channel", ch.name), zap.Uint64("generation", gen))
	defer cancel()
	run(ctx, gen, params)
}

// current reports whether gen is still the latest attempt on ch and, if so,
// releases its cancel handle.
func (o *Orchestrator) current(ch *channel, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ch.gen != gen || o.closed {
		return false
	}
	ch.cancel = nil
	return true
}

func (o *Orchestrator) runProducts(ctx context.Context, gen uint64, params url.Values) {
	o.applyMu.Lock()
	if o.isCurrent(&o.products, gen) {
		o.view.SetLoading(true)
	}
	o.applyMu.Unlock()

	page, err := o.catalog.ListProducts(ctx, params)

	o.applyMu.Lock()
	defer o.applyMu.Unlock()
	if request.IsCanceled(err) || !o.current(&o.products, gen) {
		o.logger.Debug("product fetch superseded", zap.Uint64("generation", gen))
		return
	}

	o.mu.Lock()
	first := !o.settled
	o.settled = true
	o.mu.Unlock()

	o.view.SetLoading(false)
	if err != nil {
		o.logger.Warn("product fetch failed", zap.Error(err))
		o.view.ShowError(err, o.Retry)
		return
	}
	o.view.ShowProducts(page)
	if !first {
		o.view.ScrollToTop()
	}
}

func (o *Orchestrator) runCounts(ctx context.Context, gen uint64, params url.Values) {
	counts, err := o.catalog.FilterCounts(ctx, params)

	o.applyMu.Lock()
	defer o.applyMu.Unlock()
	if request.IsCanceled(err) || !o.current(&o.counts, gen) {
		return
	}
	if err != nil {
		o.logger.Warn("filter counts fetch failed", zap.Error(err))
		o.view.CountsFailed(err)
		return
	}
	o.view.ShowCounts(counts)
}

func (o *Orchestrator) isCurrent(ch *channel, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return ch.gen == gen && !o.closed
}
