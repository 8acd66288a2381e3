package search

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/client/filters"
)

const testDelay = 20 * time.Millisecond

type listCall struct {
	params url.Values
	ctx    context.Context
	reply  chan listReply
}

type listReply struct {
	page ProductPage
	err  error
}

type fakeCatalog struct {
	mu          sync.Mutex
	lists       []*listCall
	countParams []url.Values
	countsErr   error
	auto        bool
}

func (c *fakeCatalog) ListProducts(ctx context.Context, params url.Values) (ProductPage, error) {
	call := &listCall{params: params, ctx: ctx, reply: make(chan listReply, 1)}
	c.mu.Lock()
	c.lists = append(c.lists, call)
	auto := c.auto
	c.mu.Unlock()
	if auto {
		return ProductPage{Total: 1, Page: 1}, nil
	}
	select {
	case r := <-call.reply:
		return r.page, r.err
	case <-ctx.Done():
		return ProductPage{}, ctx.Err()
	}
}

func (c *fakeCatalog) FilterCounts(_ context.Context, params url.Values) (filters.Counts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countParams = append(c.countParams, params)
	if c.countsErr != nil {
		return nil, c.countsErr
	}
	return filters.Counts{filters.FacetGender: {"unisex": 3}}, nil
}

func (c *fakeCatalog) listCalls() []*listCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*listCall(nil), c.lists...)
}

func (c *fakeCatalog) countCalls() []url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]url.Values(nil), c.countParams...)
}

type viewState struct {
	loading      bool
	pages        []ProductPage
	errs         []error
	retry        func()
	counts       []filters.Counts
	countsFailed []error
	scrolls      int
}

type fakeView struct {
	mu sync.Mutex
	viewState
}

func (v *fakeView) SetLoading(l bool) { v.mu.Lock(); v.loading = l; v.mu.Unlock() }
func (v *fakeView) ShowProducts(p ProductPage) {
	v.mu.Lock()
	v.pages = append(v.pages, p)
	v.mu.Unlock()
}
func (v *fakeView) ShowError(err error, retry func()) {
	v.mu.Lock()
	v.errs = append(v.errs, err)
	v.retry = retry
	v.mu.Unlock()
}
func (v *fakeView) ShowCounts(c filters.Counts) {
	v.mu.Lock()
	v.counts = append(v.counts, c)
	v.mu.Unlock()
}
func (v *fakeView) CountsFailed(err error) {
	v.mu.Lock()
	v.countsFailed = append(v.countsFailed, err)
	v.mu.Unlock()
}
func (v *fakeView) ScrollToTop() { v.mu.Lock(); v.scrolls++; v.mu.Unlock() }

func (v *fakeView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return viewState{
		loading:      v.loading,
		pages:        append([]ProductPage(nil), v.pages...),
		errs:         append([]error(nil), v.errs...),
		retry:        v.retry,
		counts:       append([]filters.Counts(nil), v.counts...),
		countsFailed: append([]error(nil), v.countsFailed...),
		scrolls:      v.scrolls,
	}
}

func stateWith(search string, page int) State {
	v := filters.Default()
	v.Search = search
	return State{Filters: v, Page: page}
}

func waitLists(t *testing.T, cat *fakeCatalog, n int) []*listCall {
	t.Helper()
	require.Eventually(t, func() bool { return len(cat.listCalls()) >= n }, time.Second, 2*time.Millisecond)
	return cat.listCalls()
}

func TestUpdate_RapidChangesSendOneRequestWithLatestValues(t *testing.T) {
	cat := &fakeCatalog{}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("rose", 1))
	o.Update(stateWith("rose oud", 1))

	waitLists(t, cat, 1)
	time.Sleep(3 * testDelay)
	calls := cat.listCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "rose oud", calls[0].params.Get(ParamSearch))
	assert.Len(t, cat.countCalls(), 1)
}

func TestUpdate_SupersededResultIsDiscarded(t *testing.T) {
	cat := &fakeCatalog{}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("amber", 1))
	first := waitLists(t, cat, 1)[0]

	o.Update(stateWith("amber", 2))
	second := waitLists(t, cat, 2)[1]

	assert.ErrorIs(t, first.ctx.Err(), context.Canceled, "the older attempt is cancelled")
	second.reply <- listReply{page: ProductPage{Page: 2}}
	require.Eventually(t, func() bool { return len(view.snapshot().pages) == 1 }, time.Second, 2*time.Millisecond)

	// a late reply for the first attempt must never replace the second
	first.reply <- listReply{page: ProductPage{Page: 1}}
	time.Sleep(3 * testDelay)
	got := view.snapshot()
	require.Len(t, got.pages, 1)
	assert.Equal(t, 2, got.pages[0].Page)
	assert.Empty(t, got.errs, "cancellation is never shown as an error")
	assert.False(t, got.loading)
}

func TestUpdate_ScrollLatch(t *testing.T) {
	cat := &fakeCatalog{auto: true}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("", 1))
	require.Eventually(t, func() bool { return len(view.snapshot().pages) == 1 }, time.Second, 2*time.Millisecond)
	assert.Zero(t, view.snapshot().scrolls, "initial load keeps the scroll position")

	o.Update(stateWith("", 2))
	require.Eventually(t, func() bool { return len(view.snapshot().pages) == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, view.snapshot().scrolls)
}

func TestUpdate_PageChangeDoesNotRefetchCounts(t *testing.T) {
	cat := &fakeCatalog{auto: true}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("vetiver", 1))
	require.Eventually(t, func() bool { return len(view.snapshot().counts) == 1 }, time.Second, 2*time.Millisecond)

	o.Update(stateWith("vetiver", 3))
	waitLists(t, cat, 2)
	time.Sleep(3 * testDelay)
	assert.Len(t, cat.countCalls(), 1)

	o.Update(stateWith("vetiver", 3))
	time.Sleep(3 * testDelay)
	assert.Len(t, cat.listCalls(), 2, "an identical update is ignored")
}

func TestUpdate_CountsFailureLeavesProductsAlone(t *testing.T) {
	boom := errors.New("counts unavailable")
	cat := &fakeCatalog{auto: true, countsErr: boom}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("", 1))
	require.Eventually(t, func() bool {
		s := view.snapshot()
		return len(s.pages) == 1 && len(s.countsFailed) == 1
	}, time.Second, 2*time.Millisecond)

	got := view.snapshot()
	assert.ErrorIs(t, got.countsFailed[0], boom)
	assert.Empty(t, got.errs)
	assert.Empty(t, got.counts)
}

func TestUpdate_ErrorOffersRetry(t *testing.T) {
	cat := &fakeCatalog{}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})
	defer o.Close()

	o.Update(stateWith("leather", 1))
	waitLists(t, cat, 1)[0].reply <- listReply{err: errors.New("server exploded")}
	require.Eventually(t, func() bool { return len(view.snapshot().errs) == 1 }, time.Second, 2*time.Millisecond)

	retry := view.snapshot().retry
	require.NotNil(t, retry)
	retry()
	call := waitLists(t, cat, 2)[1]
	assert.Equal(t, "leather", call.params.Get(ParamSearch))
	call.reply <- listReply{page: ProductPage{Total: 4}}
	require.Eventually(t, func() bool { return len(view.snapshot().pages) == 1 }, time.Second, 2*time.Millisecond)
}

func TestClose_DropsInFlightResult(t *testing.T) {
	cat := &fakeCatalog{}
	view := &fakeView{}
	o := New(cat, view, Config{Delay: testDelay})

	o.Update(stateWith("", 1))
	call := waitLists(t, cat, 1)[0]
	o.Close()

	assert.ErrorIs(t, call.ctx.Err(), context.Canceled)
	o.Update(stateWith("later", 1))
	time.Sleep(3 * testDelay)
	assert.Len(t, cat.listCalls(), 1)
	assert.Empty(t, view.snapshot().pages)
	assert.Empty(t, view.snapshot().errs)
}
