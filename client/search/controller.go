package search

import (
	"sync"
	"time"

	"storefront.GO/client/currency"
	"storefront.GO/client/debounce"
	"storefront.GO/client/filters"
)

// Controller connects the persisted filter state, the debounced text inputs
// and the Orchestrator. Discrete choices apply at once; typed text goes through
// the debouncer first.
type Controller struct {
	store *filters.Store
	text  *debounce.Coordinator[filters.TextFields]
	orch  *Orchestrator

	// applyMu orders every store change with the refresh that follows it.
	applyMu sync.Mutex

	mu       sync.Mutex
	currency string
	rates    *currency.Snapshot
}

// NewController reads the initial selection from store and schedules the
// first fetch. textDelay is the debounce window of the text inputs.
func NewController(store *filters.Store, orch *Orchestrator, textDelay time.Duration) *Controller {
	c := &Controller{store: store, orch: orch}
	c.text = debounce.New(store.Filters().Text().Normalize(), textDelay, c.commitText)
	c.text.Normalize(filters.TextFields.Normalize)

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.refresh(false)
	return c
}

// Text returns the value the text inputs should display.
func (c *Controller) Text() filters.TextFields {
	return c.text.Local()
}

// OnTextAdopted registers fn to be told when an outside change replaced the
// text inputs. fn runs while that change is applied and must not call the
// Controller's mutating methods.
func (c *Controller) OnTextAdopted(fn func(filters.TextFields)) {
	c.text.OnAdopt(fn)
}

// EditText records typing in the search or bound inputs.
func (c *Controller) EditText(t filters.TextFields) {
	c.text.Edit(t)
}

// SubmitText sends pending typing immediately.
func (c *Controller) SubmitText() {
	c.text.Flush()
}

// Apply changes filters. The page returns to 1. Text fields the change leaves
// alone keep their committed value, including typing committed meanwhile.
func (c *Controller) Apply(change func(*filters.Values)) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	textChanged := false
	c.store.Update(func(v *filters.Values) {
		before := v.Text()
		change(v)
		textChanged = v.Text() != before
	})
	c.refresh(textChanged)
}

// ClearFilters resets the selection and the page.
func (c *Controller) ClearFilters() {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.store.ResetFilters()
	c.refresh(true)
}

// SetPage moves to page n with the same selection.
func (c *Controller) SetPage(n int) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.store.SetPage(n)
	c.refresh(false)
}

// SetCurrency switches the display currency; price bounds are reconverted.
func (c *Controller) SetCurrency(code string, rates *currency.Snapshot) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.mu.Lock()
	c.currency = code
	c.rates = rates
	c.mu.Unlock()
	c.refresh(false)
}

// Navigated is called after the location changed outside the controller,
// e.g. back navigation.
func (c *Controller) Navigated() {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.refresh(true)
}

// Close stops pending typing and fetches.
func (c *Controller) Close() {
	c.text.Stop()
	c.orch.Close()
}

// commitText writes sent typing into the store. A send that an outside change
// overtook (the coordinator adopted something else since) is dropped.
func (c *Controller) commitText(t filters.TextFields) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	if c.text.Acknowledged() != t {
		return
	}
	c.store.Update(func(v *filters.Values) { *v = v.WithText(t) })
	c.refresh(true)
}

// refresh hands the persisted state to the orchestrator. syncText reports the
// store's text fields to the debouncer. Changes that left the text alone skip
// it, since a commit of newer typing may still be waiting on applyMu.
func (c *Controller) refresh(syncText bool) {
	v := c.store.Filters()
	if syncText {
		c.text.Sync(v.Text())
	}

	c.mu.Lock()
	st := State{Filters: v, Page: c.store.Page(), Currency: c.currency, Rates: c.rates}
	c.mu.Unlock()
	c.orch.Update(st)
}
