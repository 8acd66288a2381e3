package search

import (
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/client/filters"
)

func newController(t *testing.T, rawQuery string) (*Controller, *fakeCatalog, *filters.MemoryLocation) {
	t.Helper()
	cat := &fakeCatalog{auto: true}
	loc := filters.NewMemoryLocation(rawQuery)
	o := New(cat, &fakeView{}, Config{Delay: testDelay})
	c := NewController(filters.NewStore(loc), o, testDelay)
	t.Cleanup(c.Close)
	return c, cat, loc
}

func TestController_InitialFetchUsesLocation(t *testing.T) {
	_, cat, _ := newController(t, "search=iris&page=3")

	call := waitLists(t, cat, 1)[0]
	assert.Equal(t, "iris", call.params.Get(ParamSearch))
	assert.Equal(t, "3", call.params.Get(ParamPage))
}

func TestController_ApplyResetsPage(t *testing.T) {
	c, cat, loc := newController(t, "page=4")
	waitLists(t, cat, 1)

	c.Apply(func(v *filters.Values) { v.Gender = "female" })

	assert.Equal(t, "gender=female", loc.String())
	call := waitLists(t, cat, 2)[1]
	assert.Equal(t, "1", call.params.Get(ParamPage))
	assert.Equal(t, "female", call.params.Get(ParamGender))
}

func TestController_TypingIsDebouncedIntoOneFetch(t *testing.T) {
	c, cat, loc := newController(t, "")
	waitLists(t, cat, 1)

	c.EditText(filters.TextFields{Search: "s"})
	c.EditText(filters.TextFields{Search: "sa"})
	c.EditText(filters.TextFields{Search: "sandal", MinPrice: "20"})

	require.Eventually(t, func() bool { return len(cat.listCalls()) == 2 }, time.Second, 2*time.Millisecond)
	time.Sleep(4 * testDelay)
	assert.Len(t, cat.listCalls(), 2)
	assert.Equal(t, "minPrice=20&search=sandal", loc.String())
	assert.Equal(t, "sandal", c.Text().Search)
}

func TestController_ClearFiltersAdoptsIntoInputs(t *testing.T) {
	c, cat, loc := newController(t, "search=tobacco&minPrice=10")
	waitLists(t, cat, 1)
	var adopted []filters.TextFields
	c.OnTextAdopted(func(tf filters.TextFields) { adopted = append(adopted, tf) })

	c.EditText(filters.TextFields{Search: "tobacco vanille", MinPrice: "10"})
	c.ClearFilters()

	assert.Equal(t, "", loc.String())
	assert.Equal(t, filters.TextFields{}, c.Text())
	assert.Equal(t, []filters.TextFields{{}}, adopted)

	time.Sleep(4 * testDelay)
	assert.Equal(t, "", loc.String(), "the pending edit must not resurrect the cleared search")
}

func TestController_PauseAfterSpaceKeepsTypedText(t *testing.T) {
	c, cat, loc := newController(t, "")
	waitLists(t, cat, 1)
	var adopted atomic.Int32
	c.OnTextAdopted(func(filters.TextFields) { adopted.Add(1) })

	c.EditText(filters.TextFields{Search: "rose "})
	require.Eventually(t, func() bool { return loc.String() == "search=rose" }, time.Second, 2*time.Millisecond)
	time.Sleep(2 * testDelay)
	assert.Equal(t, "rose ", c.Text().Search)

	c.EditText(filters.TextFields{Search: c.Text().Search + "oud"})
	require.Eventually(t, func() bool { return loc.String() == "search=rose+oud" }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "rose oud", c.Text().Search)
	assert.Zero(t, adopted.Load())
}

func TestController_TypingCommittedDuringApplyIsKept(t *testing.T) {
	c, cat, loc := newController(t, "")
	waitLists(t, cat, 1)

	c.EditText(filters.TextFields{Search: "amber"})
	c.Apply(func(v *filters.Values) {
		time.Sleep(4 * testDelay)
		v.Gender = "female"
	})

	require.Eventually(t, func() bool { return loc.String() == "gender=female&search=amber" }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "amber", c.Text().Search)
	time.Sleep(4 * testDelay)
	assert.Equal(t, "gender=female&search=amber", loc.String())
	last := cat.listCalls()[len(cat.listCalls())-1]
	assert.Equal(t, "amber", last.params.Get(ParamSearch))
	assert.Equal(t, "female", last.params.Get(ParamGender))
}

func TestController_NavigationDropsPendingTyping(t *testing.T) {
	c, cat, loc := newController(t, "search=iris")
	waitLists(t, cat, 1)

	c.EditText(filters.TextFields{Search: "iris pallida"})
	loc.Replace(url.Values{"gender": {"male"}})
	c.Navigated()

	assert.Equal(t, filters.TextFields{}, c.Text())
	time.Sleep(4 * testDelay)
	assert.Equal(t, "gender=male", loc.String())
}
