package debounce

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fields struct {
	Search   string
	MinPrice string
}

type recorder struct {
	mu   sync.Mutex
	sent []fields
}

func (r *recorder) send(v fields) {
	r.mu.Lock()
	r.sent = append(r.sent, v)
	r.mu.Unlock()
}

func (r *recorder) values() []fields {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fields(nil), r.sent...)
}

const delay = 30 * time.Millisecond

func TestEdit_SendsLatestOnceAfterQuietPeriod(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, delay, rec.send)

	c.Edit(fields{Search: "o"})
	c.Edit(fields{Search: "ou"})
	c.Edit(fields{Search: "oud"})

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * delay)
	assert.Equal(t, []fields{{Search: "oud"}}, rec.values())
	assert.False(t, c.Pending())
}

func TestEdit_TwoFieldsInOneWindowAreNotLost(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, delay, rec.send)

	c.Edit(fields{Search: "rose"})
	c.Edit(fields{Search: "rose", MinPrice: "20"})

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, fields{Search: "rose", MinPrice: "20"}, rec.values()[0])
}

func TestEdit_EqualToExternalSchedulesNothing(t *testing.T) {
	rec := &recorder{}
	c := New(fields{Search: "musk"}, delay, rec.send)

	c.Edit(fields{Search: "musk"})
	assert.False(t, c.Pending())

	c.Edit(fields{Search: "musky"})
	c.Edit(fields{Search: "musk"})
	assert.False(t, c.Pending())

	time.Sleep(3 * delay)
	assert.Empty(t, rec.values())
}

func TestSync_ExternalResetCancelsPendingAndAdopts(t *testing.T) {
	rec := &recorder{}
	c := New(fields{Search: "oud"}, delay, rec.send)
	var adopted []fields
	c.OnAdopt(func(v fields) { adopted = append(adopted, v) })

	c.Edit(fields{Search: "oudh"})
	c.Sync(fields{})

	assert.Equal(t, fields{}, c.Local())
	assert.False(t, c.Pending())
	assert.Equal(t, []fields{{}}, adopted)

	time.Sleep(3 * delay)
	assert.Empty(t, rec.values(), "a reset must not be overwritten by a stale timer")
}

func TestSync_EchoOfOwnSendKeepsNewerLocalEdit(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, delay, rec.send)

	c.Edit(fields{Search: "iris"})
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)

	c.Edit(fields{Search: "iris pallida"})
	c.Sync(fields{Search: "iris"})

	assert.Equal(t, fields{Search: "iris pallida"}, c.Local())
	assert.True(t, c.Pending())
	require.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, fields{Search: "iris pallida"}, rec.values()[1])
}

func TestSync_SameAsAcknowledgedIsNoop(t *testing.T) {
	c := New(fields{Search: "a"}, delay, func(fields) {})
	called := false
	c.OnAdopt(func(fields) { called = true })

	c.Sync(fields{Search: "a"})
	assert.False(t, called)
}

func trimmed(v fields) fields {
	return fields{Search: strings.TrimSpace(v.Search), MinPrice: strings.TrimSpace(v.MinPrice)}
}

func TestNormalize_TrailingSpaceSurvivesEcho(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, delay, rec.send)
	c.Normalize(trimmed)
	adopted := false
	c.OnAdopt(func(fields) { adopted = true })

	c.Edit(fields{Search: "rose "})
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, fields{Search: "rose"}, rec.values()[0])
	assert.Equal(t, fields{Search: "rose"}, c.Acknowledged())

	c.Sync(fields{Search: "rose"})
	assert.False(t, adopted)
	assert.Equal(t, fields{Search: "rose "}, c.Local())

	c.Edit(fields{Search: "rose  "})
	assert.False(t, c.Pending(), "whitespace-only change has nothing to send")

	c.Edit(fields{Search: "rose oud"})
	require.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, fields{Search: "rose oud"}, rec.values()[1])
}

func TestFlush_SendsImmediately(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, time.Hour, rec.send)

	c.Flush()
	assert.Empty(t, rec.values())

	c.Edit(fields{Search: "neroli"})
	c.Flush()
	assert.Equal(t, []fields{{Search: "neroli"}}, rec.values())
	assert.False(t, c.Pending())
}

func TestStop_DropsPending(t *testing.T) {
	rec := &recorder{}
	c := New(fields{}, delay, rec.send)

	c.Edit(fields{Search: "tonka"})
	c.Stop()

	time.Sleep(3 * delay)
	assert.Empty(t, rec.values())
}

func TestNew_DefaultDelay(t *testing.T) {
	c := New(fields{}, 0, func(fields) {})
	assert.Equal(t, DefaultDelay, c.delay)
}
