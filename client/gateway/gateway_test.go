package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionServer is a minimal API with cookie sessions and double-submit CSRF.
type sessionServer struct {
	mu         sync.Mutex
	access     string
	generation int

	csrfHits    atomic.Int32
	refreshHits atomic.Int32

	csrfGate    chan struct{}
	refreshGate chan struct{}
	refreshFail bool
	alwaysDeny  bool
}

func (s *sessionServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/csrf", func(w http.ResponseWriter, r *http.Request) {
		s.csrfHits.Add(1)
		if s.csrfGate != nil {
			<-s.csrfGate
		}
		http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "csrf-1", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.refreshHits.Add(1)
		if s.refreshGate != nil {
			<-s.refreshGate
		}
		c, err := r.Cookie(CSRFCookieName)
		if err != nil || r.Header.Get(CSRFHeader) != c.Value {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if s.refreshFail {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		s.generation++
		s.access = fmt.Sprintf("token-%d", s.generation)
		token := s.access
		s.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: token, Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/protected", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		valid := s.access
		s.mu.Unlock()
		c, err := r.Cookie("access_token")
		if s.alwaysDeny || err != nil || valid == "" || c.Value != valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, "%s|%s|%s", c.Value, r.Header.Get(CSRFHeader), body)
	})
	return mux
}

func newTestGateway(t *testing.T, s *sessionServer) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	g, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return g, srv
}

func get(t *testing.T, g *Gateway) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, g.URL("/api/protected", nil), nil)
	require.NoError(t, err)
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestEnsureCSRFToken_SingleFlight(t *testing.T) {
	s := &sessionServer{csrfGate: make(chan struct{})}
	g, _ := newTestGateway(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.EnsureCSRFToken(context.Background())
		}()
	}
	require.Eventually(t, func() bool {
		running, waiters := g.csrf.pending()
		return running && waiters == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(s.csrfGate)
	wg.Wait()

	assert.Equal(t, int32(1), s.csrfHits.Load())
	assert.Equal(t, "csrf-1", g.CSRFToken())
}

func TestEnsureCSRFToken_CachedTokenSkipsNetwork(t *testing.T) {
	s := &sessionServer{}
	g, _ := newTestGateway(t, s)

	g.EnsureCSRFToken(context.Background())
	g.EnsureCSRFToken(context.Background())

	assert.Equal(t, int32(1), s.csrfHits.Load())
}

func TestEnsureCSRFToken_FailureIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	g, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	g.EnsureCSRFToken(context.Background())
	assert.Empty(t, g.CSRFToken())
}

func TestDo_PassesThroughNonUnauthorized(t *testing.T) {
	s := &sessionServer{}
	g, _ := newTestGateway(t, s)
	require.NoError(t, g.Renew(context.Background()))

	resp, err := g.Do(context.Background(), get(t, g), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(readBody(t, resp), "token-1|"))
	assert.Equal(t, int32(1), s.refreshHits.Load())
}

func TestDo_ConcurrentUnauthorizedShareOneRenewal(t *testing.T) {
	s := &sessionServer{refreshGate: make(chan struct{})}
	g, _ := newTestGateway(t, s)

	bodies := make([]string, 2)
	var wg sync.WaitGroup
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := g.Do(context.Background(), get(t, g), true)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			bodies[i] = readBody(t, resp)
		}(i)
	}
	require.Eventually(t, func() bool {
		running, waiters := g.renew.pending()
		return running && waiters == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(s.refreshGate)
	wg.Wait()

	assert.Equal(t, int32(1), s.refreshHits.Load())
	assert.Equal(t, int32(1), s.csrfHits.Load())
	assert.True(t, strings.HasPrefix(bodies[0], "token-1|"))
	assert.True(t, strings.HasPrefix(bodies[1], "token-1|"))
}

func TestDo_RenewalFailureNotifiesOnceAndReturnsOriginal401(t *testing.T) {
	s := &sessionServer{refreshFail: true, refreshGate: make(chan struct{})}
	g, _ := newTestGateway(t, s)

	var events atomic.Int32
	unsubscribe := g.OnUnauthorized(func(e Event) {
		events.Add(1)
		assert.Equal(t, http.StatusUnauthorized, e.Status)
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := g.Do(context.Background(), get(t, g), true)
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				resp.Body.Close()
			}
		}()
	}
	require.Eventually(t, func() bool {
		_, waiters := g.renew.pending()
		return waiters == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(s.refreshGate)
	wg.Wait()

	assert.Equal(t, int32(1), s.refreshHits.Load())
	assert.Equal(t, int32(1), events.Load())
	assert.Empty(t, g.CSRFToken(), "failed renewal drops the csrf token")
}

func TestDo_RetriedUnauthorizedIsReturnedWithoutSecondRenewal(t *testing.T) {
	s := &sessionServer{alwaysDeny: true}
	g, _ := newTestGateway(t, s)

	var events atomic.Int32
	g.OnUnauthorized(func(Event) { events.Add(1) })

	resp, err := g.Do(context.Background(), get(t, g), true)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), s.refreshHits.Load())
	assert.Zero(t, events.Load())
}

func TestDo_NoRetryWhenDisabled(t *testing.T) {
	s := &sessionServer{}
	g, _ := newTestGateway(t, s)

	resp, err := g.Do(context.Background(), get(t, g), false)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, s.refreshHits.Load())
}

func TestDo_ReplaysBodyAndRefreshesCSRFHeader(t *testing.T) {
	s := &sessionServer{}
	g, _ := newTestGateway(t, s)

	req, err := http.NewRequest(http.MethodPost, g.URL("/api/protected", nil), strings.NewReader(`{"id":7}`))
	require.NoError(t, err)
	req.Header.Set(CSRFHeader, "stale")

	resp, err := g.Do(context.Background(), req, true)
	require.NoError(t, err)
	assert.Equal(t, "token-1|csrf-1|{\"id\":7}", readBody(t, resp))
}

func TestDo_CancelledWaiterStopsWaiting(t *testing.T) {
	s := &sessionServer{refreshGate: make(chan struct{})}
	g, _ := newTestGateway(t, s)
	defer close(s.refreshGate)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := g.Do(ctx, get(t, g), true)
		errc <- err
	}()
	require.Eventually(t, func() bool {
		running, _ := g.renew.pending()
		return running
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after cancellation")
	}
}

func TestOnUnauthorized_Unsubscribe(t *testing.T) {
	var n notifier
	var calls int
	unsubscribe := n.subscribe(func(Event) { calls++ })
	n.publish(Event{})
	unsubscribe()
	unsubscribe()
	n.publish(Event{})
	assert.Equal(t, 1, calls)
}

func TestReset_ClearsSession(t *testing.T) {
	s := &sessionServer{}
	g, _ := newTestGateway(t, s)
	g.EnsureCSRFToken(context.Background())
	require.NotEmpty(t, g.CSRFToken())

	g.Reset()
	assert.Empty(t, g.CSRFToken())
	running, _ := g.csrf.pending()
	assert.False(t, running)
}

func TestFlight_PanicReleasesWaitersAndNextCallRuns(t *testing.T) {
	var f flight
	release := make(chan struct{})

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			errs <- f.do(context.Background(), func(context.Context) error {
				<-release
				panic("renewal exploded")
			})
		}()
	}
	require.Eventually(t, func() bool {
		_, waiters := f.pending()
		return waiters == 2
	}, time.Second, 2*time.Millisecond)
	close(release)

	for range 2 {
		select {
		case err := <-errs:
			assert.ErrorContains(t, err, "renewal exploded")
		case <-time.After(time.Second):
			t.Fatal("waiter blocked after a panicking call")
		}
	}
	running, _ := f.pending()
	assert.False(t, running)
	assert.NoError(t, f.do(context.Background(), func(context.Context) error { return nil }))
}
