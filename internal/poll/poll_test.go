package poll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kodestorel007/fun-kanban/internal/api"
)

func TestBridgeProber_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var observed []BridgeStatus
	p := NewBridgeProber(srv.URL, func(s BridgeStatus) {
		observed = append(observed, s)
	})
	assert.Equal(t, BridgeChecking, p.Status())

	p.probe(context.Background())
	assert.Equal(t, BridgeOnline, p.Status())
	assert.Equal(t, []BridgeStatus{BridgeOnline}, observed)
}

func TestBridgeProber_OfflineOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewBridgeProber(srv.URL, nil)
	p.probe(context.Background())
	assert.Equal(t, BridgeOffline, p.Status())
}

func TestBridgeProber_OfflineWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewBridgeProber(srv.URL, nil)
	p.probe(context.Background())
	assert.Equal(t, BridgeOffline, p.Status())
}

func TestBridgeProber_HungProbeIsAborted(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewBridgeProber(srv.URL, nil)
	p.timeout = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		p.probe(context.Background())
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, BridgeOffline, p.Status())
	case <-time.After(2 * time.Second):
		t.Fatal("probe was not aborted by its timeout")
	}
}

func TestBridgeProber_RunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewBridgeProber(srv.URL, nil)
	p.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
	assert.Equal(t, BridgeOnline, p.Status())
}

func TestBridgeProber_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ping", r.URL.Path)
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	p := NewBridgeProber(srv.URL, nil)
	assert.NoError(t, p.Ping(context.Background()))
}

func TestBridgeProber_PingNotAcknowledged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "busy"}`))
	}))
	defer srv.Close()

	p := NewBridgeProber(srv.URL, nil)
	assert.Error(t, p.Ping(context.Background()))
}

type fakeCounts struct {
	count atomic.Int64
	err   atomic.Bool
}

func (f *fakeCounts) NotificationCount(ctx context.Context) (*api.NotificationCount, error) {
	if f.err.Load() {
		return nil, errors.New("fetch failed")
	}
	return &api.NotificationCount{UnreadCount: int(f.count.Load())}, nil
}

func TestUnreadCounter_Refresh(t *testing.T) {
	f := &fakeCounts{}
	f.count.Store(3)

	var observed []int
	u := NewUnreadCounter(f, func(n int) { observed = append(observed, n) })
	u.refresh(context.Background())

	assert.Equal(t, 3, u.Count())
	assert.Equal(t, []int{3}, observed)
}

func TestUnreadCounter_FailureKeepsPreviousCount(t *testing.T) {
	f := &fakeCounts{}
	f.count.Store(5)

	u := NewUnreadCounter(f, nil)
	u.refresh(context.Background())
	require.Equal(t, 5, u.Count())

	f.err.Store(true)
	u.refresh(context.Background())
	assert.Equal(t, 5, u.Count())

	f.err.Store(false)
	f.count.Store(2)
	u.refresh(context.Background())
	assert.Equal(t, 2, u.Count())
}

func TestUnreadCounter_RunStopsOnCancel(t *testing.T) {
	f := &fakeCounts{}
	u := NewUnreadCounter(f, nil)
	u.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		u.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
