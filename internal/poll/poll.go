// Package poll runs the two fixed-interval background loops of a mounted
// screen: the bridge connectivity probe and the unread-notification
// counter. Each loop is an explicit ticker tied to a context so teardown
// deterministically stops it.
package poll

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Kodestorel007/fun-kanban/internal/api"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Intervals and the probe's bounded abort.
const (
	BridgeInterval = 30 * time.Second
	BridgeTimeout  = 3 * time.Second
	NotifyInterval = 30 * time.Second
)

// BridgeStatus is the connectivity state of the companion bridge service.
type BridgeStatus string

const (
	BridgeChecking BridgeStatus = "checking"
	BridgeOnline   BridgeStatus = "online"
	BridgeOffline  BridgeStatus = "offline"
)

// BridgeProber polls the bridge root endpoint. A hung probe is aborted
// after BridgeTimeout so slow probes cannot accumulate across ticks.
type BridgeProber struct {
	url      string
	http     *http.Client
	interval time.Duration
	timeout  time.Duration
	onChange func(BridgeStatus)

	mu     sync.Mutex
	status BridgeStatus
}

// NewBridgeProber creates a prober for the bridge at url. onChange, when
// non-nil, is called with every observed status (including repeats).
func NewBridgeProber(url string, onChange func(BridgeStatus)) *BridgeProber {
	return &BridgeProber{
		url:      url,
		http:     &http.Client{},
		interval: BridgeInterval,
		timeout:  BridgeTimeout,
		onChange: onChange,
		status:   BridgeChecking,
	}
}

// Status returns the last observed state.
func (p *BridgeProber) Status() BridgeStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// RunOnce fires a single probe.
func (p *BridgeProber) RunOnce(ctx context.Context) {
	p.probe(ctx)
}

// Run probes immediately, then on every tick until ctx is cancelled.
func (p *BridgeProber) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.probe(ctx)
		case <-ctx.Done():
			zap.L().Debug("bridge prober stopped")
			return
		}
	}
}

func (p *BridgeProber) probe(ctx context.Context) {
	status := BridgeOffline

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.url+"/", nil)
	if err == nil {
		resp, doErr := p.http.Do(req)
		if doErr == nil {
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				status = BridgeOnline
			}
			resp.Body.Close()
		}
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(status)
	}
}

// Ping fires the bridge's ping action and reports whether it acknowledged.
func (p *BridgeProber) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/ping", nil)
	if err != nil {
		return fmt.Errorf("build ping: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping bridge: %w", err)
	}
	defer resp.Body.Close()

	body := make([]byte, 512)
	n, _ := resp.Body.Read(body)
	if gjson.GetBytes(body[:n], "status").String() != "ok" {
		return fmt.Errorf("bridge ping not acknowledged")
	}
	return nil
}

// CountFetcher is the slice of the gateway client the counter needs.
type CountFetcher interface {
	NotificationCount(ctx context.Context) (*api.NotificationCount, error)
}

// UnreadCounter polls the unread-notification badge number.
type UnreadCounter struct {
	fetch    CountFetcher
	interval time.Duration
	onChange func(int)

	mu    sync.Mutex
	count int
}

// NewUnreadCounter creates a counter over the given fetcher.
func NewUnreadCounter(fetch CountFetcher, onChange func(int)) *UnreadCounter {
	return &UnreadCounter{fetch: fetch, interval: NotifyInterval, onChange: onChange}
}

// Count returns the last observed unread count.
func (u *UnreadCounter) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.count
}

// Run fetches immediately, then on every tick until ctx is cancelled.
// Fetch failures keep the previous count; the next tick retries.
func (u *UnreadCounter) Run(ctx context.Context) {
	u.refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			u.refresh(ctx)
		case <-ctx.Done():
			zap.L().Debug("unread counter stopped")
			return
		}
	}
}

func (u *UnreadCounter) refresh(ctx context.Context) {
	n, err := u.fetch.NotificationCount(ctx)
	if err != nil {
		zap.L().Warn("notification count fetch failed", zap.Error(err))
		return
	}
	u.mu.Lock()
	u.count = n.UnreadCount
	u.mu.Unlock()
	if u.onChange != nil {
		u.onChange(n.UnreadCount)
	}
}
