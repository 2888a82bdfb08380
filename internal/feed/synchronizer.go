package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/internal/push"
	"github.com/marketgrid/admin-gateway/pkg/logger"
	"github.com/marketgrid/admin-gateway/pkg/metrics"
)

// ErrFetchInFlight is returned when a page load is requested while another
// one for the same feed is still outstanding. The second call is rejected,
// not queued.
var ErrFetchInFlight = errors.New("a page fetch is already in flight")

// DefaultWatchdogInterval is how often the liveness watchdog checks the push
// channel.
const DefaultWatchdogInterval = 5 * time.Second

// Fetcher is the pull channel: the paged upstream item list.
type Fetcher interface {
	ListItems(ctx context.Context, filters model.Filters, page, limit int) (*model.ItemPage, error)
}

// Notifier is invoked for every live item so an audio cue can be raised for
// dashboards that have not muted it.
type Notifier interface {
	NewItem(ctx context.Context, item model.Item)
}

// Synchronizer merges the paged upstream fetch with the realtime push
// channel into a single ordered feed, owns the push connection lifecycle,
// and fans events out to stream subscribers.
type Synchronizer struct {
	fetcher  Fetcher
	channel  push.Channel
	notifier Notifier
	logger   *logger.Logger

	watchdogInterval time.Duration

	mu         sync.Mutex
	collection *Collection
	cursor     *Cursor
	filters    model.Filters
	fetching   bool

	connMu sync.Mutex
	cancel context.CancelFunc

	subMu       sync.Mutex
	subscribers map[chan model.FeedEvent]struct{}
}

// NewSynchronizer creates a synchronizer over the given pull and push
// channels. limit is the page size used until a caller supplies another.
func NewSynchronizer(fetcher Fetcher, channel push.Channel, limit int, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		fetcher:          fetcher,
		channel:          channel,
		logger:           log,
		watchdogInterval: DefaultWatchdogInterval,
		collection:       NewCollection(),
		cursor:           NewCursor(limit),
		subscribers:      make(map[chan model.FeedEvent]struct{}),
	}
}

// SetNotifier installs the alert hook. A nil notifier disables alerts.
func (s *Synchronizer) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetWatchdogInterval overrides the liveness check interval. Must be called
// before Start.
func (s *Synchronizer) SetWatchdogInterval(d time.Duration) {
	if d > 0 {
		s.watchdogInterval = d
	}
}

// LoadPage fetches one page from the pull channel and folds it into the
// feed. Page 1 replaces the whole collection (used on first load and when
// filters change); later pages append in server order.
//
// At most one fetch may be in flight per feed; a concurrent call returns
// ErrFetchInFlight. On transport failure nothing is mutated and the guard is
// released so the caller may retry.
func (s *Synchronizer) LoadPage(ctx context.Context, page, limit int, filters model.Filters) (*model.ItemPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1, got %d", limit)
	}

	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	s.fetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetching = false
		s.mu.Unlock()
	}()

	result, err := s.fetcher.ListItems(ctx, filters, page, limit)
	if err != nil {
		metrics.FeedPullsTotal.WithLabelValues(pullKind(page), "error").Inc()
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if page == 1 {
		s.collection.ReplaceAll(result.Result)
		s.cursor.Reset(limit)
		s.filters = filters
	} else {
		s.collection.Append(result.Result...)
	}
	s.cursor.Record(page, limit, len(result.Result), result.Pagination.Total)

	metrics.FeedPullsTotal.WithLabelValues(pullKind(page), "success").Inc()
	return result, nil
}

func pullKind(page int) string {
	if page == 1 {
		return "initial"
	}
	return "more"
}

// Snapshot returns the current feed contents and paging state.
func (s *Synchronizer) Snapshot() ([]model.Item, Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Items(), *s.cursor
}

// Filters returns the filter payload active since the last page-1 load.
func (s *Synchronizer) Filters() model.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ReplaceByKey replaces the stored fields of the item matching updated's
// UUID, keeping its position. A miss is a no-op. Called after a successful
// edit commit so open feeds reflect the change without a refetch.
func (s *Synchronizer) ReplaceByKey(updated model.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.ReplaceByKey(updated)
}

// handleLiveItem folds one push event into the feed: an unconditional
// prepend, the alert hook, and fan-out to stream subscribers. Push events do
// not touch the cursor.
func (s *Synchronizer) handleLiveItem(ctx context.Context, item model.Item) {
	s.mu.Lock()
	s.collection.Prepend(item)
	s.mu.Unlock()

	metrics.LiveItemsTotal.Inc()

	s.Publish(model.FeedEvent{
		Type:      model.FeedEventItem,
		Item:      &item,
		Timestamp: time.Now(),
	})

	if s.notifier != nil {
		s.notifier.NewItem(ctx, item)
	}
}

// Connect opens the push channel with the given token, tearing down any
// existing connection first so at most one is ever open. Errors are reported
// to the caller and reflected in IsConnected, never fatal.
func (s *Synchronizer) Connect(ctx context.Context, token string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.channel.Connected() {
		s.channel.Disconnect()
	}

	if err := s.channel.Connect(ctx, token); err != nil {
		metrics.PushConnected.Set(0)
		return fmt.Errorf("failed to connect push channel: %w", err)
	}

	metrics.PushConnected.Set(1)
	s.Publish(model.FeedEvent{Type: model.FeedEventConnected, Timestamp: time.Now()})
	return nil
}

// Disconnect closes the push channel. Safe to call when already closed.
func (s *Synchronizer) Disconnect() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.channel.Disconnect()
	metrics.PushConnected.Set(0)
}

// IsConnected reports push channel liveness for the UI.
func (s *Synchronizer) IsConnected() bool {
	return s.channel.Connected()
}

// Start connects the push channel and launches the consume loop and the
// liveness watchdog. An initial connect failure is logged, not returned; the
// watchdog retries on its fixed interval.
func (s *Synchronizer) Start(ctx context.Context, token string) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.Connect(runCtx, token); err != nil {
		s.logger.Warn("initial push connect failed", zap.Error(err))
	}

	go s.consume(runCtx)
	go s.watchdog(runCtx, token)
}

// Stop cancels the watchdog and consume loop and closes the push channel.
func (s *Synchronizer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.Disconnect()
}

func (s *Synchronizer) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-s.channel.Items():
			if !ok {
				return
			}
			s.handleLiveItem(ctx, item)
		}
	}
}

// watchdog polls channel liveness on a fixed interval and reconnects when
// the channel reports disconnected. This is the only retry policy; there is
// no backoff.
func (s *Synchronizer) watchdog(ctx context.Context, token string) {
	ticker := time.NewTicker(s.watchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.channel.Connected() {
				continue
			}
			metrics.PushReconnectsTotal.Inc()
			s.Publish(model.FeedEvent{Type: model.FeedEventDisconnected, Timestamp: time.Now()})
			if err := s.Connect(ctx, token); err != nil {
				s.logger.Warn("push reconnect failed", zap.Error(err))
			}
		}
	}
}

// Subscribe registers a stream consumer. Events are delivered best-effort: a
// subscriber whose buffer is full misses the event rather than blocking the
// feed.
func (s *Synchronizer) Subscribe() chan model.FeedEvent {
	ch := make(chan model.FeedEvent, 64)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes a stream consumer and closes its channel.
func (s *Synchronizer) Unsubscribe(ch chan model.FeedEvent) {
	s.subMu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

// Publish fans an event out to all subscribers without blocking.
func (s *Synchronizer) Publish(event model.FeedEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
