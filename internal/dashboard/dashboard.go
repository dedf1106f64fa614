// Package dashboard owns the displayed Series together with the chart built
// from it and the indicator slots derived from it.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/chart"
	"github.com/02loveslollipop/water-quality-viewer/internal/models"
	"github.com/02loveslollipop/water-quality-viewer/internal/potability"
)

// ErrIndexOutOfRange is returned by Select for an index outside the Series.
var ErrIndexOutOfRange = errors.New("reading index out of range")

// ErrNoData is returned when an operation needs a fetched Series.
var ErrNoData = errors.New("no readings available")

// Fetcher loads the Series from the remote provider.
type Fetcher interface {
	FetchReadings(ctx context.Context, endpoint string) (models.Series, error)
}

// Event names delivered to subscribers.
const (
	EventRefreshed = "refreshed"
	EventSelected  = "selected"
)

// Snapshot is a consistent copy of the dashboard state.
type Snapshot struct {
	Generation string                `json:"generation"`
	FetchedAt  time.Time             `json:"fetched_at"`
	Series     models.Series         `json:"series"`
	Indicator  *potability.Indicator `json:"indicator,omitempty"`
	Display    potability.BoardView  `json:"display"`
}

// Event is pushed to subscribers after each state change.
type Event struct {
	Type       string                `json:"type"`
	Generation string                `json:"generation"`
	Count      int                   `json:"count"`
	Indicator  *potability.Indicator `json:"indicator,omitempty"`
}

// Dashboard is the single owner of the displayed state.
type Dashboard struct {
	mu       sync.RWMutex
	fetcher  Fetcher
	endpoint string
	renderer *chart.Renderer
	board    *potability.Board
	logger   *zap.Logger

	// refreshSeq numbers refreshes as they start; committedSeq is the
	// newest one whose result is on display.
	refreshSeq   atomic.Uint64
	committedSeq uint64

	series     models.Series
	generation string
	fetchedAt  time.Time
	current    *potability.Indicator

	subMu       sync.RWMutex
	subscribers []func(Event)
}

// New creates a dashboard with an empty Series.
func New(fetcher Fetcher, endpoint string, renderer *chart.Renderer, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dashboard{
		fetcher:  fetcher,
		endpoint: endpoint,
		renderer: renderer,
		board:    potability.NewBoard(),
		logger:   logger,
		series:   models.EmptySeries(),
	}
	renderer.OnPointSelected(d.applyIndexLocked)
	return d
}

// Subscribe registers fn to receive events. fn must not block.
func (d *Dashboard) Subscribe(fn func(Event)) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

func (d *Dashboard) publish(ev Event) {
	d.subMu.RLock()
	subs := append([]func(Event){}, d.subscribers...)
	d.subMu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Refresh fetches the feed and replaces the Series, the chart and the
// indicator together. On any error nothing is changed. A refresh that
// finishes after a later-started one has committed is discarded.
func (d *Dashboard) Refresh(ctx context.Context) error {
	seq := d.refreshSeq.Add(1)

	series, err := d.fetcher.FetchReadings(ctx, d.endpoint)
	if err != nil {
		d.logger.Warn("fetch failed, keeping previous readings", zap.Error(err))
		return err
	}

	handle, err := d.renderer.Build(series)
	if err != nil {
		d.logger.Error("chart build failed, keeping previous readings", zap.Error(err))
		return err
	}

	d.mu.Lock()
	if seq < d.committedSeq {
		d.mu.Unlock()
		handle.Dispose()
		d.logger.Debug("discarding stale refresh",
			zap.Uint64("seq", seq),
			zap.Int("count", series.Len()))
		return nil
	}
	d.committedSeq = seq
	d.renderer.Replace(handle)
	d.series = series
	d.generation = uuid.NewString()
	d.fetchedAt = time.Now().UTC()

	if latest, ok := series.Latest(); ok {
		d.applyReadingLocked(latest, series.Len()-1)
	}
	ev := Event{Type: EventRefreshed, Generation: d.generation, Count: series.Len(), Indicator: d.current}
	d.mu.Unlock()

	d.logger.Info("readings refreshed",
		zap.Int("count", ev.Count),
		zap.String("generation", ev.Generation))
	d.publish(ev)
	return nil
}

// Select displays the Reading at index i.
func (d *Dashboard) Select(i int) (potability.Indicator, error) {
	d.mu.Lock()
	if _, ok := d.series.At(i); !ok {
		d.mu.Unlock()
		return potability.Indicator{}, ErrIndexOutOfRange
	}
	d.applyIndexLocked(i)
	ind := *d.current
	ev := Event{Type: EventSelected, Generation: d.generation, Count: d.series.Len(), Indicator: &ind}
	d.mu.Unlock()

	d.publish(ev)
	return ind, nil
}

// Click hit-tests a pointer event on the current chart. A miss changes nothing.
func (d *Dashboard) Click(ev chart.PointerEvent) (potability.Indicator, bool) {
	d.mu.Lock()
	if _, ok := d.renderer.Click(ev); !ok {
		d.mu.Unlock()
		return potability.Indicator{}, false
	}
	ind := *d.current
	out := Event{Type: EventSelected, Generation: d.generation, Count: d.series.Len(), Indicator: &ind}
	d.mu.Unlock()

	d.publish(out)
	return ind, true
}

// applyIndexLocked is the renderer's point-selected callback; d.mu is held.
func (d *Dashboard) applyIndexLocked(i int) {
	r, ok := d.series.At(i)
	if !ok {
		return
	}
	d.applyReadingLocked(r, i)
}

func (d *Dashboard) applyReadingLocked(r models.Reading, i int) {
	ind := potability.Build(r, i)
	potability.Apply(d.board, ind)
	d.current = &ind
}

// Reading returns the Reading at index i without changing the display.
func (d *Dashboard) Reading(i int) (models.Reading, potability.Indicator, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.series.At(i)
	if !ok {
		if d.series.Len() == 0 {
			return models.Reading{}, potability.Indicator{}, ErrNoData
		}
		return models.Reading{}, potability.Indicator{}, ErrIndexOutOfRange
	}
	return r, potability.Build(r, i), nil
}

// Latest returns the most recent Reading without changing the display.
func (d *Dashboard) Latest() (models.Reading, potability.Indicator, error) {
	d.mu.RLock()
	n := d.series.Len()
	d.mu.RUnlock()
	if n == 0 {
		return models.Reading{}, potability.Indicator{}, ErrNoData
	}
	return d.Reading(n - 1)
}

// ChartPNG returns the current chart image.
func (d *Dashboard) ChartPNG() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h := d.renderer.Handle()
	if h.Empty() {
		return nil, ErrNoData
	}
	return h.PNG()
}

// Display returns the current indicator slots.
func (d *Dashboard) Display() potability.BoardView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.board.View()
}

// Snapshot copies the current state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := Snapshot{
		Generation: d.generation,
		FetchedAt:  d.fetchedAt,
		Series:     d.series,
		Display:    d.board.View(),
	}
	if d.current != nil {
		ind := *d.current
		snap.Indicator = &ind
	}
	return snap
}

// Run refreshes every interval until ctx is done. Failures are logged and the
// previous readings stay on display.
func (d *Dashboard) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.Refresh(ctx)
		}
	}
}
