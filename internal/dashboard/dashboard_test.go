package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/water-quality-viewer/internal/chart"
	"github.com/02loveslollipop/water-quality-viewer/internal/models"
	"github.com/02loveslollipop/water-quality-viewer/internal/potability"
	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
)

// stubFetcher returns queued results in order.
type stubFetcher struct {
	results []models.Series
	errs    []error
	calls   int
}

func (f *stubFetcher) FetchReadings(ctx context.Context, endpoint string) (models.Series, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return models.Series{}, f.errs[i]
	}
	return f.results[i], nil
}

func twoReadings() models.Series {
	return models.Series{
		Timestamps:   []string{"2025-03-01T10:00:00Z", "2025-03-01T10:05:00Z"},
		TDS:          []float64{700, 400},
		Conductivity: []float64{2600, 2000},
		Hardness:     []float64{1100, 0},
	}
}

func newDashboard(f Fetcher) *Dashboard {
	return New(f, "http://feed", chart.NewRenderer(600, 300), nil)
}

func TestNewDashboardIsEmpty(t *testing.T) {
	d := newDashboard(&stubFetcher{})
	snap := d.Snapshot()
	assert.Equal(t, 0, snap.Series.Len())
	assert.Nil(t, snap.Indicator)

	_, err := d.ChartPNG()
	assert.ErrorIs(t, err, ErrNoData)
	_, _, err = d.Latest()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRefreshShowsLatestReading(t *testing.T) {
	d := newDashboard(&stubFetcher{results: []models.Series{twoReadings()}})
	var events []Event
	d.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, d.Refresh(context.Background()))

	view := d.Display()
	assert.Equal(t, "400 ppm", view.TDS)
	assert.Equal(t, "2000 µS/cm", view.Conductivity)
	assert.Equal(t, "0 mg/L", view.Hardness)
	assert.True(t, view.Safe)

	snap := d.Snapshot()
	require.NotNil(t, snap.Indicator)
	assert.Equal(t, 1, snap.Indicator.Index)
	assert.NotEmpty(t, snap.Generation)

	png, err := d.ChartPNG()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	require.Len(t, events, 1)
	assert.Equal(t, EventRefreshed, events[0].Type)
	assert.Equal(t, 2, events[0].Count)
}

func TestSelectFollowsIndexCorrespondence(t *testing.T) {
	series := twoReadings()
	d := newDashboard(&stubFetcher{results: []models.Series{series}})
	require.NoError(t, d.Refresh(context.Background()))

	for i := 0; i < series.Len(); i++ {
		ind, err := d.Select(i)
		require.NoError(t, err)
		assert.Equal(t, potability.FormatValue(series.TDS[i], potability.UnitTDS), ind.TDS)
		assert.Equal(t, potability.FormatValue(series.Conductivity[i], potability.UnitConductivity), ind.Conductivity)
		assert.Equal(t, potability.FormatValue(series.Hardness[i], potability.UnitHardness), ind.Hardness)
		assert.Equal(t, series.Timestamps[i], ind.Timestamp)
	}

	ind, err := d.Select(0)
	require.NoError(t, err)
	assert.Equal(t, potability.StatusUnsafe, ind.Status)
	assert.False(t, d.Display().Safe)

	_, err = d.Select(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, "700 ppm", d.Display().TDS, "failed select keeps display")
}

func TestRefreshFailureKeepsState(t *testing.T) {
	fetchErr := &thingspeak.FetchError{Kind: thingspeak.ErrProtocol, Status: 500, Err: errors.New("boom")}
	f := &stubFetcher{
		results: []models.Series{twoReadings(), {}},
		errs:    []error{nil, fetchErr},
	}
	d := newDashboard(f)
	require.NoError(t, d.Refresh(context.Background()))
	_, err := d.Select(0)
	require.NoError(t, err)

	before := d.Snapshot()
	pngBefore, err := d.ChartPNG()
	require.NoError(t, err)

	err = d.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, thingspeak.ErrProtocol))

	after := d.Snapshot()
	assert.Equal(t, before, after)
	pngAfter, err := d.ChartPNG()
	require.NoError(t, err)
	assert.Equal(t, pngBefore, pngAfter)
}

func TestRefreshWithEmptyFeedKeepsIndicator(t *testing.T) {
	f := &stubFetcher{results: []models.Series{twoReadings(), models.EmptySeries()}}
	d := newDashboard(f)
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.Refresh(context.Background()))

	snap := d.Snapshot()
	assert.Equal(t, 0, snap.Series.Len())
	assert.Equal(t, "400 ppm", snap.Display.TDS)

	_, err := d.ChartPNG()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestClickSelectsPlottedPoint(t *testing.T) {
	d := newDashboard(&stubFetcher{results: []models.Series{twoReadings()}})
	require.NoError(t, d.Refresh(context.Background()))

	_, miss := d.Click(chart.PointerEvent{X: -40, Y: -40})
	assert.False(t, miss)
	assert.Equal(t, 1, d.Snapshot().Indicator.Index)

	x, y, ok := d.renderer.Handle().PointAt(0, 0)
	require.True(t, ok)
	ind, hit := d.Click(chart.PointerEvent{X: x, Y: y})
	require.True(t, hit)
	assert.Equal(t, 0, ind.Index)
	assert.Equal(t, "700 ppm", d.Display().TDS)
}

func TestReadingDoesNotChangeDisplay(t *testing.T) {
	d := newDashboard(&stubFetcher{results: []models.Series{twoReadings()}})
	require.NoError(t, d.Refresh(context.Background()))

	r, ind, err := d.Reading(0)
	require.NoError(t, err)
	assert.Equal(t, 700.0, r.TDS)
	assert.Equal(t, potability.StatusUnsafe, ind.Status)
	assert.Equal(t, "400 ppm", d.Display().TDS)

	_, _, err = d.Reading(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRefreshSingleFeedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"feeds":[{"created_at":"t1","field1":"400","field2":"2000","field3":null}]}`))
	}))
	defer srv.Close()

	d := New(thingspeak.NewClient(2*time.Second), srv.URL, chart.NewRenderer(600, 300), nil)
	require.NoError(t, d.Refresh(context.Background()))

	snap := d.Snapshot()
	require.Equal(t, 1, snap.Series.Len())
	assert.Equal(t, []float64{0}, snap.Series.Hardness)

	view := d.Display()
	assert.Equal(t, "400 ppm", view.TDS)
	assert.Equal(t, "2000 µS/cm", view.Conductivity)
	assert.Equal(t, "0 mg/L", view.Hardness)
	assert.Equal(t, "Água potável 💧", view.StatusText)
	assert.Equal(t, "✅", view.StatusIcon)
	assert.True(t, view.Safe)

	png, err := d.ChartPNG()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	x, y, ok := d.renderer.Handle().PointAt(0, 0)
	require.True(t, ok)
	ind, hit := d.Click(chart.PointerEvent{X: x, Y: y})
	require.True(t, hit)
	assert.Equal(t, 0, ind.Index)
}

// gatedFetcher holds its first call until release is closed; later calls
// return fast immediately.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	slow    models.Series
	fast    models.Series
}

func (f *gatedFetcher) FetchReadings(ctx context.Context, endpoint string) (models.Series, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if i == 0 {
		close(f.started)
		<-f.release
		return f.slow, nil
	}
	return f.fast, nil
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	f := &gatedFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
		slow:    twoReadings(),
		fast: models.Series{
			Timestamps:   []string{"2025-03-01T11:00:00Z"},
			TDS:          []float64{250},
			Conductivity: []float64{1500},
			Hardness:     []float64{300},
		},
	}
	d := newDashboard(f)

	var mu sync.Mutex
	var events []Event
	d.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	slowErr := make(chan error, 1)
	go func() { slowErr <- d.Refresh(context.Background()) }()
	<-f.started

	require.NoError(t, d.Refresh(context.Background()))
	committed := d.Snapshot()

	close(f.release)
	require.NoError(t, <-slowErr)

	assert.Equal(t, committed, d.Snapshot())
	assert.Equal(t, 1, d.Snapshot().Series.Len())
	assert.Equal(t, "250 ppm", d.Display().TDS)

	png, err := d.ChartPNG()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, events, 1)
}
