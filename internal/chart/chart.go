// Package chart renders the water-quality series as a PNG line chart and maps
// pointer positions on that image back to series indices.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
)

const (
	DefaultWidth  = 1200
	DefaultHeight = 500

	pointRadius = 5
	hitRadius   = pointRadius + 1
	maxXTicks   = 8
)

// Dataset describes one plotted line.
type Dataset struct {
	Label string
	Color string
	pick  func(models.Series) []float64
}

// Datasets are drawn in this order; hit-testing reports the same indices for all of them.
var Datasets = []Dataset{
	{Label: "TDS (ppm)", Color: "00bcd4", pick: func(s models.Series) []float64 { return s.TDS }},
	{Label: "Condutividade (µS/cm)", Color: "ffc107", pick: func(s models.Series) []float64 { return s.Conductivity }},
	{Label: "Dureza (mg/L)", Color: "f44336", pick: func(s models.Series) []float64 { return s.Hardness }},
}

// ErrDisposed is returned when a disposed handle is asked to draw.
var ErrDisposed = errors.New("chart handle disposed")

// Renderer owns the single live chart handle.
type Renderer struct {
	width    int
	height   int
	handle   *Handle
	onSelect func(index int)
}

// NewRenderer creates a renderer producing width x height images.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Handle returns the current chart handle, or nil before the first render.
func (r *Renderer) Handle() *Handle {
	return r.handle
}

// OnPointSelected registers the callback invoked by Click on a hit.
func (r *Renderer) OnPointSelected(fn func(index int)) {
	r.onSelect = fn
}

// Build constructs a handle for series without touching the held one.
func (r *Renderer) Build(series models.Series) (*Handle, error) {
	return build(series, r.width, r.height)
}

// Replace disposes the held handle and stores h in its place.
func (r *Renderer) Replace(h *Handle) {
	if r.handle != nil && r.handle != h {
		r.handle.Dispose()
	}
	r.handle = h
}

// Render disposes the previous chart and builds a new one from series.
func (r *Renderer) Render(series models.Series) (*Handle, error) {
	h, err := r.Build(series)
	if err != nil {
		return nil, err
	}
	r.Replace(h)
	return h, nil
}

// Click hit-tests ev against the current chart and, on a hit, invokes the
// OnPointSelected callback with the resolved index.
func (r *Renderer) Click(ev PointerEvent) (int, bool) {
	if r.handle == nil {
		return 0, false
	}
	idx, ok := r.handle.ResolveHit(ev)
	if !ok {
		return 0, false
	}
	if r.onSelect != nil {
		r.onSelect(idx)
	}
	return idx, true
}

// Handle is one rendered chart: the encoded image plus the pixel position of
// every plotted point.
type Handle struct {
	width    int
	height   int
	n        int
	png      []byte
	plot     gochart.Box
	points   [][]point
	disposed bool
}

type point struct {
	x, y float64
}

// Len is the number of readings plotted.
func (h *Handle) Len() int {
	return h.n
}

// Empty reports whether the handle has no image.
func (h *Handle) Empty() bool {
	return h == nil || h.n == 0 || h.disposed
}

// Size returns the image dimensions in pixels.
func (h *Handle) Size() (int, int) {
	return h.width, h.height
}

// PNG returns the encoded chart.
func (h *Handle) PNG() ([]byte, error) {
	if h.disposed {
		return nil, ErrDisposed
	}
	return h.png, nil
}

// PointAt returns the pixel centre of index i in dataset d.
func (h *Handle) PointAt(d, i int) (x, y float64, ok bool) {
	if h.disposed || d < 0 || d >= len(h.points) || i < 0 || i >= len(h.points[d]) {
		return 0, 0, false
	}
	p := h.points[d][i]
	return p.x, p.y, true
}

// Dispose releases the image and geometry.
func (h *Handle) Dispose() {
	h.png = nil
	h.points = nil
	h.disposed = true
}

func build(series models.Series, width, height int) (*Handle, error) {
	h := &Handle{width: width, height: height, n: series.Len()}
	if h.n == 0 {
		return h, nil
	}

	geom := &geometry{}
	lines := make([]gochart.Series, 0, len(Datasets))
	for _, ds := range Datasets {
		color := drawing.ColorFromHex(ds.Color)
		lines = append(lines, plottedSeries{
			ContinuousSeries: gochart.ContinuousSeries{
				Name: ds.Label,
				Style: gochart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    pointRadius,
				},
				XValues: indexValues(h.n),
				YValues: ds.pick(series),
			},
			geom: geom,
		})
	}

	ymin, ymax := valueBounds(series)
	graph := gochart.Chart{
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 60}},
		XAxis: gochart.XAxis{
			Name:  "Data/Hora",
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(h.n) - 0.5},
			Ticks: xTicks(series.Timestamps),
		},
		YAxis: gochart.YAxis{
			Name:  "Valores Medidos",
			Range: &gochart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series: lines,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if !geom.set {
		return nil, errors.New("render chart: series were not drawn")
	}

	h.png = buf.Bytes()
	h.plot = geom.box
	h.points = make([][]point, len(Datasets))
	for d, ds := range Datasets {
		ys := ds.pick(series)
		pts := make([]point, h.n)
		for i := 0; i < h.n; i++ {
			pts[i] = geom.project(float64(i), ys[i])
		}
		h.points[d] = pts
	}
	return h, nil
}

// plottedSeries records the canvas geometry go-chart hands to each series
// before delegating the drawing.
type plottedSeries struct {
	gochart.ContinuousSeries
	geom *geometry
}

func (ps plottedSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	ps.geom.record(canvasBox, xrange, yrange)
	ps.ContinuousSeries.Render(r, canvasBox, xrange, yrange, defaults)
}

type geometry struct {
	set    bool
	box    gochart.Box
	xrange gochart.Range
	yrange gochart.Range
}

func (g *geometry) record(box gochart.Box, xrange, yrange gochart.Range) {
	if g.set {
		return
	}
	g.set = true
	g.box = box
	g.xrange = xrange
	g.yrange = yrange
}

// project mirrors the placement used by go-chart's line drawing.
func (g *geometry) project(x, y float64) point {
	return point{
		x: float64(g.box.Left + g.xrange.Translate(x)),
		y: float64(g.box.Bottom - g.yrange.Translate(y)),
	}
}

func indexValues(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func valueBounds(series models.Series) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, ds := range Datasets {
		for _, v := range ds.pick(series) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= 0 {
		hi = 1
	} else {
		hi *= 1.1
	}
	if lo < 0 {
		lo *= 1.1
	}
	return lo, hi
}

// xTicks labels at most maxXTicks readings. go-chart derives the x range from
// the tick extent when ticks are set, so unlabelled ticks pin it to
// [-0.5, n-0.5].
func xTicks(labels []string) []gochart.Tick {
	n := len(labels)
	step := 1
	if n > maxXTicks {
		step = int(math.Ceil(float64(n) / float64(maxXTicks)))
	}
	ticks := make([]gochart.Tick, 0, maxXTicks+3)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i := 0; i < n; i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: shortLabel(labels[i])})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})
	return ticks
}

func shortLabel(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("02/01 15:04")
}
