// Package render draws a toolpath through a camera onto a Surface.
package render

import (
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

var (
	Background     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	GridColor      = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	CompletedColor = color.RGBA{0x00, 0x66, 0xcc, 0xff}
	ExtrusionColor = color.RGBA{0x66, 0x66, 0x66, 0xff}
	TravelColor    = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	AxisXColor     = color.RGBA{0xff, 0x00, 0x00, 0xff}
	AxisYColor     = color.RGBA{0x00, 0xff, 0x00, 0xff}
	AxisZColor     = color.RGBA{0x00, 0x00, 0xff, 0xff}
)

const (
	gridWidth      = 0.5
	extrusionWidth = 2
	travelWidth    = 1
	axisWidth      = 3

	// maxGridLines caps grid density for very large models.
	maxGridLines = 400
)

type Options struct {
	Distance   float64
	AxisLength float64
	GridSize   float64
	// FitMargin is how much wider than the model the viewport is at scale 1.
	FitMargin float64
}

func DefaultOptions() Options {
	return Options{
		Distance:   camera.DefaultDistance,
		AxisLength: 30,
		GridSize:   10,
		FitMargin:  1.2,
	}
}

// Renderer redraws the whole scene on every call. The only thing it keeps
// between calls is the bounding box of the last toolpath it saw.
type Renderer struct {
	opts   Options
	cached *models.Toolpath
	bounds models.Bounds
	order  []int
	depth  []float64
}

func New(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Distance <= 0 {
		opts.Distance = def.Distance
	}
	if opts.GridSize <= 0 {
		opts.GridSize = def.GridSize
	}
	if opts.FitMargin <= 0 {
		opts.FitMargin = def.FitMargin
	}
	if opts.AxisLength < 0 {
		opts.AxisLength = def.AxisLength
	}
	return &Renderer{opts: opts}
}

// Bounds returns the box for tp, recomputing it only when tp is a different
// toolpath from the previous call.
func (r *Renderer) Bounds(tp *models.Toolpath) models.Bounds {
	if tp != r.cached || tp == nil {
		r.cached = tp
		r.bounds = tp.Bounds()
	}
	return r.bounds
}

// scene carries the per-frame transform from model space to pixels.
type scene struct {
	cam      camera.State
	mode     models.ViewMode
	distance float64
	base     float64
	cx, cy   float64
	center   mgl64.Vec3
	rx, ry   float64
	rz       float64
	minZ     float64
	maxRange float64
}

func (s *scene) project(x, y, z float64) camera.Projection {
	return s.cam.Project(mgl64.Vec3{x, y, z}.Sub(s.center), s.mode, s.distance, s.base)
}

func (s *scene) screen(p camera.Projection) (float64, float64) {
	return s.cx + p.X, s.cy + p.Y
}

// Render clears surf and draws grid, toolpath and axes. Moves before
// floor(progress*len) are drawn as completed.
func (r *Renderer) Render(surf Surface, tp *models.Toolpath, cam camera.State, progress float64, mode models.ViewMode) {
	surf.Clear(Background)
	w, h := surf.Size()
	if w <= 0 || h <= 0 {
		return
	}

	b := r.Bounds(tp)
	ccx, ccy, ccz := b.Center()
	rx, ry, rz := b.Range()
	sc := &scene{
		cam:      cam,
		mode:     mode,
		distance: r.opts.Distance,
		cx:       float64(w)/2 + cam.OffsetX,
		cy:       float64(h)/2 + cam.OffsetY,
		center:   mgl64.Vec3{ccx, ccy, ccz},
		rx:       rx,
		ry:       ry,
		rz:       rz,
		minZ:     b.MinZ,
		maxRange: b.MaxRange(),
	}
	sc.base = math.Min(float64(w), float64(h)) / (sc.maxRange * r.opts.FitMargin)

	r.drawGrid(surf, sc)
	r.drawMoves(surf, sc, tp, progress)
	r.drawAxes(surf, sc)
}

func (r *Renderer) gridStep(extent float64) float64 {
	step := r.opts.GridSize
	if n := 2 * extent / step; n > maxGridLines {
		step = 2 * extent / maxGridLines
	}
	return step
}

func (r *Renderer) drawGrid(surf Surface, sc *scene) {
	stroke := Stroke{Style: Grid, Color: GridColor, Width: gridWidth, Move: -1}
	extent := sc.maxRange * 2
	step := r.gridStep(extent)
	c := sc.center

	if sc.mode == models.View3D {
		// Bed plane Z=0, spanning the model's X and Y ranges from the
		// machine origin.
		for i := -extent; i <= extent; i += step {
			x0, y0 := sc.screen(sc.project(i, 0, 0))
			x1, y1 := sc.screen(sc.project(i, sc.ry, 0))
			surf.Line(x0, y0, x1, y1, stroke)

			x0, y0 = sc.screen(sc.project(0, i, 0))
			x1, y1 = sc.screen(sc.project(sc.rx, i, 0))
			surf.Line(x0, y0, x1, y1, stroke)
		}
		return
	}

	scale := sc.base * sc.cam.Scale
	line := func(ax, ay, bx, by float64) {
		ax, ay = sc.cam.Turn2D(ax*scale, ay*scale)
		bx, by = sc.cam.Turn2D(bx*scale, by*scale)
		surf.Line(sc.cx+ax, sc.cy+ay, sc.cx+bx, sc.cy+by, stroke)
	}
	for i := -extent; i <= extent; i += step {
		line(i-c.X(), -extent-c.Y(), i-c.X(), extent-c.Y())
		line(-extent-c.X(), i-c.Y(), extent-c.X(), i-c.Y())
	}
}

func (r *Renderer) drawMoves(surf Surface, sc *scene, tp *models.Toolpath, progress float64) {
	n := tp.Len()
	if n == 0 {
		return
	}
	done := CompletedCount(progress, n)

	r.order = r.order[:0]
	for i := range n {
		r.order = append(r.order, i)
	}
	if sc.mode == models.View3D {
		r.depth = slices.Grow(r.depth[:0], n)[:n]
		for i, m := range tp.Moves {
			x, y, z := m.Midpoint()
			r.depth[i] = sc.project(x, y, z).Depth
		}
		// Farthest first so nearer segments paint over them.
		slices.SortStableFunc(r.order, func(a, b int) int {
			switch da, db := r.depth[a], r.depth[b]; {
			case da > db:
				return -1
			case da < db:
				return 1
			}
			return 0
		})
	}

	for _, i := range r.order {
		m := tp.Moves[i]
		stroke := r.style(sc, m, i < done)
		stroke.Move = i
		x0, y0 := sc.screen(sc.project(m.From.X, m.From.Y, m.From.Z))
		x1, y1 := sc.screen(sc.project(m.To.X, m.To.Y, m.To.Z))
		surf.Line(x0, y0, x1, y1, stroke)
	}
}

func (r *Renderer) style(sc *scene, m models.Move, completed bool) Stroke {
	width := float64(travelWidth)
	if m.IsExtrusion {
		width = extrusionWidth
	}
	switch {
	case completed:
		return Stroke{Style: Completed, Color: CompletedColor, Width: width}
	case !m.IsExtrusion:
		return Stroke{Style: Travel, Color: TravelColor, Width: width}
	case sc.mode == models.View3D:
		return Stroke{Style: Extrusion, Color: HeightColor((m.From.Z - sc.minZ) / sc.rz), Width: width}
	}
	return Stroke{Style: Extrusion, Color: ExtrusionColor, Width: width}
}

func (r *Renderer) drawAxes(surf Surface, sc *scene) {
	l := r.opts.AxisLength
	if l == 0 {
		return
	}
	axis := func(style Style, c color.RGBA) Stroke {
		return Stroke{Style: style, Color: c, Width: axisWidth, Move: -1}
	}

	if sc.mode == models.View3D {
		ox, oy := sc.screen(sc.project(0, 0, 0))
		x, y := sc.screen(sc.project(l, 0, 0))
		surf.Line(ox, oy, x, y, axis(AxisX, AxisXColor))
		x, y = sc.screen(sc.project(0, l, 0))
		surf.Line(ox, oy, x, y, axis(AxisY, AxisYColor))
		x, y = sc.screen(sc.project(0, 0, l))
		surf.Line(ox, oy, x, y, axis(AxisZ, AxisZColor))
		return
	}

	// The 2D gizmo is a fixed size in pixels at the model origin.
	scale := sc.base * sc.cam.Scale
	ox, oy := -sc.center.X()*scale, sc.center.Y()*scale
	at := func(x, y float64) (float64, float64) {
		x, y = sc.cam.Turn2D(x, y)
		return sc.cx + x, sc.cy + y
	}
	x0, y0 := at(ox, oy)
	x, y := at(ox+l, oy)
	surf.Line(x0, y0, x, y, axis(AxisX, AxisXColor))
	x, y = at(ox, oy-l)
	surf.Line(x0, y0, x, y, axis(AxisY, AxisYColor))
}

// CompletedCount is the number of leading moves shown as done at progress.
func CompletedCount(progress float64, n int) int {
	if !(progress > 0) {
		return 0
	}
	if progress >= 1 {
		return n
	}
	return int(math.Floor(progress * float64(n)))
}

// HeightColor maps a normalised height to a hue from blue (0) to red (1).
func HeightColor(ratio float64) color.RGBA {
	ratio = math.Max(0, math.Min(1, ratio))
	if math.IsNaN(ratio) {
		ratio = 0
	}
	r, g, b := colorful.Hsl(240-ratio*240, 0.7, 0.5).RGB255()
	return color.RGBA{r, g, b, 0xff}
}
