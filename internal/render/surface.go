package render

import (
	"image/color"
)

// Style tags what a stroke depicts so surfaces and tests can tell strokes
// apart without comparing colours.
type Style int

const (
	Grid Style = iota
	Travel
	Extrusion
	Completed
	AxisX
	AxisY
	AxisZ
)

func (s Style) String() string {
	switch s {
	case Grid:
		return "grid"
	case Travel:
		return "travel"
	case Extrusion:
		return "extrusion"
	case Completed:
		return "completed"
	case AxisX:
		return "axis-x"
	case AxisY:
		return "axis-y"
	case AxisZ:
		return "axis-z"
	}
	return "unknown"
}

// Pending reports whether the style is an unreached toolpath segment.
func (s Style) Pending() bool {
	return s == Travel || s == Extrusion
}

type Stroke struct {
	Style Style
	Color color.RGBA
	Width float64
	// Move is the toolpath index of the segment, or -1 for grid and axes.
	Move int
}

// Surface is a 2D drawing target in pixels with the origin at the top left.
type Surface interface {
	Size() (width, height int)
	Clear(c color.RGBA)
	Line(x0, y0, x1, y1 float64, s Stroke)
}

// Segment is one line recorded by a Recorder.
type Segment struct {
	X0, Y0, X1, Y1 float64
	Stroke
}

// Recorder is a Surface that keeps every call. It backs the stats command's
// style summary and makes render output easy to inspect.
type Recorder struct {
	Width, Height int
	Background    color.RGBA
	Clears        int
	Segments      []Segment
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) Clear(c color.RGBA) {
	r.Background = c
	r.Clears++
	r.Segments = r.Segments[:0]
}

func (r *Recorder) Line(x0, y0, x1, y1 float64, s Stroke) {
	r.Segments = append(r.Segments, Segment{X0: x0, Y0: y0, X1: x1, Y1: y1, Stroke: s})
}

// Count returns how many segments have the given style.
func (r *Recorder) Count(style Style) int {
	n := 0
	for _, s := range r.Segments {
		if s.Style == style {
			n++
		}
	}
	return n
}

// Moves returns the toolpath indices drawn, in draw order.
func (r *Recorder) Moves() []int {
	var out []int
	for _, s := range r.Segments {
		if s.Move >= 0 {
			out = append(out, s.Move)
		}
	}
	return out
}
