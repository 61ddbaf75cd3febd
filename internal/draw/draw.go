// Package draw is the on-screen render.Surface. Lines are batched into
// quads and sent to the GPU in one draw call per frame.
package draw

import (
	"image/color"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/ThatOtherAndrew/Layerview/internal/opengl"
	"github.com/ThatOtherAndrew/Layerview/internal/render"
)

// Batch collects line quads as triangle vertices in draw order.
type Batch struct {
	Vertices []float32
}

func (b *Batch) Reset() { b.Vertices = b.Vertices[:0] }

// Len is the number of vertices queued.
func (b *Batch) Len() int { return len(b.Vertices) / opengl.FloatsPerVertex }

// Line queues one segment as two triangles. Each corner carries the unit
// perpendicular so the vertex shader can offset it by the stroke width.
// Degenerate and non-finite segments are dropped.
func (b *Batch) Line(x0, y0, x1, y1 float64, s render.Stroke) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return
	}
	perpX := float32(-dy / length)
	perpY := float32(dx / length)

	r, g, bl, a := rgba(s.Color)
	w := float32(s.Width)
	ax, ay := float32(x0), float32(y0)
	bx, by := float32(x1), float32(y1)

	b.Vertices = append(b.Vertices,
		ax, ay, perpX, perpY, w, r, g, bl, a,
		ax, ay, -perpX, -perpY, w, r, g, bl, a,
		bx, by, perpX, perpY, w, r, g, bl, a,

		bx, by, perpX, perpY, w, r, g, bl, a,
		ax, ay, -perpX, -perpY, w, r, g, bl, a,
		bx, by, -perpX, -perpY, w, r, g, bl, a,
	)
}

func rgba(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

// Surface draws into the current GL framebuffer.
type Surface struct {
	ctx           *opengl.Context
	width, height int
	batch         Batch
}

func New(ctx *opengl.Context) *Surface {
	return &Surface{ctx: ctx}
}

// Resize sets the logical size used for layout and the framebuffer size in
// pixels used for the GL viewport.
func (s *Surface) Resize(width, height, fbWidth, fbHeight int) {
	s.width, s.height = width, height
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Clear(c color.RGBA) {
	r, g, b, a := rgba(c)
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	s.batch.Reset()
}

func (s *Surface) Line(x0, y0, x1, y1 float64, st render.Stroke) {
	s.batch.Line(x0, y0, x1, y1, st)
}

// Flush draws everything queued since Clear.
func (s *Surface) Flush() {
	s.ctx.DrawTriangles(s.batch.Vertices, s.width, s.height)
	s.batch.Reset()
}
