package draw

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOtherAndrew/Layerview/internal/opengl"
	"github.com/ThatOtherAndrew/Layerview/internal/render"
)

func vertex(b *Batch, i int) []float32 {
	n := opengl.FloatsPerVertex
	return b.Vertices[i*n : (i+1)*n]
}

func TestBatchLine(t *testing.T) {
	var b Batch
	b.Line(10, 20, 10, 50, render.Stroke{Color: color.RGBA{255, 0, 51, 255}, Width: 2})

	require.Equal(t, 6, b.Len())

	first := vertex(&b, 0)
	assert.Equal(t, []float32{10, 20, -1, 0, 2, 1, 0, 0.2, 1}, first)
	assert.Equal(t, []float32{10, 20, 1, 0}, vertex(&b, 1)[:4])
	assert.Equal(t, []float32{10, 50, -1, 0}, vertex(&b, 2)[:4])
	assert.Equal(t, []float32{10, 50, 1, 0}, vertex(&b, 5)[:4])
}

func TestBatchKeepsOrder(t *testing.T) {
	var b Batch
	b.Line(0, 0, 1, 0, render.Stroke{Width: 1})
	b.Line(5, 5, 5, 9, render.Stroke{Width: 3})

	require.Equal(t, 12, b.Len())
	assert.Equal(t, float32(1), vertex(&b, 0)[4])
	assert.Equal(t, float32(3), vertex(&b, 6)[4])

	b.Reset()
	assert.Zero(t, b.Len())
}

func TestBatchDropsDegenerate(t *testing.T) {
	var b Batch
	b.Line(3, 3, 3, 3, render.Stroke{Width: 1})
	b.Line(0, 0, math.NaN(), 1, render.Stroke{Width: 1})
	b.Line(0, 0, math.Inf(1), 1, render.Stroke{Width: 1})
	assert.Zero(t, b.Len())
}
