// Package opengl owns the GL objects used to draw toolpath lines.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/ThatOtherAndrew/Layerview/internal/shaders"
)

// FloatsPerVertex is the line vertex layout: position (2), perpendicular
// (2), stroke width (1) and RGBA colour (4).
const FloatsPerVertex = 9

type Context struct {
	Program uint32
	Vao     uint32
	Vbo     uint32

	resolutionLoc int32
}

func New() *Context {
	return &Context{}
}

// InitGL loads the GL entry points and builds the line program and buffers.
// The window's context must be current.
func (c *Context) InitGL() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("init gl: %w", err)
	}

	program, err := shaders.LinkProgram(shaders.LineVertex, shaders.LineFragment)
	if err != nil {
		return err
	}
	c.Program = program
	c.resolutionLoc = gl.GetUniformLocation(c.Program, gl.Str("resolution\x00"))

	gl.GenVertexArrays(1, &c.Vao)
	gl.GenBuffers(1, &c.Vbo)

	gl.BindVertexArray(c.Vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.Vbo)

	stride := int32(FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 1, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(3)

	gl.BindVertexArray(0)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return nil
}

// DrawTriangles uploads vertices and draws them as triangles in order.
func (c *Context) DrawTriangles(vertices []float32, width, height int) {
	if len(vertices) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, c.Vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)

	gl.UseProgram(c.Program)
	gl.Uniform2f(c.resolutionLoc, float32(width), float32(height))

	gl.BindVertexArray(c.Vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/FloatsPerVertex))
	gl.BindVertexArray(0)
}

func (c *Context) Delete() {
	gl.DeleteBuffers(1, &c.Vbo)
	gl.DeleteVertexArrays(1, &c.Vao)
	gl.DeleteProgram(c.Program)
}
