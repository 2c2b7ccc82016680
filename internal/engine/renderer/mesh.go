package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/planar-reflections/internal/engine/water"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Mesh is an uploaded triangle list with position and normal attributes.
type Mesh struct {
	vao   uint32
	vbo   uint32
	count int32
}

// newMesh uploads interleaved position/normal vertices.
func newMesh(vertices []float32) *Mesh {
	m := &Mesh{count: int32(len(vertices) / water.FloatsPerVertex)}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	stride := int32(water.FloatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m
}

func (m *Mesh) draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	gl.BindVertexArray(0)
}

func (m *Mesh) destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
}

// cubeVertices returns a unit cube centred on the origin, wound
// counter-clockwise seen from outside.
func cubeVertices() []float32 {
	x, y, z := math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}
	// For each face, u × v is the outward normal.
	faces := [][2]math.Vec3{
		{y, z}, {z, y}, // +x, -x
		{z, x}, {x, z}, // +y, -y
		{x, y}, {y, x}, // +z, -z
	}

	v := make([]float32, 0, 36*water.FloatsPerVertex)
	for _, f := range faces {
		u, w := f[0].Scale(0.5), f[1].Scale(0.5)
		n := f[0].Cross(f[1])
		c := n.Scale(0.5)
		corners := [4]math.Vec3{
			c.Sub(u).Sub(w),
			c.Add(u).Sub(w),
			c.Add(u).Add(w),
			c.Sub(u).Add(w),
		}
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			p := corners[i]
			v = append(v, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
		}
	}
	return v
}
