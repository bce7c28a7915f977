package fieldmap

import "math"

// Map answers field queries in world coordinates for one loaded table placed
// by one frame. A zero Map is not ready and evaluates to the zero vector.
type Map struct {
	table *Table
	frame Frame

	// Copied out of table so Evaluate touches no pointers but the arrays.
	box        BoundingBox
	n          [3]int
	bx, by, bz []float64
}

// New binds a loaded table to the frame that places it in the world.
func New(t *Table, f Frame) *Map {
	d := t.Grid.Dims
	return &Map{
		table: t,
		frame: f,
		box:   t.Box,
		n:     [3]int{d.NX, d.NY, d.NZ},
		bx:    t.Grid.BX,
		by:    t.Grid.BY,
		bz:    t.Grid.BZ,
	}
}

// Ready reports whether the map holds a loaded table.
func (m *Map) Ready() bool { return m != nil && m.table != nil }

// Table returns the table backing the map.
func (m *Map) Table() *Table { return m.table }

// Frame returns the placement frame.
func (m *Map) Frame() Frame { return m.frame }

// Evaluate returns the world-space field at world-space point p. Points
// outside the tabulated region yield the zero vector.
func (m *Map) Evaluate(p Vec3) Vec3 {
	if !m.Ready() {
		return Vec3{}
	}
	local := m.frame.ToLocalPoint(p)
	if !m.box.Contains(local) {
		return Vec3{}
	}
	return m.frame.ToWorldVector(m.interpolate(local))
}

// FieldValue evaluates at point[0:3] and writes the world-space field into
// field[0:3]. point[3], the time coordinate, is ignored.
func (m *Map) FieldValue(point [4]float64, field []float64) {
	b := m.Evaluate(Vec3{point[0], point[1], point[2]})
	field[0], field[1], field[2] = b[0], b[1], b[2]
}

// interpolate blends the eight nodes around local, which must lie inside
// the box.
func (m *Map) interpolate(local Vec3) Vec3 {
	idx, w := m.stencil(local)

	var b Vec3
	for k := 0; k < 8; k++ {
		i := idx[k]
		b[0] += m.bx[i] * w[k]
		b[1] += m.by[i] * w[k]
		b[2] += m.bz[i] * w[k]
	}
	return b
}

// stencil returns the flat indices of the eight cell corners enclosing local
// and their trilinear weights. Corner k takes the upper node along x when
// bit 2 of k is set, along y for bit 1 and along z for bit 0.
func (m *Map) stencil(local Vec3) (idx [8]int, w [8]float64) {
	x0, x1, fx := m.axisCell(AxisX, local[0])
	y0, y1, fy := m.axisCell(AxisY, local[1])
	z0, z1, fz := m.axisCell(AxisZ, local[2])

	ny, nz := m.n[AxisY], m.n[AxisZ]
	xs := [2]int{x0 * ny, x1 * ny}
	ys := [2]int{y0, y1}
	zs := [2]int{z0, z1}
	wx := [2]float64{1 - fx, fx}
	wy := [2]float64{1 - fy, fy}
	wz := [2]float64{1 - fz, fz}

	for k := 0; k < 8; k++ {
		dx, dy, dz := k>>2, (k>>1)&1, k&1
		idx[k] = (xs[dx]+ys[dy])*nz + zs[dz]
		w[k] = wx[dx] * wy[dy] * wz[dz]
	}
	return idx, w
}

// axisCell locates v along axis a: the lower and upper node indices of the
// enclosing cell and the fractional position between them in [0,1].
func (m *Map) axisCell(a Axis, v float64) (lo, hi int, frac float64) {
	n := m.n[a]
	b := m.box[a]
	extent := b.Extent()
	if n < 2 || extent == 0 {
		// Single-node axis: both corners collapse onto node 0.
		return 0, 0, 0
	}

	f := (v - b.Min) / extent
	if b.Inverted {
		f = 1 - f
	}

	whole, frac := math.Modf(f * float64(n-1))
	lo = int(whole)
	if lo >= n-1 {
		// Exactly on the last node: use the last cell at its far edge.
		lo = n - 2
		frac = 1
	}
	return lo, lo + 1, frac
}
