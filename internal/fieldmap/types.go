package fieldmap

import (
	"fmt"
	"strings"
)

// Vec3 is a point or vector in either the local table frame or the world
// frame. Components are in the host unit system.
type Vec3 [3]float64

// Axis indexes the three spatial axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Column identifies one of the six quantities a table row carries. Rows are
// always read positionally in this order.
type Column int

const (
	ColX Column = iota
	ColY
	ColZ
	ColBX
	ColBY
	ColBZ

	numColumns = 6
)

var columnNames = [numColumns]string{"X", "Y", "Z", "BX", "BY", "BZ"}

func (c Column) String() string {
	if c >= 0 && int(c) < numColumns {
		return columnNames[c]
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// ParseColumn maps a header field name onto a Column, ignoring case.
func ParseColumn(name string) (Column, bool) {
	for i, n := range columnNames {
		if strings.EqualFold(n, name) {
			return Column(i), true
		}
	}
	return 0, false
}

// HeaderField is one field declaration from the table header.
type HeaderField struct {
	Name string
	Unit string // empty when the header carries no units
}

// UnitTable holds the resolved scale factor for each column.
type UnitTable [numColumns]float64

// Scale returns the scale factor for c.
func (u *UnitTable) Scale(c Column) float64 {
	return u[c]
}

// Dimensions are the node counts along each local axis.
type Dimensions struct {
	NX, NY, NZ int
}

// Count returns the number of grid nodes.
func (d Dimensions) Count() int {
	return d.NX * d.NY * d.NZ
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%dx%d", d.NX, d.NY, d.NZ)
}

// Grid stores the three field components as flat arrays addressed by
// (ix*NY+iy)*NZ+iz, which is also the order rows appear in the table.
type Grid struct {
	Dims       Dimensions
	BX, BY, BZ []float64
}

// NewGrid allocates a zeroed grid of the given dimensions.
func NewGrid(d Dimensions) *Grid {
	n := d.Count()
	return &Grid{
		Dims: d,
		BX:   make([]float64, n),
		BY:   make([]float64, n),
		BZ:   make([]float64, n),
	}
}

// Index returns the flat offset of node (ix, iy, iz).
func (g *Grid) Index(ix, iy, iz int) int {
	return (ix*g.Dims.NY+iy)*g.Dims.NZ + iz
}

// At returns the field vector stored at node (ix, iy, iz).
func (g *Grid) At(ix, iy, iz int) Vec3 {
	i := g.Index(ix, iy, iz)
	return Vec3{g.BX[i], g.BY[i], g.BZ[i]}
}

// AxisBounds is the local-space extent of the table along one axis.
type AxisBounds struct {
	Min, Max float64
	// Inverted records that the table ran from high to low coordinate.
	Inverted bool
}

// Extent returns Max-Min.
func (b AxisBounds) Extent() float64 {
	return b.Max - b.Min
}

// Contains reports whether v lies in [Min, Max].
func (b AxisBounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// BoundingBox is the local-space region in which the table defines a field.
type BoundingBox [3]AxisBounds

// Contains reports whether p lies inside the box on every axis.
func (b *BoundingBox) Contains(p Vec3) bool {
	return b[AxisX].Contains(p[0]) && b[AxisY].Contains(p[1]) && b[AxisZ].Contains(p[2])
}

// boxFromCorners orders the first and last row corners per axis, flagging
// axes where the table ran downwards.
func boxFromCorners(first, last Vec3) BoundingBox {
	var box BoundingBox
	for a := range box {
		lo, hi := first[a], last[a]
		inverted := false
		if hi < lo {
			lo, hi = hi, lo
			inverted = true
		}
		box[a] = AxisBounds{Min: lo, Max: hi, Inverted: inverted}
	}
	return box
}

// Table is a fully loaded field table.
type Table struct {
	Source string
	Header []HeaderField
	Units  UnitTable
	Grid   *Grid
	Box    BoundingBox
}
