// Package testutil provides shared test utilities and fixtures.
//
// This package centralises field table fixtures and assertion helpers so the
// loader, CLI and exporter tests build tables the same way.
package testutil

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertVecNear fails the test if any component of got differs from want by
// more than tol.
func AssertVecNear(t testing.TB, got, want [3]float64, tol float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("vector = %v, want %v (component %d off by %g)", got, want, i, math.Abs(got[i]-want[i]))
		}
	}
}

// Header is one "<index> <name> [<unit>]" declaration.
type Header struct {
	Name, Unit string
}

// DefaultHeader declares the six standard fields without units.
var DefaultHeader = []Header{{Name: "X"}, {Name: "Y"}, {Name: "Z"}, {Name: "BX"}, {Name: "BY"}, {Name: "BZ"}}

// UnitHeader declares the six standard fields with the given length and
// field units.
func UnitHeader(length, field string) []Header {
	return []Header{
		{"X", length}, {"Y", length}, {"Z", length},
		{"BX", field}, {"BY", field}, {"BZ", field},
	}
}

// Table renders field table text.
type Table struct {
	NX, NY, NZ int
	Header     []Header
	Rows       [][]float64
}

// NodeFunc returns the position and field of node (ix, iy, iz).
type NodeFunc func(ix, iy, iz int) (pos, field [3]float64)

// Grid builds a table of nx*ny*nz rows in file order (z fastest) using fn.
func Grid(nx, ny, nz int, header []Header, fn NodeFunc) *Table {
	t := &Table{NX: nx, NY: ny, NZ: nz, Header: header}
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				p, b := fn(ix, iy, iz)
				t.Rows = append(t.Rows, []float64{p[0], p[1], p[2], b[0], b[1], b[2]})
			}
		}
	}
	return t
}

// Spaced returns a NodeFunc placing nodes at origin + index*step with a
// field computed by field.
func Spaced(origin, step [3]float64, field func(ix, iy, iz int) [3]float64) NodeFunc {
	return func(ix, iy, iz int) (pos, b [3]float64) {
		pos = [3]float64{
			origin[0] + float64(ix)*step[0],
			origin[1] + float64(iy)*step[1],
			origin[2] + float64(iz)*step[2],
		}
		return pos, field(ix, iy, iz)
	}
}

// String renders the table in file format.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", t.NX, t.NY, t.NZ)
	for i, h := range t.Header {
		if h.Unit != "" {
			fmt.Fprintf(&b, " %d %s %s\n", i+1, h.Name, h.Unit)
		} else {
			fmt.Fprintf(&b, " %d %s\n", i+1, h.Name)
		}
	}
	b.WriteString(" 0\n")
	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(fmt.Sprint(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
