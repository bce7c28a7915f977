package fieldmap

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/fieldmap/internal/testutil"
)

func mustMap(t testing.TB, src *testutil.Table, f Frame) *Map {
	t.Helper()
	loader := memLoader(map[string]string{"field.table": src.String()})
	tbl, err := loader.Load("field.table")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return New(tbl, f)
}

func TestEvaluate_LineTable(t *testing.T) {
	m := mustMap(t, lineTable(), IdentityFrame())
	require.True(t, m.Ready())

	tests := []struct {
		name  string
		point Vec3
		want  Vec3
	}{
		{"between nodes", Vec3{0.5, 0, 0}, Vec3{tesla, 0, 0}},
		{"first node", Vec3{0, 0, 0}, Vec3{tesla, 0, 0}},
		{"last node", Vec3{2, 0, 0}, Vec3{tesla, 0, 0}},
		{"before first node", Vec3{-1, 0, 0}, Vec3{}},
		{"past last node", Vec3{2.000001, 0, 0}, Vec3{}},
		{"off the single y node", Vec3{1, 0.1, 0}, Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Evaluate(tt.point))
		})
	}
}

// nodeField is an arbitrary, easily recognised field value per node.
func nodeField(ix, iy, iz int) [3]float64 {
	return [3]float64{float64(100*ix + 10*iy + iz), float64(-ix * iy), float64(iz*iz) + 0.5}
}

// dyadicTable has node spacings and counts chosen so that node positions map
// onto exact grid indices in floating point.
func dyadicTable() *testutil.Table {
	return testutil.Grid(3, 5, 2, testutil.DefaultHeader, testutil.Spaced(
		[3]float64{-1, 4, 8}, [3]float64{1, 0.5, 4}, nodeField))
}

func TestEvaluate_ExactAtNodes(t *testing.T) {
	m := mustMap(t, dyadicTable(), IdentityFrame())
	g := m.Table().Grid

	for ix := 0; ix < 3; ix++ {
		for iy := 0; iy < 5; iy++ {
			for iz := 0; iz < 2; iz++ {
				p := Vec3{-1 + float64(ix), 4 + 0.5*float64(iy), 8 + 4*float64(iz)}
				assert.Equal(t, g.At(ix, iy, iz), m.Evaluate(p), "node (%d,%d,%d)", ix, iy, iz)
			}
		}
	}
}

func TestEvaluate_BoundaryCutoff(t *testing.T) {
	uniform := testutil.Grid(3, 5, 2, testutil.DefaultHeader, testutil.Spaced(
		[3]float64{-1, 4, 8}, [3]float64{1, 0.5, 4},
		func(int, int, int) [3]float64 { return [3]float64{1, 2, 3} }))
	m := mustMap(t, uniform, IdentityFrame())

	center := Vec3{0, 5, 10}
	lo := Vec3{-1, 4, 8}
	hi := Vec3{1, 6, 12}
	const eps = 1e-9

	for a := 0; a < 3; a++ {
		below, above := center, center
		below[a] = lo[a] - eps
		above[a] = hi[a] + eps
		assert.Equal(t, Vec3{}, m.Evaluate(below), "below %s", Axis(a))
		assert.Equal(t, Vec3{}, m.Evaluate(above), "above %s", Axis(a))

		onLo, onHi := center, center
		onLo[a] = lo[a]
		onHi[a] = hi[a]
		testutil.AssertVecNear(t, m.Evaluate(onLo), Vec3{tesla, 2 * tesla, 3 * tesla}, 1e-15)
		testutil.AssertVecNear(t, m.Evaluate(onHi), Vec3{tesla, 2 * tesla, 3 * tesla}, 1e-15)
	}
}

func TestEvaluate_InvertedAxisEnds(t *testing.T) {
	// x runs 2,1,0; Bx holds the row's x index.
	src := testutil.Grid(3, 1, 1, testutil.DefaultHeader, testutil.Spaced(
		[3]float64{2, 0, 0}, [3]float64{-1, 0, 0},
		func(ix, _, _ int) [3]float64 { return [3]float64{float64(ix), 0, 0} }))
	m := mustMap(t, src, IdentityFrame())

	box := m.Table().Box[AxisX]
	require.True(t, box.Inverted)
	require.Less(t, box.Min, box.Max)

	assert.Equal(t, Vec3{0, 0, 0}, m.Evaluate(Vec3{2, 0, 0}))
	assert.Equal(t, Vec3{2 * tesla, 0, 0}, m.Evaluate(Vec3{0, 0, 0}))
	assert.Equal(t, Vec3{tesla, 0, 0}, m.Evaluate(Vec3{1, 0, 0}))
	assert.InDelta(t, 0.5*tesla, m.Evaluate(Vec3{1.5, 0, 0})[0], 1e-18)
}

// linear is reproduced exactly by trilinear interpolation.
func linear(p [3]float64) [3]float64 {
	return [3]float64{
		1 + 2*p[0] - p[1] + 0.5*p[2],
		-3 + 0.25*p[0] + 4*p[1],
		p[2] - p[0],
	}
}

func TestEvaluate_ReproducesLinearField(t *testing.T) {
	tests := []struct {
		name         string
		origin, step [3]float64
	}{
		{"ascending", [3]float64{-1, 2, 0.5}, [3]float64{0.5, 0.25, 1}},
		{"all axes descending", [3]float64{1, 2.75, 2.5}, [3]float64{-0.5, -0.25, -1}},
		{"x descending", [3]float64{1, 2, 0.5}, [3]float64{-0.5, 0.25, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spaced := testutil.Spaced(tt.origin, tt.step, func(int, int, int) [3]float64 { return [3]float64{} })
			src := testutil.Grid(5, 4, 3, testutil.DefaultHeader, func(ix, iy, iz int) (pos, b [3]float64) {
				pos, _ = spaced(ix, iy, iz)
				return pos, linear(pos)
			})
			m := mustMap(t, src, IdentityFrame())

			rng := rand.New(rand.NewSource(1))
			box := m.Table().Box
			for i := 0; i < 500; i++ {
				var p Vec3
				for a := range p {
					p[a] = box[a].Min + rng.Float64()*box[a].Extent()
				}
				want := linear(p)
				for a := range want {
					want[a] *= tesla
				}
				testutil.AssertVecNear(t, m.Evaluate(p), want, 1e-12)
			}
		})
	}
}

func TestStencil_Convexity(t *testing.T) {
	m := mustMap(t, dyadicTable(), IdentityFrame())
	box := m.Table().Box
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		var p Vec3
		for a := range p {
			p[a] = box[a].Min + rng.Float64()*box[a].Extent()
		}

		idx, w := m.stencil(p)
		for k := range w {
			require.GreaterOrEqual(t, w[k], 0.0)
			require.LessOrEqual(t, w[k], 1.0)
			require.Less(t, idx[k], len(m.bx))
		}
		require.InDelta(t, 1.0, floats.Sum(w[:]), 1e-12)

		got := m.Evaluate(p)
		comps := [3][]float64{m.bx, m.by, m.bz}
		for c, vals := range comps {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, i := range idx {
				lo = math.Min(lo, vals[i])
				hi = math.Max(hi, vals[i])
			}
			require.GreaterOrEqual(t, got[c], lo-1e-15)
			require.LessOrEqual(t, got[c], hi+1e-15)
		}
	}
}

func TestAxisCell_LastNode(t *testing.T) {
	m := mustMap(t, dyadicTable(), IdentityFrame())

	lo, hi, frac := m.axisCell(AxisY, 6)
	assert.Equal(t, 3, lo)
	assert.Equal(t, 4, hi)
	assert.Equal(t, 1.0, frac)

	lo, hi, frac = m.axisCell(AxisY, 4.25)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 1, hi)
	assert.Equal(t, 0.5, frac)
}

func TestEvaluate_RotatedFrame(t *testing.T) {
	quarterTurn := Rotation{
		0, -1, 0,
		1, 0, 0,
		0, 0, 1,
	}
	frame, err := NewFrame(quarterTurn, Vec3{10, 20, 30})
	require.NoError(t, err)
	m := mustMap(t, lineTable(), frame)

	// Local (1,0,0) sits at world (10,21,30); the local x field points along world y.
	testutil.AssertVecNear(t, m.Evaluate(Vec3{10, 21, 30}), Vec3{0, tesla, 0}, 1e-15)
	assert.Equal(t, Vec3{}, m.Evaluate(Vec3{11, 20, 30}))
	assert.Equal(t, Vec3{}, m.Evaluate(Vec3{10, 19, 30}))
}

func TestFieldValue(t *testing.T) {
	m := mustMap(t, lineTable(), IdentityFrame())

	field := []float64{9, 9, 9}
	m.FieldValue([4]float64{0.5, 0, 0, 123.0}, field)
	assert.Equal(t, []float64{tesla, 0, 0}, field)

	m.FieldValue([4]float64{5, 0, 0, 0}, field)
	assert.Equal(t, []float64{0, 0, 0}, field)
}

func TestEvaluate_NotReady(t *testing.T) {
	var m Map
	assert.False(t, m.Ready())
	assert.Equal(t, Vec3{}, m.Evaluate(Vec3{0, 0, 0}))

	var nilMap *Map
	assert.False(t, nilMap.Ready())
	assert.Equal(t, Vec3{}, nilMap.Evaluate(Vec3{1, 2, 3}))
}

var sink Vec3

func TestEvaluate_NoAllocations(t *testing.T) {
	m := mustMap(t, dyadicTable(), IdentityFrame())
	p := Vec3{0.3, 5.1, 9}

	allocs := testing.AllocsPerRun(1000, func() {
		sink = m.Evaluate(p)
	})
	assert.Zero(t, allocs)
}

func TestEvaluate_Concurrent(t *testing.T) {
	frame, err := NewFrame(rotZ(0.3), Vec3{1, -2, 0.5})
	require.NoError(t, err)
	m := mustMap(t, dyadicTable(), frame)

	rng := rand.New(rand.NewSource(3))
	points := make([]Vec3, 2000)
	want := make([]Vec3, len(points))
	for i := range points {
		points[i] = Vec3{rng.Float64()*4 - 2, rng.Float64()*4 + 3, rng.Float64()*6 + 7}
		want[i] = m.Evaluate(points[i])
	}

	var wg sync.WaitGroup
	errs := make(chan int, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range points {
				if m.Evaluate(p) != want[i] {
					errs <- i
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for i := range errs {
		t.Errorf("concurrent Evaluate(%v) disagreed with sequential result", points[i])
	}
}

func BenchmarkEvaluate(b *testing.B) {
	frame, err := NewFrame(rotZ(0.3), Vec3{1, -2, 0.5})
	if err != nil {
		b.Fatal(err)
	}
	m := mustMap(b, dyadicTable(), frame)
	p := Vec3{0.2, 5.3, 9.1}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink = m.Evaluate(p)
	}
}
