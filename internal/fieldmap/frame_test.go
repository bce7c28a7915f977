package fieldmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fieldmap/internal/testutil"
)

func rotZ(theta float64) Rotation {
	c, s := math.Cos(theta), math.Sin(theta)
	return Rotation{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

func rotX(theta float64) Rotation {
	c, s := math.Cos(theta), math.Sin(theta)
	return Rotation{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

func mul(a, b Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[3*i+j] += a[3*i+k] * b[3*k+j]
			}
		}
	}
	return out
}

func TestRotationValidate(t *testing.T) {
	tests := []struct {
		name    string
		rot     Rotation
		wantErr bool
	}{
		{"identity", IdentityRotation, false},
		{"about z", rotZ(0.7), false},
		{"composed", mul(rotZ(1.1), rotX(-0.4)), false},
		{"scaled", Rotation{2, 0, 0, 0, 2, 0, 0, 0, 2}, true},
		{"sheared", Rotation{1, 0.1, 0, 0, 1, 0, 0, 0, 1}, true},
		{"reflection", Rotation{1, 0, 0, 0, 1, 0, 0, 0, -1}, true},
		{"zero", Rotation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rot.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRotation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewFrame_RejectsInvalidRotation(t *testing.T) {
	_, err := NewFrame(Rotation{1, 0, 0, 0, 1, 0, 0, 0, -1}, Vec3{})
	assert.ErrorIs(t, err, ErrInvalidRotation)
}

func TestNewFrame_CopiesInputs(t *testing.T) {
	rot := rotZ(0.2)
	trans := Vec3{1, 2, 3}
	f, err := NewFrame(rot, trans)
	require.NoError(t, err)

	rot[0] = 42
	trans[0] = 42
	assert.Equal(t, rotZ(0.2), f.Rotation())
	assert.Equal(t, Vec3{1, 2, 3}, f.Translation())
}

func TestFrame_RoundTrip(t *testing.T) {
	f, err := NewFrame(mul(rotZ(0.9), rotX(2.1)), Vec3{-5, 12, 0.25})
	require.NoError(t, err)

	for _, p := range []Vec3{{0, 0, 0}, {1, 2, 3}, {-7.5, 0.01, 1e3}} {
		testutil.AssertVecNear(t, f.ToLocalPoint(f.ToWorldPoint(p)), p, 1e-9)
		testutil.AssertVecNear(t, f.ToWorldPoint(f.ToLocalPoint(p)), p, 1e-9)
	}
}

func TestFrame_VectorIgnoresTranslation(t *testing.T) {
	rot := rotZ(math.Pi / 3)
	shifted, err := NewFrame(rot, Vec3{100, -50, 7})
	require.NoError(t, err)
	origin, err := NewFrame(rot, Vec3{})
	require.NoError(t, err)

	v := Vec3{0.3, -1, 2}
	assert.Equal(t, origin.ToWorldVector(v), shifted.ToWorldVector(v))

	// Rotation preserves length.
	w := shifted.ToWorldVector(v)
	assert.InDelta(t, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), math.Sqrt(w[0]*w[0]+w[1]*w[1]+w[2]*w[2]), 1e-12)
}

func TestFrame_QuarterTurn(t *testing.T) {
	f, err := NewFrame(Rotation{0, -1, 0, 1, 0, 0, 0, 0, 1}, Vec3{10, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, Vec3{0, 1, 0}, f.ToWorldVector(Vec3{1, 0, 0}))
	assert.Equal(t, Vec3{10, 1, 0}, f.ToWorldPoint(Vec3{1, 0, 0}))
	assert.Equal(t, Vec3{1, 0, 0}, f.ToLocalPoint(Vec3{10, 1, 0}))
}

func TestIdentityFrame(t *testing.T) {
	f := IdentityFrame()
	p := Vec3{1.5, -2, 3}
	assert.Equal(t, p, f.ToLocalPoint(p))
	assert.Equal(t, p, f.ToWorldVector(p))
	assert.NoError(t, f.Rotation().Validate())
}
