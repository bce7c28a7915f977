package fieldmap

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidRotation indicates a placement rotation that is not a proper
// orthonormal matrix.
var ErrInvalidRotation = errors.New("fieldmap: rotation is not a proper orthonormal matrix")

// RotationTolerance bounds the deviation of RᵀR from I and of det R from 1.
const RotationTolerance = 1e-6

// Rotation is a row-major 3x3 matrix taking local axes to world axes.
type Rotation [9]float64

// IdentityRotation leaves vectors unchanged.
var IdentityRotation = Rotation{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// Validate checks that r is orthonormal with determinant +1.
func (r Rotation) Validate() error {
	m := mat.NewDense(3, 3, append([]float64(nil), r[:]...))

	var rtr mat.Dense
	rtr.Mul(m.T(), m)
	if !mat.EqualApprox(&rtr, mat.NewDiagDense(3, []float64{1, 1, 1}), RotationTolerance) {
		return fmt.Errorf("%w: columns are not orthonormal", ErrInvalidRotation)
	}
	if det := mat.Det(m); math.Abs(det-1) > RotationTolerance {
		return fmt.Errorf("%w: determinant %g", ErrInvalidRotation, det)
	}
	return nil
}

// Frame is the pose of a component's local frame in the world:
// world = R·local + T.
type Frame struct {
	rot   Rotation
	trans Vec3
}

// NewFrame copies rot and trans into a frame after validating rot.
func NewFrame(rot Rotation, trans Vec3) (Frame, error) {
	if err := rot.Validate(); err != nil {
		return Frame{}, err
	}
	return Frame{rot: rot, trans: trans}, nil
}

// IdentityFrame places the local frame on the world frame.
func IdentityFrame() Frame {
	return Frame{rot: IdentityRotation}
}

// Rotation returns the local-to-world rotation.
func (f Frame) Rotation() Rotation { return f.rot }

// Translation returns the position of the local origin in world space.
func (f Frame) Translation() Vec3 { return f.trans }

// ToLocalPoint maps a world position into the local frame: Rᵀ·(p−T).
func (f Frame) ToLocalPoint(p Vec3) Vec3 {
	r := &f.rot
	dx, dy, dz := p[0]-f.trans[0], p[1]-f.trans[1], p[2]-f.trans[2]
	return Vec3{
		r[0]*dx + r[3]*dy + r[6]*dz,
		r[1]*dx + r[4]*dy + r[7]*dz,
		r[2]*dx + r[5]*dy + r[8]*dz,
	}
}

// ToWorldPoint maps a local position into the world frame: R·p+T.
func (f Frame) ToWorldPoint(p Vec3) Vec3 {
	v := f.ToWorldVector(p)
	return Vec3{v[0] + f.trans[0], v[1] + f.trans[1], v[2] + f.trans[2]}
}

// ToWorldVector rotates a local direction into the world frame. Field
// vectors are directions, so no translation applies.
func (f Frame) ToWorldVector(v Vec3) Vec3 {
	r := &f.rot
	return Vec3{
		r[0]*v[0] + r[1]*v[1] + r[2]*v[2],
		r[3]*v[0] + r[4]*v[1] + r[5]*v[2],
		r[6]*v[0] + r[7]*v[1] + r[8]*v[2],
	}
}
