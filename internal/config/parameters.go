package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/fieldmap/internal/fieldmap"
	"github.com/banshee-data/fieldmap/internal/fsutil"
)

// maxFileSize caps the size of a parameter file.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Parameters is the root of a JSON parameter file. String parameters are
// keyed by their fully qualified name, e.g. "Ge/Dipole/MagneticField3DTable".
type Parameters struct {
	Strings    map[string]string           `json:"parameters,omitempty"`
	Placements map[string]*PlacementConfig `json:"placements,omitempty"`
}

// PlacementConfig positions a component relative to the world. The rotation
// is given either as a row-major 3x3 matrix or as an axis and an angle.
type PlacementConfig struct {
	Matrix        *[9]float64 `json:"rotation,omitempty"`
	Axis          *[3]float64 `json:"axis,omitempty"`
	AngleDeg      *float64    `json:"angle_deg,omitempty"`
	TranslationMM *[3]float64 `json:"translation_mm,omitempty"`
}

// LoadParameters loads a parameter file from the OS filesystem.
func LoadParameters(path string) (*Parameters, error) {
	return LoadParametersFS(fsutil.OSFileSystem{}, path)
}

// LoadParametersFS loads a parameter file through fsys.
// The file must have a .json extension and be under 1MB.
func LoadParametersFS(fsys fsutil.FileSystem, path string) (*Parameters, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	p := &Parameters{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}

// Validate checks every placement in the file.
func (p *Parameters) Validate() error {
	for name, pc := range p.Placements {
		if pc == nil {
			continue
		}
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("placement %q: %w", name, err)
		}
	}
	return nil
}

// GetStringParameter returns the string parameter named key.
func (p *Parameters) GetStringParameter(key string) (string, error) {
	v, ok := p.Strings[key]
	if !ok {
		return "", fmt.Errorf("parameter %q is not defined", key)
	}
	if v == "" {
		return "", fmt.Errorf("parameter %q is empty", key)
	}
	return v, nil
}

// Placement returns the pose of component. Components without a placement
// sit at the world origin with no rotation.
func (p *Parameters) Placement(component string) Placement {
	pc := p.Placements[component]
	if pc == nil {
		return Placement{Rot: fieldmap.IdentityRotation}
	}
	return Placement{Rot: pc.GetRotation(), Trans: pc.GetTranslation()}
}

// Validate checks that the rotation is specified at most one way and
// describes a proper rotation.
func (c *PlacementConfig) Validate() error {
	if c.Matrix != nil && (c.Axis != nil || c.AngleDeg != nil) {
		return fmt.Errorf("rotation and axis/angle_deg are mutually exclusive")
	}
	if c.Axis != nil {
		if r3.Norm(axisVec(*c.Axis)) == 0 {
			return fmt.Errorf("axis must be non-zero")
		}
	}
	if c.AngleDeg != nil && c.Axis == nil {
		return fmt.Errorf("angle_deg requires axis")
	}
	if c.AngleDeg != nil && (math.IsNaN(*c.AngleDeg) || math.IsInf(*c.AngleDeg, 0)) {
		return fmt.Errorf("angle_deg must be finite, got %f", *c.AngleDeg)
	}
	return c.GetRotation().Validate()
}

// GetRotation returns the configured rotation or the identity.
func (c *PlacementConfig) GetRotation() fieldmap.Rotation {
	switch {
	case c.Matrix != nil:
		return fieldmap.Rotation(*c.Matrix)
	case c.Axis != nil:
		angle := 0.0
		if c.AngleDeg != nil {
			angle = *c.AngleDeg
		}
		return axisAngle(axisVec(*c.Axis), angle*math.Pi/180)
	default:
		return fieldmap.IdentityRotation
	}
}

// GetTranslation returns the configured translation in mm or the origin.
func (c *PlacementConfig) GetTranslation() fieldmap.Vec3 {
	if c.TranslationMM == nil {
		return fieldmap.Vec3{}
	}
	return fieldmap.Vec3(*c.TranslationMM)
}

func axisVec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// axisAngle builds the rotation matrix whose columns are the rotated basis vectors.
func axisAngle(axis r3.Vec, alpha float64) fieldmap.Rotation {
	q := r3.NewRotation(alpha, r3.Unit(axis))
	var out fieldmap.Rotation
	for j, e := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		col := q.Rotate(e)
		out[j] = col.X
		out[3+j] = col.Y
		out[6+j] = col.Z
	}
	return out
}

// Placement is a resolved component pose.
type Placement struct {
	Rot   fieldmap.Rotation
	Trans fieldmap.Vec3
}

// RotationRelativeToWorld returns the local-to-world rotation.
func (p Placement) RotationRelativeToWorld() fieldmap.Rotation { return p.Rot }

// TranslationRelativeToWorld returns the position of the local origin in the world.
func (p Placement) TranslationRelativeToWorld() fieldmap.Vec3 { return p.Trans }
