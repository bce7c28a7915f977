package fieldmap

import "fmt"

// TableParameter is the per-component parameter naming the field table file.
const TableParameter = "MagneticField3DTable"

// ParameterName returns the fully qualified table parameter for component.
func ParameterName(component string) string {
	return "Ge/" + component + "/" + TableParameter
}

// ParameterSource supplies string parameters from the host configuration.
type ParameterSource interface {
	GetStringParameter(key string) (string, error)
}

// PlacementSource supplies a component's pose relative to the world.
type PlacementSource interface {
	RotationRelativeToWorld() Rotation
	TranslationRelativeToWorld() Vec3
}

// LoadComponent resolves the table parameter of component, loads the table
// and places it with the component's pose. Any error is fatal to the run;
// the caller decides how to abort.
func (l *Loader) LoadComponent(params ParameterSource, placement PlacementSource, component string) (*Map, error) {
	key := ParameterName(component)
	path, err := params.GetStringParameter(key)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", key, err)
	}

	t, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", key, err)
	}

	frame, err := NewFrame(placement.RotationRelativeToWorld(), placement.TranslationRelativeToWorld())
	if err != nil {
		return nil, fmt.Errorf("placement of %s: %w", component, err)
	}

	return New(t, frame), nil
}
