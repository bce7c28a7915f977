package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/fieldmap/internal/config"
	"github.com/banshee-data/fieldmap/internal/fieldmap"
)

// loadError is a table load failure that ends the session.
type loadError struct {
	key  string
	path string
	err  error
}

func (e *loadError) Error() string {
	return fmt.Sprintf("parameter %s (%s): %v", e.key, e.path, e.err)
}

func (e *loadError) Unwrap() error { return e.err }

// sourceFlags selects a table and its placement.
type sourceFlags struct {
	table     string
	rot       string
	shift     string
	config    string
	component string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.table, "table", "", "Field table file")
	fs.StringVar(&s.rot, "rot", "", "Row-major rotation r00,r01,...,r22")
	fs.StringVar(&s.shift, "shift", "", "Translation x,y,z in mm")
	fs.StringVar(&s.config, "config", "", "JSON parameter file")
	fs.StringVar(&s.component, "component", "", "Component name in the parameter file")
}

// loaded is a placed field map and where it came from.
type loaded struct {
	m         *fieldmap.Map
	source    string
	component string
	tesla     float64
}

func (s *sourceFlags) load() (*loaded, error) {
	loader := fieldmap.NewLoader()
	tesla := loader.Resolver.System().Tesla

	switch {
	case s.config != "":
		if s.component == "" {
			return nil, fmt.Errorf("-config requires -component")
		}
		if s.table != "" || s.rot != "" || s.shift != "" {
			return nil, fmt.Errorf("-config cannot be combined with -table, -rot or -shift")
		}
		params, err := config.LoadParameters(s.config)
		if err != nil {
			return nil, err
		}
		key := fieldmap.ParameterName(s.component)
		path, err := params.GetStringParameter(key)
		if err != nil {
			return nil, err
		}
		m, err := loader.LoadComponent(params, params.Placement(s.component), s.component)
		if err != nil {
			return nil, &loadError{key: key, path: path, err: err}
		}
		return &loaded{m: m, source: path, component: s.component, tesla: tesla}, nil

	case s.table != "":
		rot := fieldmap.IdentityRotation
		if s.rot != "" {
			v, err := parseFloats(s.rot, 9)
			if err != nil {
				return nil, fmt.Errorf("-rot: %w", err)
			}
			copy(rot[:], v)
		}
		var shift fieldmap.Vec3
		if s.shift != "" {
			v, err := parseVec(s.shift)
			if err != nil {
				return nil, fmt.Errorf("-shift: %w", err)
			}
			shift = v
		}
		frame, err := fieldmap.NewFrame(rot, shift)
		if err != nil {
			return nil, fmt.Errorf("-rot: %w", err)
		}
		t, err := loader.Load(s.table)
		if err != nil {
			return nil, &loadError{key: "-table", path: s.table, err: err}
		}
		return &loaded{m: fieldmap.New(t, frame), source: s.table, tesla: tesla}, nil

	default:
		return nil, fmt.Errorf("one of -table or -config is required")
	}
}

// toTesla converts an internal field vector to tesla.
func (l *loaded) toTesla(b fieldmap.Vec3) [3]float64 {
	return [3]float64{b[0] / l.tesla, b[1] / l.tesla, b[2] / l.tesla}
}

func parseVec(s string) (fieldmap.Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return fieldmap.Vec3{}, err
	}
	return fieldmap.Vec3{v[0], v[1], v[2]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
