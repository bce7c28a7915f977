// Package monitor renders field profiles sampled along a line through a
// field map, as PNG plots and interactive HTML charts.
package monitor

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyProfile is returned when rendering a profile with no samples.
var ErrEmptyProfile = errors.New("monitor: profile has no samples")

// Profile holds field components against distance along a scan line.
// Distances are in mm and field values in tesla.
type Profile struct {
	Title    string
	Subtitle string
	Distance []float64
	BX       []float64
	BY       []float64
	BZ       []float64
	Mag      []float64
}

// NewProfile builds a profile from sample positions and field vectors.
// Distance is measured from the first position.
func NewProfile(title string, pos, field [][3]float64) (*Profile, error) {
	if len(pos) != len(field) {
		return nil, fmt.Errorf("monitor: %d positions but %d field values", len(pos), len(field))
	}
	n := len(pos)
	p := &Profile{
		Title:    title,
		Distance: make([]float64, n),
		BX:       make([]float64, n),
		BY:       make([]float64, n),
		BZ:       make([]float64, n),
		Mag:      make([]float64, n),
	}
	for i := range pos {
		if i > 0 {
			p.Distance[i] = floats.Distance(pos[i][:], pos[0][:], 2)
		}
		p.BX[i], p.BY[i], p.BZ[i] = field[i][0], field[i][1], field[i][2]
		p.Mag[i] = floats.Norm(field[i][:], 2)
	}
	return p, nil
}

// Len returns the number of samples.
func (p *Profile) Len() int { return len(p.Distance) }

// MaxMagnitude returns the largest field magnitude, or 0 for an empty profile.
func (p *Profile) MaxMagnitude() float64 {
	if p.Len() == 0 {
		return 0
	}
	return floats.Max(p.Mag)
}

type series struct {
	name   string
	values []float64
}

func (p *Profile) series() []series {
	return []series{
		{"Bx", p.BX},
		{"By", p.BY},
		{"Bz", p.BZ},
		{"|B|", p.Mag},
	}
}

// generateColors spreads n colours evenly around the hue wheel.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
