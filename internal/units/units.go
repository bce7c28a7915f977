// Package units resolves the unit tokens found in field table headers into
// numeric scale factors of the host simulation's unit system.
package units

import (
	"strings"

	"github.com/banshee-data/fieldmap/internal/monitoring"
)

// Unit token constants recognised by Resolve.
const (
	MM    = "mm"
	M     = "m"
	Metre = "metre"
	Meter = "meter"
	Tesla = "tesla"
)

// System holds the scale factors the host unit system assigns to each
// recognised unit. The values are opaque to this package.
type System struct {
	Millimetre float64
	Metre      float64
	Tesla      float64
}

// DefaultSystem uses millimetres as the length base and expresses tesla in
// the same base units (MeV, ns, e+) the consuming engine integrates in.
var DefaultSystem = System{
	Millimetre: 1,
	Metre:      1000,
	Tesla:      0.001,
}

// Resolver maps unit tokens to scale factors for one System.
type Resolver struct {
	sys System
}

// NewResolver returns a resolver bound to sys.
func NewResolver(sys System) *Resolver {
	return &Resolver{sys: sys}
}

// System returns the unit system the resolver was built with.
func (r *Resolver) System() System {
	return r.sys
}

// Resolve returns the scale factor for token. Brackets are stripped and the
// token lower-cased first, so "[MM]" resolves like "mm". Unknown tokens
// resolve to 1 and are logged rather than rejected.
func (r *Resolver) Resolve(token string) float64 {
	switch Normalize(token) {
	case MM:
		return r.sys.Millimetre
	case M, Metre, Meter:
		return r.sys.Metre
	case Tesla:
		return r.sys.Tesla
	default:
		monitoring.Logf("[units] unrecognised unit %q, treating values as base units", token)
		return 1
	}
}

// Kind classifies a unit token by the quantity it measures.
type Kind int

const (
	Unknown Kind = iota
	Length
	MagneticField
)

func (k Kind) String() string {
	switch k {
	case Length:
		return "length"
	case MagneticField:
		return "magnetic field"
	}
	return "unknown"
}

// KindOf returns the quantity token measures after normalisation.
func KindOf(token string) Kind {
	switch Normalize(token) {
	case MM, M, Metre, Meter:
		return Length
	case Tesla:
		return MagneticField
	}
	return Unknown
}

// Known reports whether token names a recognised unit after normalisation.
func Known(token string) bool {
	return KindOf(token) != Unknown
}

// Normalize removes the first '[' and the first ']' from token and lower-cases
// the remainder.
func Normalize(token string) string {
	token = strings.Replace(token, "[", "", 1)
	token = strings.Replace(token, "]", "", 1)
	return strings.ToLower(token)
}
