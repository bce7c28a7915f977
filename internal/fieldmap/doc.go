// Package fieldmap loads tabulated 3D vector fields and evaluates them at
// world-space points.
//
// Responsibilities: parsing and validating field table files, resolving
// header units, holding the placement frame of the owning component, and
// trilinear interpolation of the tabulated field.
// Key types: Table, Grid, BoundingBox, Frame, Map.
//
// Everything is built once by Load/New and is immutable afterwards, so
// Map.Evaluate may be called concurrently without locking. The query path
// does not allocate.
package fieldmap
