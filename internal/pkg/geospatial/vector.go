package geospatial

import "gonum.org/v1/gonum/spatial/r2"

// Vector is an immutable 2-D vector in projected (easting, northing) space.
type Vector struct {
	v r2.Vec
}

// NewVector returns the vector (easting, northing).
func NewVector(easting, northing float64) Vector {
	return Vector{v: r2.Vec{X: easting, Y: northing}}
}

// Easting returns the x component.
func (a Vector) Easting() float64 { return a.v.X }

// Northing returns the y component.
func (a Vector) Northing() float64 { return a.v.Y }

// Sub returns a − b.
func (a Vector) Sub(b Vector) Vector { return Vector{v: r2.Sub(a.v, b.v)} }

// Dot returns the dot product of a and b.
func (a Vector) Dot(b Vector) float64 { return r2.Dot(a.v, b.v) }

// Norm returns the Euclidean length of a.
func (a Vector) Norm() float64 { return r2.Norm(a.v) }

// Zero reports whether both components are zero.
func (a Vector) Zero() bool { return a.v.X == 0 && a.v.Y == 0 }
