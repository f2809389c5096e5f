package core

import "math"

// Vec2 is a 2D vector, used for UV coordinates and sample pairs
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Subtract returns the difference of two vectors
func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// Dot returns the dot product of two vectors
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude of the vector
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rotate returns the vector rotated counter-clockwise by phi radians
func (v Vec2) Rotate(phi float64) Vec2 {
	sinPhi, cosPhi := math.Sincos(phi)
	return Vec2{
		X: v.X*cosPhi - v.Y*sinPhi,
		Y: v.Y*cosPhi + v.X*sinPhi,
	}
}

// IsZero reports whether both components are exactly zero
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// ToCentered maps a point of the unit square [0,1]² to [-1,1]²
func (v Vec2) ToCentered() Vec2 {
	return Vec2{2*v.X - 1, 2*v.Y - 1}
}

// FromCentered maps a point of [-1,1]² back to the unit square
func (v Vec2) FromCentered() Vec2 {
	return Vec2{v.X*0.5 + 0.5, v.Y*0.5 + 0.5}
}
