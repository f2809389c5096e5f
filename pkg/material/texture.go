package material

import (
	"github.com/df07/go-bokeh/pkg/core"
)

// JacobianMode selects how a texture's UV domain maps onto a surface when it
// is importance sampled. Planar shapes such as apertures ignore it.
type JacobianMode int

const (
	MapUniform JacobianMode = iota
	MapSpherical
)

// SurfaceHit is the part of a ray-surface intersection a texture can look up
type SurfaceHit struct {
	Point  core.Vec3 // World-space intersection point
	Normal core.Vec3 // Surface normal at the intersection
	UV     core.Vec2 // Surface parameterization at the intersection
}

// Texture provides spatially-varying colors over a [0,1]² UV domain
type Texture interface {
	// Evaluate returns the color at the given UV coordinates
	Evaluate(uv core.Vec2) core.Vec3

	// EvaluateAt returns the color at an intersection, using its surface UV
	EvaluateAt(hit SurfaceHit) core.Vec3

	// IsConstant reports whether the texture has the same value everywhere
	IsConstant() bool

	// Average, Minimum and Maximum summarize the texture per channel
	Average() core.Vec3
	Minimum() core.Vec3
	Maximum() core.Vec3

	// Derivatives returns the analytic UV gradient of the texture's scalar value
	Derivatives(uv core.Vec2) core.Vec2
}

// SamplableTexture is a Texture that can be importance sampled over its UV domain
type SamplableTexture interface {
	Texture

	// Sample maps two uniform random numbers to a UV point distributed
	// proportionally to the texture
	Sample(mode JacobianMode, uv core.Vec2) core.Vec2

	// PDF returns the density of Sample at uv, with respect to UV area
	PDF(mode JacobianMode, uv core.Vec2) float64
}
