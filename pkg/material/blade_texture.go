package material

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/df07/go-bokeh/pkg/core"
)

const (
	// MinBlades is the smallest blade count that forms a polygon
	MinBlades = 3
	// DefaultBlades is the blade count of NewDefaultBladeTexture
	DefaultBlades = 6
)

// BladeTexture is a binary mask of a regular polygon modelling a camera
// aperture with a number of straight blades. The polygon is inscribed in the
// unit circle of the centered [-1,1]² domain, which maps to UV [0,1]².
//
// A BladeTexture is immutable: WithBlades and WithAngle return new values with
// all derived constants recomputed, so one instance can be shared by any
// number of goroutines.
type BladeTexture struct {
	blades int
	angle  float64

	// Derived from (blades, angle) by init
	bladeAngle float64
	area       float64
	baseEdge   core.Vec2
	baseNormal core.Vec2
}

// edgeEpsilon is how far, in centered units, a point may sit past an edge and
// still count as inside. Samples on an edge round to either side of it.
const edgeEpsilon = 1e-10

// DefaultBladeAngle returns the rotation used when none is configured
func DefaultBladeAngle(blades int) float64 {
	return 0.5 * math.Pi / float64(blades)
}

// NewDefaultBladeTexture creates a six-bladed aperture with the default rotation
func NewDefaultBladeTexture() *BladeTexture {
	return NewBladeTexture(DefaultBlades, DefaultBladeAngle(DefaultBlades))
}

// NewBladeTexture creates a blade polygon with the given blade count and
// rotation in radians. Blade counts below MinBlades are clamped.
func NewBladeTexture(blades int, angle float64) *BladeTexture {
	if blades < MinBlades {
		core.Logger().Warn("blade count below minimum, clamping",
			"blades", blades, "min", MinBlades)
		blades = MinBlades
	}
	b := &BladeTexture{blades: blades, angle: angle}
	b.init()
	return b
}

// init derives every dependent constant; it must only run on a value that is
// not yet shared.
func (b *BladeTexture) init() {
	b.bladeAngle = 2 * math.Pi / float64(b.blades)
	sinHalf, cosHalf := math.Sincos(b.bladeAngle * 0.5)

	// Each blade is the triangle (0,0), (1,0), (cos θ, sin θ) in centered
	// coordinates. Centered area is N·sin(θ)/2 and UV area is a quarter of it.
	b.area = 0.25 * 0.5 * float64(b.blades) * math.Sin(b.bladeAngle)
	b.baseEdge = core.NewVec2(-sinHalf, cosHalf).Multiply(2 * math.Sin(math.Pi/float64(b.blades)))
	b.baseNormal = core.NewVec2(cosHalf, sinHalf)
}

// WithBlades returns a copy with a different blade count
func (b *BladeTexture) WithBlades(blades int) *BladeTexture {
	return NewBladeTexture(blades, b.angle)
}

// WithAngle returns a copy with a different rotation
func (b *BladeTexture) WithAngle(angle float64) *BladeTexture {
	return NewBladeTexture(b.blades, angle)
}

func (b *BladeTexture) Blades() int         { return b.blades }
func (b *BladeTexture) Angle() float64      { return b.angle }
func (b *BladeTexture) BladeAngle() float64 { return b.bladeAngle }

// Area returns the polygon's area in UV space
func (b *BladeTexture) Area() float64 { return b.area }

// edgeDistance folds a centered point into the canonical blade and returns its
// signed offset along the outward edge normal. Positive means outside.
func (b *BladeTexture) edgeDistance(p core.Vec2) float64 {
	phi := math.Atan2(p.Y, p.X) - b.angle
	phi = -(math.Floor(phi/b.bladeAngle)*b.bladeAngle + b.angle)
	local := p.Rotate(phi)
	return b.baseNormal.Dot(local.Subtract(core.NewVec2(1, 0)))
}

// Contains reports whether uv lies inside the polygon or on its boundary.
//
// The zero vector is a sentinel used by callers probing without a surface
// parameterization and is always inside, even though (0,0) is a corner of
// the UV domain.
func (b *BladeTexture) Contains(uv core.Vec2) bool {
	if uv.IsZero() {
		return true
	}
	return b.edgeDistance(uv.ToCentered()) <= edgeEpsilon
}

// Evaluate returns white inside the polygon and black outside
func (b *BladeTexture) Evaluate(uv core.Vec2) core.Vec3 {
	if b.Contains(uv) {
		return core.Splat(1)
	}
	return core.Splat(0)
}

// EvaluateAt evaluates the mask at the hit's surface UV
func (b *BladeTexture) EvaluateAt(hit SurfaceHit) core.Vec3 {
	return b.Evaluate(hit.UV)
}

func (b *BladeTexture) IsConstant() bool { return false }

// Average is the fraction of the UV square covered by the polygon
func (b *BladeTexture) Average() core.Vec3 { return core.Splat(b.area) }

func (b *BladeTexture) Minimum() core.Vec3 { return core.Splat(0) }
func (b *BladeTexture) Maximum() core.Vec3 { return core.Splat(1) }

// Derivatives is always zero; the mask is a step function
func (b *BladeTexture) Derivatives(uv core.Vec2) core.Vec2 {
	return core.Vec2{}
}

// Sample maps uv in [0,1)² to a point distributed uniformly over the polygon.
// uv.X picks a blade and is then reused to place the point inside that
// blade's triangle together with uv.Y.
func (b *BladeTexture) Sample(mode JacobianMode, uv core.Vec2) core.Vec2 {
	u := uv.X * float64(b.blades)
	blade := min(int(u), b.blades-1)
	u -= float64(blade)

	phi := b.angle + float64(blade)*b.bladeAngle

	alpha, beta := core.SampleUniformTriangle(core.NewVec2(u, uv.Y))
	local := core.NewVec2(
		(1+b.baseEdge.X)*beta+(1-alpha-beta),
		b.baseEdge.Y*beta,
	)

	return local.Rotate(phi).FromCentered()
}

// PDF returns 1/Area inside the polygon (including the zero-vector sentinel)
// and 0 outside
func (b *BladeTexture) PDF(mode JacobianMode, uv core.Vec2) float64 {
	if !b.Contains(uv) {
		return 0
	}
	return 1 / b.area
}

// Vertices returns the polygon corners in UV space, counter-clockwise
func (b *BladeTexture) Vertices() []core.Vec2 {
	vertices := make([]core.Vec2, b.blades)
	for i := range vertices {
		phi := b.angle + float64(i)*b.bladeAngle
		vertices[i] = core.NewVec2(math.Cos(phi), math.Sin(phi)).FromCentered()
	}
	return vertices
}

// Bounds returns the UV bounding box of the polygon
func (b *BladeTexture) Bounds() geom.Rect {
	vertices := b.Vertices()
	first := geom.Coord{X: vertices[0].X, Y: vertices[0].Y}
	bounds := geom.Rect{Min: first, Max: first}
	for _, v := range vertices[1:] {
		bounds.ExpandToContainCoord(geom.Coord{X: v.X, Y: v.Y})
	}
	return bounds
}
