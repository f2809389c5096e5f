package material

import (
	"math"

	"github.com/df07/go-bokeh/pkg/core"
)

// DiskTexture is a circular aperture mask: the disk inscribed in the UV square.
// It is the limit of a BladeTexture as the blade count grows.
type DiskTexture struct{}

// NewDiskTexture creates a circular aperture
func NewDiskTexture() *DiskTexture {
	return &DiskTexture{}
}

// Area returns the disk's area in UV space
func (d *DiskTexture) Area() float64 {
	return math.Pi / 4
}

// Contains reports whether uv lies inside the disk; the zero vector is
// treated as the center probe, as for BladeTexture
func (d *DiskTexture) Contains(uv core.Vec2) bool {
	if uv.IsZero() {
		return true
	}
	p := uv.ToCentered()
	return p.Dot(p) <= 1
}

func (d *DiskTexture) Evaluate(uv core.Vec2) core.Vec3 {
	if d.Contains(uv) {
		return core.Splat(1)
	}
	return core.Splat(0)
}

func (d *DiskTexture) EvaluateAt(hit SurfaceHit) core.Vec3 {
	return d.Evaluate(hit.UV)
}

func (d *DiskTexture) IsConstant() bool   { return false }
func (d *DiskTexture) Average() core.Vec3 { return core.Splat(d.Area()) }
func (d *DiskTexture) Minimum() core.Vec3 { return core.Splat(0) }
func (d *DiskTexture) Maximum() core.Vec3 { return core.Splat(1) }

func (d *DiskTexture) Derivatives(uv core.Vec2) core.Vec2 {
	return core.Vec2{}
}

// Sample uses the concentric square-to-disk mapping
func (d *DiskTexture) Sample(mode JacobianMode, uv core.Vec2) core.Vec2 {
	return core.SamplePointInUnitDisk(uv).FromCentered()
}

func (d *DiskTexture) PDF(mode JacobianMode, uv core.Vec2) float64 {
	if !d.Contains(uv) {
		return 0
	}
	return 1 / d.Area()
}
