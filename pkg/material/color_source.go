package material

import (
	"github.com/df07/go-bokeh/pkg/core"
)

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV
func (s *SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}

// EvaluateAt returns the solid color regardless of the hit
func (s *SolidColor) EvaluateAt(hit SurfaceHit) core.Vec3 {
	return s.Color
}

func (s *SolidColor) IsConstant() bool   { return true }
func (s *SolidColor) Average() core.Vec3 { return s.Color }
func (s *SolidColor) Minimum() core.Vec3 { return s.Color }
func (s *SolidColor) Maximum() core.Vec3 { return s.Color }

// Derivatives is always zero for a constant texture
func (s *SolidColor) Derivatives(uv core.Vec2) core.Vec2 {
	return core.Vec2{}
}
