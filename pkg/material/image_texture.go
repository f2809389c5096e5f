package material

import (
	"github.com/df07/go-bokeh/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]

	average, minimum, maximum core.Vec3
}

// NewImageTexture creates a new image texture and precomputes its color summary
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	t := &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
	t.summarize()
	return t
}

func (t *ImageTexture) summarize() {
	if len(t.Pixels) == 0 {
		return
	}
	t.minimum = t.Pixels[0]
	t.maximum = t.Pixels[0]
	var sum core.Vec3
	for _, p := range t.Pixels {
		sum = sum.Add(p)
		t.minimum = core.NewVec3(min(t.minimum.X, p.X), min(t.minimum.Y, p.Y), min(t.minimum.Z, p.Z))
		t.maximum = core.NewVec3(max(t.maximum.X, p.X), max(t.maximum.Y, p.Y), max(t.maximum.Z, p.Z))
	}
	t.average = sum.Multiply(1.0 / float64(len(t.Pixels)))
}

// Evaluate samples the texture at given UV coordinates using nearest-neighbor filtering
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	// Wrap UV coordinates to [0, 1]
	u := uv.X - float64(int(uv.X))
	v := uv.Y - float64(int(uv.Y))
	if u < 0 {
		u += 1.0
	}
	if v < 0 {
		v += 1.0
	}

	// V=0 is bottom, V=1 is top (flip V for image coordinates where origin is top-left)
	x := int(u * float64(t.Width))
	y := int((1.0 - v) * float64(t.Height))

	x = max(0, min(t.Width-1, x))
	y = max(0, min(t.Height-1, y))

	return t.Pixels[y*t.Width+x]
}

// EvaluateAt samples the texture at the hit's surface UV
func (t *ImageTexture) EvaluateAt(hit SurfaceHit) core.Vec3 {
	return t.Evaluate(hit.UV)
}

// IsConstant reports whether every pixel has the same color
func (t *ImageTexture) IsConstant() bool {
	return t.minimum == t.maximum
}

func (t *ImageTexture) Average() core.Vec3 { return t.average }
func (t *ImageTexture) Minimum() core.Vec3 { return t.minimum }
func (t *ImageTexture) Maximum() core.Vec3 { return t.maximum }

// Derivatives is zero: nearest-neighbor lookup is piecewise constant
func (t *ImageTexture) Derivatives(uv core.Vec2) core.Vec2 {
	return core.Vec2{}
}
