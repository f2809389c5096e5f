package renderer

import (
	"math"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	Width         int       // Image width in pixels
	AspectRatio   float64   // Width / height
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter; 0 is a pinhole
	FocusDistance float64   // Distance to the focus plane; 0 uses |LookAt - Center|

	// ApertureShape is the lens opening over the unit square; nil means a disk
	ApertureShape material.SamplableTexture
}

// Camera is a thin-lens camera whose lens opening is described by a samplable texture
type Camera struct {
	config CameraConfig
	height int

	u, v, w         core.Vec3 // Camera basis; w points backwards
	lowerLeftCorner core.Vec3 // Lower-left corner of the viewport on the focus plane
	horizontal      core.Vec3
	vertical        core.Vec3
	focusDistance   float64
	lensRadius      float64
	shape           material.SamplableTexture
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	if config.AspectRatio <= 0 {
		config.AspectRatio = 1
	}
	if config.Width <= 0 {
		config.Width = 1
	}

	shape := config.ApertureShape
	if shape == nil {
		shape = material.NewDiskTexture()
	}

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookAt.Subtract(config.Center).Length()
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth * focusDistance)
	vertical := v.Multiply(viewportHeight * focusDistance)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		config:          config,
		height:          max(1, int(float64(config.Width)/config.AspectRatio)),
		u:               u,
		v:               v,
		w:               w,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		focusDistance:   focusDistance,
		lensRadius:      config.Aperture / 2,
		shape:           shape,
	}
}

// Size returns the image dimensions in pixels
func (c *Camera) Size() (width, height int) {
	return c.config.Width, c.height
}

// GetCameraForward returns the viewing direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// FocusDistance returns the distance from the lens to the plane in focus
func (c *Camera) FocusDistance() float64 {
	return c.focusDistance
}

// lensOffset maps a lens sample through the aperture shape to a world-space
// offset from the lens center
func (c *Camera) lensOffset(lensSample core.Vec2) core.Vec3 {
	if c.lensRadius <= 0 {
		return core.Vec3{}
	}
	p := c.shape.Sample(material.MapUniform, lensSample).ToCentered().Multiply(c.lensRadius)
	return c.u.Multiply(p.X).Add(c.v.Multiply(p.Y))
}

// GetRay generates a ray for pixel (i, j), with j counted from the top of the
// image. pixelSample jitters within the pixel and lensSample picks the point
// on the lens.
func (c *Camera) GetRay(i, j int, pixelSample, lensSample core.Vec2) core.Ray {
	s := (float64(i) + pixelSample.X) / float64(c.config.Width)
	t := 1 - (float64(j)+pixelSample.Y)/float64(c.height)

	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))
	origin := c.config.Center.Add(c.lensOffset(lensSample))

	return core.NewRay(origin, target.Subtract(origin))
}

// LensPDF returns the density, per unit lens area, of the lens point the
// aperture shape produces for lensUV. A pinhole has no area and returns 0.
func (c *Camera) LensPDF(lensUV core.Vec2) float64 {
	if c.lensRadius <= 0 {
		return 0
	}
	side := 2 * c.lensRadius
	return c.shape.PDF(material.MapUniform, lensUV) / (side * side)
}

// ProjectPoint maps a world point through the lens center onto the image,
// returning continuous pixel coordinates
func (c *Camera) ProjectPoint(p core.Vec3) (x, y float64, ok bool) {
	d := p.Subtract(c.config.Center)
	depth := -d.Dot(c.w)
	if depth <= 0 {
		return 0, 0, false
	}

	onFocusPlane := c.config.Center.Add(d.Multiply(c.focusDistance / depth))
	rel := onFocusPlane.Subtract(c.lowerLeftCorner)
	s := rel.Dot(c.u) / c.horizontal.Length()
	t := rel.Dot(c.v) / c.vertical.Length()

	x = s * float64(c.config.Width)
	y = (1 - t) * float64(c.height)
	if x < 0 || y < 0 || x >= float64(c.config.Width) || y >= float64(c.height) {
		return x, y, false
	}
	return x, y, true
}

// BokehPixel returns where light leaving p through the lens point chosen by
// lensSample lands on the image. Points on the focus plane land on one pixel;
// others trace out the aperture shape, scaled by their defocus.
func (c *Camera) BokehPixel(p core.Vec3, lensSample core.Vec2) (x, y float64, ok bool) {
	depth := -p.Subtract(c.config.Center).Dot(c.w)
	if depth <= 0 {
		return 0, 0, false
	}

	lensPoint := c.config.Center.Add(c.lensOffset(lensSample))
	onFocusPlane := lensPoint.Add(p.Subtract(lensPoint).Multiply(c.focusDistance / depth))
	return c.ProjectPoint(onFocusPlane)
}
