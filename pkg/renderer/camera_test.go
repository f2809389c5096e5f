package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
)

func testCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       100,
		AspectRatio: 1.0,
		VFov:        90.0,
	}
}

func TestCameraGetCameraForward(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	forward := camera.GetCameraForward()
	expected := core.NewVec3(0, 0, -1)
	if !forward.Equals(expected) {
		t.Errorf("Expected forward direction %v, got %v", expected, forward)
	}

	if w, h := camera.Size(); w != 100 || h != 100 {
		t.Errorf("Expected 100x100, got %dx%d", w, h)
	}
	if camera.FocusDistance() != 1 {
		t.Errorf("Focus distance should default to |LookAt - Center|, got %f", camera.FocusDistance())
	}
}

func TestCameraPinholeCenterRay(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	ray := camera.GetRay(50, 50, core.NewVec2(0, 0), core.NewVec2(0.3, 0.9))
	if !ray.Origin.Equals(core.Vec3{}) {
		t.Errorf("Pinhole ray should start at the camera center, got %v", ray.Origin)
	}
	if dir := ray.Direction.Normalize(); !dir.Equals(core.NewVec3(0, 0, -1)) {
		t.Errorf("Center ray should point forward, got %v", dir)
	}
	if pdf := camera.LensPDF(core.NewVec2(0.5, 0.5)); pdf != 0 {
		t.Errorf("Pinhole lens has no area density, got %f", pdf)
	}
}

// Rays through one pixel from different lens points must meet on the focus plane
func TestCameraThinLensFocus(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 2
	config.ApertureShape = material.NewBladeTexture(6, 0.1)
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	pixelSample := core.NewVec2(0.25, 0.75)
	reference := camera.GetRay(30, 60, pixelSample, sampler.Get2D())
	focusPoint := reference.At(1)
	if math.Abs(focusPoint.Z+2) > 1e-9 {
		t.Fatalf("Ray should reach the focus plane at t=1, got %v", focusPoint)
	}

	distinctOrigins := 0
	for i := 0; i < 50; i++ {
		ray := camera.GetRay(30, 60, pixelSample, sampler.Get2D())
		if !ray.At(1).Equals(focusPoint) {
			t.Errorf("Lens sample %d misses the focus point: %v vs %v", i, ray.At(1), focusPoint)
		}
		if !ray.Origin.Equals(reference.Origin) {
			distinctOrigins++
		}
	}
	if distinctOrigins == 0 {
		t.Error("Thin lens should produce distinct ray origins")
	}
}

func TestCameraLensPointsFollowAperture(t *testing.T) {
	blade := material.NewBladeTexture(5, 0.3)
	config := testCameraConfig()
	config.Aperture = 0.4
	config.ApertureShape = blade
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))

	for i := 0; i < 2000; i++ {
		ray := camera.GetRay(10, 10, sampler.Get2D(), sampler.Get2D())
		offset := ray.Origin.Subtract(config.Center)
		if math.Abs(offset.Dot(camera.w)) > 1e-12 {
			t.Fatalf("Lens point %v is off the lens plane", ray.Origin)
		}
		local := core.NewVec2(offset.Dot(camera.u), offset.Dot(camera.v)).Multiply(1 / camera.lensRadius)
		if !blade.Contains(local.FromCentered()) {
			t.Fatalf("Lens point %v lies outside the aperture polygon", local)
		}
	}
}

func TestCameraLensPDF(t *testing.T) {
	blade := material.NewBladeTexture(6, 0)
	config := testCameraConfig()
	config.Aperture = 0.5
	config.ApertureShape = blade
	camera := NewCamera(config)

	// Density times lens area must be one
	side := config.Aperture
	lensArea := blade.Area() * side * side
	if got := camera.LensPDF(core.NewVec2(0.5, 0.5)) * lensArea; math.Abs(got-1) > 1e-12 {
		t.Errorf("LensPDF * lens area = %f, expected 1", got)
	}
	if pdf := camera.LensPDF(core.NewVec2(1, 1)); pdf != 0 {
		t.Errorf("Outside the aperture the lens PDF should be 0, got %f", pdf)
	}
}

func TestCameraProjectPoint(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	tests := []struct {
		name   string
		point  core.Vec3
		x, y   float64
		expect bool
	}{
		{"center", core.NewVec3(0, 0, -5), 50, 50, true},
		{"right of center", core.NewVec3(0.5, 0, -1), 75, 50, true},
		{"above center", core.NewVec3(0, 1, -2), 50, 25, true},
		{"behind camera", core.NewVec3(0, 0, 3), 0, 0, false},
		{"outside field of view", core.NewVec3(10, 10, -1), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := camera.ProjectPoint(tt.point)
			if ok != tt.expect {
				t.Fatalf("ProjectPoint(%v) ok=%v, want %v", tt.point, ok, tt.expect)
			}
			if ok && (math.Abs(x-tt.x) > 1e-9 || math.Abs(y-tt.y) > 1e-9) {
				t.Errorf("ProjectPoint(%v) = (%f, %f), want (%f, %f)", tt.point, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestCameraBokehInFocus(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 2
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	point := core.NewVec3(0.3, -0.2, -2)
	wantX, wantY, _ := camera.ProjectPoint(point)
	for i := 0; i < 100; i++ {
		x, y, ok := camera.BokehPixel(point, sampler.Get2D())
		if !ok || math.Abs(x-wantX) > 1e-9 || math.Abs(y-wantY) > 1e-9 {
			t.Fatalf("In-focus point should not blur: got (%f, %f, %v), want (%f, %f)", x, y, ok, wantX, wantY)
		}
	}
}

// Out of focus, the image of a point is the aperture scaled by its defocus
func TestCameraBokehTracesAperture(t *testing.T) {
	blade := material.NewBladeTexture(6, 0.4)
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 2
	config.ApertureShape = blade
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(2)))

	// At depth 4 the defocus factor 1 - focus/depth is 1/2
	point := core.NewVec3(0, 0, -4)
	cx, cy, _ := camera.ProjectPoint(point)
	pixelSize := camera.horizontal.Length() / float64(config.Width)

	for i := 0; i < 2000; i++ {
		x, y, ok := camera.BokehPixel(point, sampler.Get2D())
		if !ok {
			t.Fatal("Bokeh sample fell outside the image")
		}
		lens := core.NewVec2((x-cx)*pixelSize, -(y-cy)*pixelSize).Multiply(2 / camera.lensRadius)
		if !blade.Contains(lens.FromCentered()) {
			t.Fatalf("Bokeh sample (%f, %f) maps back outside the aperture", x, y)
		}
	}

	if _, _, ok := camera.BokehPixel(core.NewVec3(0, 0, 1), sampler.Get2D()); ok {
		t.Error("Points behind the camera cannot blur onto the image")
	}
}
