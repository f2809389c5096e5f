package renderer

import (
	"bytes"
	"math"
	"testing"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
)

func TestRenderMaskCoverage(t *testing.T) {
	for _, blades := range []int{3, 6, 8} {
		blade := material.NewBladeTexture(blades, material.DefaultBladeAngle(blades))
		img, stats := RenderMask(blade, RenderOptions{Size: 128, Supersample: 4, TileSize: 16})

		if stats.TotalPixels != 128*128 {
			t.Errorf("N=%d: expected %d pixels, got %d", blades, 128*128, stats.TotalPixels)
		}
		if stats.AverageSamples() != 16 {
			t.Errorf("N=%d: expected 16 samples per pixel, got %f", blades, stats.AverageSamples())
		}
		if math.Abs(stats.HitFraction()-blade.Area()) > 0.005 {
			t.Errorf("N=%d: mask coverage %f, expected area %f", blades, stats.HitFraction(), blade.Area())
		}
		if math.Abs(CalculateAverageLuminance(img)-blade.Area()) > 0.01 {
			t.Errorf("N=%d: mean luminance %f, expected %f", blades, CalculateAverageLuminance(img), blade.Area())
		}

		if img.GrayAt(64, 64).Y != 255 {
			t.Errorf("N=%d: center pixel should be white, got %d", blades, img.GrayAt(64, 64).Y)
		}
		if img.GrayAt(127, 0).Y != 0 {
			t.Errorf("N=%d: corner pixel should be black, got %d", blades, img.GrayAt(127, 0).Y)
		}
	}
}

func TestRenderMaskDeterministicAcrossWorkers(t *testing.T) {
	blade := material.NewBladeTexture(5, 0.3)
	single, _ := RenderMask(blade, RenderOptions{Size: 64, Supersample: 2, NumWorkers: 1})
	parallel, _ := RenderMask(blade, RenderOptions{Size: 64, Supersample: 2, NumWorkers: 4})

	if !bytes.Equal(single.Pix, parallel.Pix) {
		t.Error("Mask should not depend on the number of workers")
	}
}

func TestRenderSampleHistogram(t *testing.T) {
	blade := material.NewBladeTexture(6, 0.2)
	const size = 16
	const samples = 400000

	h, stats := RenderSampleHistogram(blade, RenderOptions{Size: size, Samples: samples, TileSize: 20})

	if h.Total != samples || stats.TotalSamples != samples {
		t.Fatalf("Expected %d samples, got %d / %d", samples, h.Total, stats.TotalSamples)
	}
	if stats.Hits != samples {
		t.Errorf("Every sample should have nonzero density, %d of %d did", stats.Hits, samples)
	}
	if h.Escaped != 0 {
		t.Errorf("%d samples escaped the polygon bounds", h.Escaped)
	}

	var binned float64
	for _, c := range h.Counts {
		binned += c
	}
	if binned != samples {
		t.Errorf("Expected all %d samples binned, got %f", samples, binned)
	}

	// Bins entirely inside the polygon receive pdf * binArea * samples
	expected := samples / blade.Area() / (size * size)
	checked := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			x0, x1 := float64(x)/size, float64(x+1)/size
			y0, y1 := 1-float64(y+1)/size, 1-float64(y)/size
			if !blade.Contains(core.NewVec2(x0, y0)) || !blade.Contains(core.NewVec2(x1, y0)) ||
				!blade.Contains(core.NewVec2(x0, y1)) || !blade.Contains(core.NewVec2(x1, y1)) {
				continue
			}
			checked++
			if ratio := h.Count(x, y) / expected; math.Abs(ratio-1) > 0.12 {
				t.Errorf("Bin (%d,%d): count %f, expected %f", x, y, h.Count(x, y), expected)
			}
		}
	}
	if checked < 50 {
		t.Errorf("Expected many interior bins, checked only %d", checked)
	}

	img := h.Image(blade)
	if g := img.GrayAt(size/2, size/2).Y; g < 110 || g > 145 {
		t.Errorf("Interior bins should normalize to mid-gray, got %d", g)
	}
	if g := img.GrayAt(0, 0).Y; g != 0 {
		t.Errorf("Empty corner bin should be black, got %d", g)
	}
}

func TestRenderSampleHistogramDisk(t *testing.T) {
	disk := material.NewDiskTexture()
	h, stats := RenderSampleHistogram(disk, RenderOptions{Size: 8, Samples: 50000})

	if stats.HitFraction() != 1 {
		t.Errorf("Disk samples should all have nonzero density, got %f", stats.HitFraction())
	}
	if h.Escaped != 0 {
		t.Errorf("Disk has no bounds; nothing should be counted as escaped, got %d", h.Escaped)
	}
}

func TestRenderBokeh(t *testing.T) {
	blade := material.NewBladeTexture(6, 0)
	camera := NewCamera(CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         200,
		AspectRatio:   1,
		VFov:          40,
		Aperture:      1,
		FocusDistance: 2,
		ApertureShape: blade,
	})

	img, stats := RenderBokeh(camera, core.NewVec3(0, 0, -4), RenderOptions{Samples: 200000})
	if stats.Hits != stats.TotalSamples {
		t.Errorf("All bokeh samples should land on the image, %d of %d did", stats.Hits, stats.TotalSamples)
	}

	// The blur is the aperture scaled by 1/2: circumradius lensRadius/2 in world units
	pixelSize := camera.horizontal.Length() / 200
	radius := 0.25 / pixelSize
	expectedPixels := blade.Area() * 4 * radius * radius

	lit := 0
	for _, p := range img.Pix {
		if p > 0 {
			lit++
		}
	}
	if math.Abs(float64(lit)-expectedPixels)/expectedPixels > 0.15 {
		t.Errorf("Expected ~%.0f lit pixels, got %d", expectedPixels, lit)
	}
	if img.GrayAt(100, 100).Y == 0 {
		t.Error("Center of the bokeh should be lit")
	}
	if img.GrayAt(0, 0).Y != 0 {
		t.Error("Image corner should be dark")
	}
}

func TestRenderBokehInFocus(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         64,
		AspectRatio:   1,
		VFov:          40,
		Aperture:      1,
		FocusDistance: 3,
	})

	img, _ := RenderBokeh(camera, core.NewVec3(0.01, 0.01, -3), RenderOptions{Samples: 10000})
	lit := 0
	for _, p := range img.Pix {
		if p > 0 {
			lit++
		}
	}
	if lit == 0 || lit > 4 {
		t.Errorf("In-focus point should light a single pixel, lit %d", lit)
	}
}
