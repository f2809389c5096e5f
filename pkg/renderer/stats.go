package renderer

import (
	"image"

	"github.com/df07/go-bokeh/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels  int // Total number of pixels rendered
	TotalSamples int // Total number of samples taken
	Hits         int // Samples that landed inside the shape or image
}

// Merge adds another tile's statistics into s
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.Hits += other.Hits
}

// HitFraction returns Hits / TotalSamples, or 0 before any samples
func (s RenderStats) HitFraction() float64 {
	if s.TotalSamples == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalSamples)
}

// AverageSamples returns the number of samples per pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// CalculateAverageLuminance returns the mean luminance of an image in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += core.NewVec3(float64(r), float64(g), float64(b)).Multiply(1.0 / 65535.0).Luminance()
		}
	}
	return sum / float64(bounds.Dx()*bounds.Dy())
}
