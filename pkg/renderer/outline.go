package renderer

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/df07/go-bokeh/pkg/core"
)

// RenderOutline rasterizes the closed polygon through vertices (in UV space)
// with an anti-aliasing scanline rasterizer. Pixel values are coverage, so it
// serves as an independent reference for RenderMask.
func RenderOutline(vertices []core.Vec2, size int) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, size, size))
	if len(vertices) < 3 {
		return dst
	}

	z := vector.NewRasterizer(size, size)
	for i, v := range vertices {
		x := float32(v.X * float64(size))
		y := float32((1 - v.Y) * float64(size))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// Downscale resamples img to width x height with a Catmull-Rom filter
func Downscale(img image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
