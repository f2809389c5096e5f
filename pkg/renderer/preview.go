package renderer

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/jbeda/geom"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
)

// RenderOptions configures the preview renderers
type RenderOptions struct {
	Size        int   // Output width and height in pixels for UV-space renders
	Supersample int   // Subpixels per axis for RenderMask
	Samples     int   // Total samples for splatting renders
	TileSize    int   // Pixel tile edge, or samples per batch / 1000 for splats
	NumWorkers  int   // 0 uses runtime.NumCPU()
	Seed        int64 // Base seed; output is deterministic for a fixed seed
}

// DefaultRenderOptions returns the settings used by the command line tool
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Size:        256,
		Supersample: 4,
		Samples:     1_000_000,
		TileSize:    32,
		Seed:        1,
	}
}

func (o RenderOptions) withDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.Supersample <= 0 {
		o.Supersample = d.Supersample
	}
	if o.Samples <= 0 {
		o.Samples = d.Samples
	}
	if o.TileSize <= 0 {
		o.TileSize = d.TileSize
	}
	return o
}

func (o RenderOptions) batchSize() int {
	return o.TileSize * 1000
}

// uvToPixel maps UV to pixel coordinates; V=0 is the bottom row
func uvToPixel(uv core.Vec2, size int) (x, y int) {
	return int(math.Floor(uv.X * float64(size))), int(math.Floor((1 - uv.Y) * float64(size)))
}

func toGray(v float64) color.Gray {
	return color.Gray{Y: uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))}
}

// maskRenderer evaluates a texture over the pixels of each tile
type maskRenderer struct {
	tex         material.Texture
	size        int
	supersample int
	img         *image.Gray
}

func (m *maskRenderer) RenderTile(tile *Tile) RenderStats {
	var stats RenderStats
	ss := m.supersample
	inv := 1.0 / float64(m.size*ss)

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			var ps PixelStats
			for sy := 0; sy < ss; sy++ {
				for sx := 0; sx < ss; sx++ {
					uv := core.NewVec2(
						(float64(x*ss+sx)+0.5)*inv,
						1-(float64(y*ss+sy)+0.5)*inv,
					)
					c := m.tex.Evaluate(uv)
					if c.Luminance() > 0.5 {
						stats.Hits++
					}
					ps.AddSample(c)
				}
			}
			// Tiles never overlap, so writes to distinct pixels are safe
			m.img.SetGray(x, y, toGray(ps.GetColor().Luminance()))
			stats.TotalPixels++
			stats.TotalSamples += ps.SampleCount
		}
	}
	return stats
}

// RenderMask renders tex over the unit square as a supersampled grayscale
// image. The hit fraction of the returned stats estimates the texture's coverage.
func RenderMask(tex material.Texture, opts RenderOptions) (*image.Gray, RenderStats) {
	opts = opts.withDefaults()
	img := image.NewGray(image.Rect(0, 0, opts.Size, opts.Size))
	tiles := NewTileGrid(opts.Size, opts.Size, opts.TileSize, opts.Seed)

	core.Logger().Debug("rendering mask",
		"size", opts.Size, "supersample", opts.Supersample, "tiles", len(tiles))

	stats := renderTiles(&maskRenderer{
		tex:         tex,
		size:        opts.Size,
		supersample: opts.Supersample,
		img:         img,
	}, tiles, opts.NumWorkers)
	return img, stats
}

// SampleHistogram holds splat counts of texture samples over the unit square
type SampleHistogram struct {
	Size    int
	Counts  []float64 // Row-major, row 0 at V=1
	Total   int       // Number of samples drawn
	Escaped int       // Samples outside the texture's reported bounds
}

// Count returns the number of samples that landed in pixel (x, y)
func (h *SampleHistogram) Count(x, y int) float64 {
	return h.Counts[y*h.Size+x]
}

// Image normalizes every bin by the count the texture's PDF predicts, so
// mid-gray means agreement. Bins where the PDF is zero are black when empty
// and white when anything landed in them.
func (h *SampleHistogram) Image(tex material.SamplableTexture) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, h.Size, h.Size))
	binArea := 1.0 / float64(h.Size*h.Size)

	for y := 0; y < h.Size; y++ {
		for x := 0; x < h.Size; x++ {
			uv := core.NewVec2((float64(x)+0.5)/float64(h.Size), 1-(float64(y)+0.5)/float64(h.Size))
			expected := tex.PDF(material.MapUniform, uv) * binArea * float64(h.Total)
			count := h.Count(x, y)

			switch {
			case expected > 0:
				img.SetGray(x, y, toGray(0.5*count/expected))
			case count > 0:
				img.SetGray(x, y, toGray(1))
			}
		}
	}
	return img
}

// bounded is implemented by textures that know their UV bounding box
type bounded interface {
	Bounds() geom.Rect
}

// histogramRenderer splats texture samples; every batch fills its own
// buffer, merged once all batches complete
type histogramRenderer struct {
	tex     material.SamplableTexture
	size    int
	mu      sync.Mutex
	batches [][]float64
	escaped int
}

func (h *histogramRenderer) RenderTile(tile *Tile) RenderStats {
	stats := RenderStats{TotalSamples: tile.Samples}
	counts := make([]float64, h.size*h.size)
	sampler := core.NewRandomSampler(tile.Random)

	b, hasBounds := h.tex.(bounded)
	var bounds geom.Rect
	if hasBounds {
		bounds = b.Bounds()
	}

	escaped := 0
	for i := 0; i < tile.Samples; i++ {
		uv := h.tex.Sample(material.MapUniform, sampler.Get2D())
		if h.tex.PDF(material.MapUniform, uv) > 0 {
			stats.Hits++
		}
		if hasBounds && !bounds.ContainsCoord(geom.Coord{X: uv.X, Y: uv.Y}) {
			escaped++
		}

		x, y := uvToPixel(uv, h.size)
		if x >= 0 && y >= 0 && x < h.size && y < h.size {
			counts[y*h.size+x]++
		}
	}

	h.mu.Lock()
	h.batches = append(h.batches, counts)
	h.escaped += escaped
	h.mu.Unlock()
	return stats
}

// RenderSampleHistogram draws opts.Samples samples from tex and bins them over
// the unit square. The hit fraction of the returned stats is the share of
// samples with nonzero density and should be exactly 1.
func RenderSampleHistogram(tex material.SamplableTexture, opts RenderOptions) (*SampleHistogram, RenderStats) {
	opts = opts.withDefaults()
	batches := NewSampleBatches(opts.Samples, opts.batchSize(), opts.Seed)

	core.Logger().Debug("rendering sample histogram",
		"size", opts.Size, "samples", opts.Samples, "batches", len(batches))

	r := &histogramRenderer{tex: tex, size: opts.Size}
	stats := renderTiles(r, batches, opts.NumWorkers)

	h := &SampleHistogram{
		Size:    opts.Size,
		Counts:  make([]float64, opts.Size*opts.Size),
		Total:   stats.TotalSamples,
		Escaped: r.escaped,
	}
	for _, counts := range r.batches {
		for i, c := range counts {
			h.Counts[i] += c
		}
	}
	return h, stats
}

// bokehRenderer splats the image positions reached by light from one point
// through sampled lens positions
type bokehRenderer struct {
	camera  *Camera
	point   core.Vec3
	width   int
	height  int
	mu      sync.Mutex
	batches [][]float64
}

func (b *bokehRenderer) RenderTile(tile *Tile) RenderStats {
	stats := RenderStats{TotalSamples: tile.Samples}
	counts := make([]float64, b.width*b.height)
	sampler := core.NewRandomSampler(tile.Random)

	for i := 0; i < tile.Samples; i++ {
		x, y, ok := b.camera.BokehPixel(b.point, sampler.Get2D())
		if !ok {
			continue
		}
		stats.Hits++
		counts[int(y)*b.width+int(x)]++
	}

	b.mu.Lock()
	b.batches = append(b.batches, counts)
	b.mu.Unlock()
	return stats
}

// RenderBokeh renders the defocus blur of a single point light as seen by
// camera. The bright region takes the shape of the camera's aperture.
func RenderBokeh(camera *Camera, point core.Vec3, opts RenderOptions) (*image.Gray, RenderStats) {
	opts = opts.withDefaults()
	width, height := camera.Size()
	batches := NewSampleBatches(opts.Samples, opts.batchSize(), opts.Seed)

	core.Logger().Debug("rendering bokeh",
		"width", width, "height", height, "samples", opts.Samples, "batches", len(batches))

	r := &bokehRenderer{camera: camera, point: point, width: width, height: height}
	stats := renderTiles(r, batches, opts.NumWorkers)

	counts := make([]float64, width*height)
	var peak float64
	for _, batch := range r.batches {
		for i, c := range batch {
			counts[i] += c
			peak = math.Max(peak, counts[i])
		}
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	if peak == 0 {
		return img, stats
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, toGray(counts[y*width+x]/peak))
		}
	}
	return img, stats
}
