package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/loaders"
	"github.com/df07/go-bokeh/pkg/material"
	"github.com/df07/go-bokeh/pkg/renderer"
)

var (
	errUnknownShape = errors.New("unknown shape")
	errNotSamplable = errors.New("texture cannot be sampled as an aperture")
)

// options holds the parsed command line
type options struct {
	mode        string
	shape       string
	config      string
	blades      int
	angle       float64
	angleSet    bool
	size        int
	supersample int
	samples     int
	workers     int
	seed        int64
	scale       int
	outputRoot  string
	reference   string
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "mask", "Output: 'mask', 'histogram', 'bokeh' or 'outline'")
	flag.StringVar(&opts.shape, "shape", "blade", "Aperture shape: 'blade' or 'disk'")
	flag.StringVar(&opts.config, "config", "", "JSON texture description (overrides -shape, -blades, -angle)")
	flag.IntVar(&opts.blades, "blades", material.DefaultBlades, "Number of aperture blades (>= 3)")
	flag.Float64Var(&opts.angle, "angle", 0, "Blade rotation in radians (default pi/(2*blades))")
	flag.IntVar(&opts.size, "size", 256, "Output size in pixels")
	flag.IntVar(&opts.supersample, "supersample", 4, "Subpixels per axis for mask renders")
	flag.IntVar(&opts.samples, "samples", 1_000_000, "Samples for histogram and bokeh renders")
	flag.IntVar(&opts.workers, "workers", 0, "Worker goroutines (0 = number of CPUs)")
	flag.Int64Var(&opts.seed, "seed", 1, "Random seed")
	flag.IntVar(&opts.scale, "scale", 1, "Downscale factor applied before saving")
	flag.StringVar(&opts.outputRoot, "out", "output", "Output root directory")
	flag.StringVar(&opts.reference, "reference", "", "PNG or JPEG to compare the render against")
	verbose := flag.Bool("v", false, "Enable debug logging")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "angle" {
			opts.angleSet = true
		}
	})

	if *help {
		fmt.Println("Aperture Preview")
		fmt.Println("Usage: bokeh [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Modes:")
		fmt.Println("  mask      - Supersampled aperture mask over the unit square")
		fmt.Println("  histogram - Sample density divided by the predicted PDF (flat gray is correct)")
		fmt.Println("  bokeh     - Defocus blur of a point light through the aperture")
		fmt.Println("  outline   - Scanline-rasterized polygon outline for comparison")
		fmt.Println()
		fmt.Println("Output will be saved to <out>/<mode>/aperture_<timestamp>.png")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	tex, err := createTexture(opts)
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, stats, err := render(opts, tex)
	if err != nil {
		return err
	}
	logger.Info("render completed",
		"mode", opts.mode,
		"duration", time.Since(startTime),
		"samples", stats.TotalSamples,
		"hitFraction", stats.HitFraction(),
		"meanLuminance", renderer.CalculateAverageLuminance(img))

	if opts.reference != "" {
		diff, err := compareReference(opts.reference, img)
		if err != nil {
			return err
		}
		logger.Info("compared with reference", "file", opts.reference, "meanAbsDiff", diff)
	}

	if opts.scale > 1 {
		b := img.Bounds()
		img = renderer.Downscale(img, max(1, b.Dx()/opts.scale), max(1, b.Dy()/opts.scale))
	}

	filename := outputPath(opts, time.Now())
	if err := loaders.SavePNG(filename, img); err != nil {
		return err
	}
	logger.Info("render saved", "file", filename)
	return nil
}

// createTexture builds the aperture from a config file or from flags
func createTexture(opts options) (material.SamplableTexture, error) {
	if opts.config != "" {
		tex, err := loaders.LoadTexture(opts.config)
		if err != nil {
			return nil, err
		}
		samplable, ok := tex.(material.SamplableTexture)
		if !ok {
			return nil, fmt.Errorf("%s: %w", opts.config, errNotSamplable)
		}
		return samplable, nil
	}

	switch opts.shape {
	case "blade":
		if opts.blades < material.MinBlades {
			return nil, fmt.Errorf("-blades %d: %w", opts.blades, material.ErrInvalidBladeCount)
		}
		angle := material.DefaultBladeAngle(opts.blades)
		if opts.angleSet {
			angle = opts.angle
		}
		return material.NewBladeTexture(opts.blades, angle), nil
	case "disk":
		return material.NewDiskTexture(), nil
	default:
		return nil, fmt.Errorf("%q: %w", opts.shape, errUnknownShape)
	}
}

// render produces the image for the selected mode
func render(opts options, tex material.SamplableTexture) (image.Image, renderer.RenderStats, error) {
	return renderer.RenderMode(opts.mode, tex, renderer.RenderOptions{
		Size:        opts.size,
		Supersample: opts.supersample,
		Samples:     opts.samples,
		NumWorkers:  opts.workers,
		Seed:        opts.seed,
	})
}

// compareReference returns the mean absolute luminance difference between img
// and the reference image, sampled at img's pixel centers
func compareReference(path string, img image.Image) (float64, error) {
	data, err := loaders.LoadImage(path)
	if err != nil {
		return 0, err
	}
	ref := data.Texture()

	b := img.Bounds()
	if b.Empty() {
		return 0, nil
	}
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			uv := core.NewVec2(
				(float64(x-b.Min.X)+0.5)/float64(b.Dx()),
				1-(float64(y-b.Min.Y)+0.5)/float64(b.Dy()),
			)
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			sum += math.Abs(float64(g.Y)/255 - ref.Evaluate(uv).Luminance())
		}
	}
	return sum / float64(b.Dx()*b.Dy()), nil
}

// outputPath returns <out>/<mode>/aperture_<timestamp>.png
func outputPath(opts options, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join(opts.outputRoot, opts.mode, fmt.Sprintf("aperture_%s.png", timestamp))
}
