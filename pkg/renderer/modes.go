package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
)

// Preview modes understood by RenderMode
const (
	ModeMask      = "mask"
	ModeHistogram = "histogram"
	ModeBokeh     = "bokeh"
	ModeOutline   = "outline"
)

var (
	// ErrUnknownMode is returned by RenderMode for an unrecognized mode name
	ErrUnknownMode = errors.New("unknown mode")
	// ErrNoOutline is returned when an outline is requested for a curved aperture
	ErrNoOutline = errors.New("outline needs a polygonal aperture")
)

// Modes lists every mode RenderMode accepts
func Modes() []string {
	return []string{ModeMask, ModeHistogram, ModeBokeh, ModeOutline}
}

// bokehLight is the point light imaged by ModeBokeh; it sits twice as far
// away as the focus plane so its blur is about half the frame
var bokehLight = core.NewVec3(0, 0, -4)

// NewBokehCamera returns the square camera used for ModeBokeh renders
func NewBokehCamera(size int, aperture material.SamplableTexture) *Camera {
	return NewCamera(CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         size,
		AspectRatio:   1,
		VFov:          40,
		Aperture:      1,
		FocusDistance: 2,
		ApertureShape: aperture,
	})
}

// RenderMode renders a size x size preview of tex in the named mode
func RenderMode(mode string, tex material.SamplableTexture, opts RenderOptions) (image.Image, RenderStats, error) {
	opts = opts.withDefaults()

	switch mode {
	case ModeMask:
		img, stats := RenderMask(tex, opts)
		return img, stats, nil
	case ModeHistogram:
		h, stats := RenderSampleHistogram(tex, opts)
		return h.Image(tex), stats, nil
	case ModeBokeh:
		img, stats := RenderBokeh(NewBokehCamera(opts.Size, tex), bokehLight, opts)
		return img, stats, nil
	case ModeOutline:
		polygon, ok := tex.(interface{ Vertices() []core.Vec2 })
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("%T: %w", tex, ErrNoOutline)
		}
		return RenderOutline(polygon.Vertices(), opts.Size), RenderStats{}, nil
	default:
		return nil, RenderStats{}, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
}
