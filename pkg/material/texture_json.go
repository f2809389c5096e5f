package material

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/df07/go-bokeh/pkg/core"
)

var (
	// ErrInvalidBladeCount is returned when a blade texture has fewer than MinBlades blades
	ErrInvalidBladeCount = errors.New("blade count must be at least 3")
	// ErrUnknownTextureType is returned for an unrecognized "type" tag
	ErrUnknownTextureType = errors.New("unknown texture type")
)

// Type tags used in serialized texture descriptions
const (
	TypeBlade    = "blade"
	TypeDisk     = "disk"
	TypeConstant = "constant"
)

// textureJSON is the persisted form of any supported texture
type textureJSON struct {
	Type   string      `json:"type"`
	Blades *int        `json:"blades,omitempty"`
	Angle  *float64    `json:"angle,omitempty"`
	Color  *[3]float64 `json:"color,omitempty"`
}

// MarshalTexture serializes a texture as a tagged JSON object
func MarshalTexture(t Texture) ([]byte, error) {
	var v textureJSON
	switch tex := t.(type) {
	case *BladeTexture:
		blades, angle := tex.Blades(), tex.Angle()
		v = textureJSON{Type: TypeBlade, Blades: &blades, Angle: &angle}
	case *DiskTexture:
		v = textureJSON{Type: TypeDisk}
	case *SolidColor:
		c := [3]float64{tex.Color.X, tex.Color.Y, tex.Color.Z}
		v = textureJSON{Type: TypeConstant, Color: &c}
	default:
		return nil, fmt.Errorf("cannot serialize %T: %w", t, ErrUnknownTextureType)
	}
	return json.Marshal(v)
}

// UnmarshalTexture builds a texture from its tagged JSON description.
// Blade textures default to DefaultBlades blades and DefaultBladeAngle.
func UnmarshalTexture(data []byte) (Texture, error) {
	var v textureJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode texture: %w", err)
	}

	switch v.Type {
	case TypeBlade:
		blades := DefaultBlades
		if v.Blades != nil {
			blades = *v.Blades
		}
		if blades < MinBlades {
			return nil, fmt.Errorf("blade texture with %d blades: %w", blades, ErrInvalidBladeCount)
		}
		angle := DefaultBladeAngle(blades)
		if v.Angle != nil {
			angle = *v.Angle
		}
		return NewBladeTexture(blades, angle), nil
	case TypeDisk:
		return NewDiskTexture(), nil
	case TypeConstant:
		color := core.Splat(1)
		if v.Color != nil {
			color = core.NewVec3(v.Color[0], v.Color[1], v.Color[2])
		}
		return NewSolidColor(color), nil
	default:
		return nil, fmt.Errorf("%q: %w", v.Type, ErrUnknownTextureType)
	}
}
