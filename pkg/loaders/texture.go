package loaders

import (
	"fmt"
	"os"

	"github.com/df07/go-bokeh/pkg/material"
)

// LoadTexture reads a tagged JSON texture description such as
// {"type": "blade", "blades": 6, "angle": 0.26}
func LoadTexture(filename string) (material.Texture, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture file: %w", err)
	}

	tex, err := material.UnmarshalTexture(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tex, nil
}

// SaveTexture writes a texture description that LoadTexture can read back
func SaveTexture(filename string, tex material.Texture) error {
	data, err := material.MarshalTexture(tex)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write texture file: %w", err)
	}
	return nil
}
