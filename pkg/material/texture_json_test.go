package material

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-bokeh/pkg/core"
)

func TestUnmarshalTexture_Blade(t *testing.T) {
	tex, err := UnmarshalTexture([]byte(`{"type": "blade", "blades": 8, "angle": 0.5}`))
	if err != nil {
		t.Fatalf("UnmarshalTexture failed: %v", err)
	}
	b, ok := tex.(*BladeTexture)
	if !ok {
		t.Fatalf("Expected *BladeTexture, got %T", tex)
	}
	if b.Blades() != 8 || b.Angle() != 0.5 {
		t.Errorf("Expected 8 blades at 0.5, got %d at %f", b.Blades(), b.Angle())
	}
	if math.Abs(b.Area()-expectedBladeArea(8)) > 1e-12 {
		t.Errorf("Derived fields not initialized: area %f", b.Area())
	}
}

func TestUnmarshalTexture_BladeDefaults(t *testing.T) {
	tex, err := UnmarshalTexture([]byte(`{"type": "blade", "blades": 5}`))
	if err != nil {
		t.Fatalf("UnmarshalTexture failed: %v", err)
	}
	b := tex.(*BladeTexture)
	if math.Abs(b.Angle()-DefaultBladeAngle(5)) > 1e-12 {
		t.Errorf("Expected default angle for 5 blades, got %f", b.Angle())
	}

	tex, err = UnmarshalTexture([]byte(`{"type": "blade"}`))
	if err != nil {
		t.Fatalf("UnmarshalTexture failed: %v", err)
	}
	if b := tex.(*BladeTexture); b.Blades() != DefaultBlades {
		t.Errorf("Expected %d blades by default, got %d", DefaultBlades, b.Blades())
	}
}

func TestUnmarshalTexture_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"too few blades", `{"type": "blade", "blades": 2}`, ErrInvalidBladeCount},
		{"negative blades", `{"type": "blade", "blades": -1}`, ErrInvalidBladeCount},
		{"unknown type", `{"type": "checker"}`, ErrUnknownTextureType},
		{"missing type", `{"blades": 6}`, ErrUnknownTextureType},
		{"malformed", `{"type": "blade",`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := UnmarshalTexture([]byte(tt.input))
			if err == nil {
				t.Fatalf("Expected error, got texture %T", tex)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMarshalTexture_Blade(t *testing.T) {
	data, err := MarshalTexture(NewBladeTexture(7, 0.25))
	if err != nil {
		t.Fatalf("MarshalTexture failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"blade"`, `"blades":7`, `"angle":0.25`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}

	tex, err := UnmarshalTexture(data)
	if err != nil {
		t.Fatalf("Reloading %s failed: %v", s, err)
	}
	if b := tex.(*BladeTexture); b.Blades() != 7 || b.Angle() != 0.25 {
		t.Errorf("Reloaded texture differs: %d blades at %f", b.Blades(), b.Angle())
	}
}

func TestMarshalTexture_OtherTypes(t *testing.T) {
	data, err := MarshalTexture(NewDiskTexture())
	if err != nil || string(data) != `{"type":"disk"}` {
		t.Errorf("Disk: got %s, %v", data, err)
	}

	data, err = MarshalTexture(NewSolidColor(core.NewVec3(0.5, 0.25, 1)))
	if err != nil {
		t.Fatalf("Constant: %v", err)
	}
	tex, err := UnmarshalTexture(data)
	if err != nil {
		t.Fatalf("Reloading %s failed: %v", data, err)
	}
	if c := tex.Average(); !c.Equals(core.NewVec3(0.5, 0.25, 1)) {
		t.Errorf("Constant color lost: %v", c)
	}

	_, err = MarshalTexture(NewImageTexture(1, 1, []core.Vec3{core.Splat(1)}))
	if !errors.Is(err, ErrUnknownTextureType) {
		t.Errorf("Image textures are not serializable, got %v", err)
	}
}
