//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/raydemo"
)

func TestShaders_Compile(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"ray", rayShaderSource},
		{"triangle", triangleShaderSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.source == "" {
				t.Fatal("shader source is empty")
			}
			spirv, err := naga.Compile(tt.source)
			// The Vulkan backend compiles with the same call, so any
			// failure here is a pipeline that cannot be created.
			if err != nil {
				t.Fatalf("compile %s shader: %v", tt.name, err)
			}
			if len(spirv) < 4 {
				t.Fatalf("SPIR-V output too short: %d bytes", len(spirv))
			}
			if magic := binary.LittleEndian.Uint32(spirv); magic != 0x07230203 {
				t.Errorf("SPIR-V magic = %#08x, want 0x07230203", magic)
			}
		})
	}
}

func TestShaders_EntryPoints(t *testing.T) {
	for name, src := range map[string]string{"ray": rayShaderSource, "triangle": triangleShaderSource} {
		for _, entry := range []string{"fn vs_main", "fn fs_main"} {
			if !strings.Contains(src, entry) {
				t.Errorf("%s shader missing %q", name, entry)
			}
		}
	}
}

// The shader's sphere array must match the packed scene buffer.
func TestRayShader_SceneLayout(t *testing.T) {
	for _, want := range []string{
		fmt.Sprintf("array<Sphere, %d>", raydemo.MaxSpheres),
		"var<storage, read> spheres",
		"@binding(0) var<uniform> uniforms",
		"@binding(1) var<uniform> camera",
	} {
		if !strings.Contains(rayShaderSource, want) {
			t.Errorf("ray shader missing %q", want)
		}
	}
}

// naga's SPIR-V writer has no relational expressions, so all() and any()
// over vector comparisons cannot reach the Vulkan backend.
func TestShaders_NoVectorRelational(t *testing.T) {
	for name, src := range map[string]string{"ray": rayShaderSource, "triangle": triangleShaderSource} {
		for _, fn := range []string{"all(", "any("} {
			if strings.Contains(src, fn) {
				t.Errorf("%s shader uses %s...)", name, fn)
			}
		}
	}
}
