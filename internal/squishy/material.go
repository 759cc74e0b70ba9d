package squishy

import (
	"fmt"
	"strings"
)

// Material selects one of the built-in volume presets.
type Material int

const (
	Jelly Material = iota
	Rubber
	Slime
	WaterBalloon
)

var materialNames = [...]string{"jelly", "rubber", "slime", "water_balloon"}

func (m Material) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return fmt.Sprintf("material(%d)", int(m))
	}
	return materialNames[m]
}

// Materials lists every preset in table order.
func Materials() []Material {
	return []Material{Jelly, Rubber, Slime, WaterBalloon}
}

// ParseMaterial maps a case-insensitive name to a material. Spaces and dashes count as underscores.
func ParseMaterial(name string) (Material, error) {
	n := normalizeName(name)
	for i, s := range materialNames {
		if s == n {
			return Material(i), nil
		}
	}
	return 0, fmt.Errorf("unknown material %q (want one of %s)", name, strings.Join(materialNames[:], ", "))
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(n)
}

// MaterialParams are the per-instance volume parameters.
// Pressure scales the volume-restoring force; CollisionResponse is the floor and collider restitution.
type MaterialParams struct {
	Stiffness         float64 `yaml:"stiffness,omitempty" json:"stiffness,omitempty"`
	Damping           float64 `yaml:"damping,omitempty" json:"damping,omitempty"`
	Mass              float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
	Pressure          float64 `yaml:"pressure,omitempty" json:"pressure,omitempty"`
	CollisionResponse float64 `yaml:"collision_response,omitempty" json:"collision_response,omitempty"`
	Resolution        int     `yaml:"resolution,omitempty" json:"resolution,omitempty"`
}

var materialPresets = map[Material]MaterialParams{
	Jelly:        {Stiffness: 100, Damping: 5, Mass: 1.0, Pressure: 1.0, CollisionResponse: 0.3, Resolution: 8},
	Rubber:       {Stiffness: 200, Damping: 7, Mass: 1.5, Pressure: 5.0, CollisionResponse: 0.5, Resolution: 10},
	Slime:        {Stiffness: 30, Damping: 2, Mass: 0.8, Pressure: 0.5, CollisionResponse: 0.2, Resolution: 8},
	WaterBalloon: {Stiffness: 50, Damping: 3, Mass: 0.9, Pressure: 7.0, CollisionResponse: 0.4, Resolution: 10},
}

// Preset returns a copy of the built-in parameters for m. Unknown materials fall back to jelly.
func Preset(m Material) MaterialParams {
	if p, ok := materialPresets[m]; ok {
		return p
	}
	return materialPresets[Jelly]
}

// Color is the render tint of a material.
func Color(m Material) [3]float32 {
	switch m {
	case Rubber:
		return [3]float32{0.2, 0.7, 0.2}
	case Slime:
		return [3]float32{0.3, 0.9, 0.4}
	case WaterBalloon:
		return [3]float32{0.2, 0.4, 0.9}
	}
	return [3]float32{0.9, 0.3, 0.3}
}

// Shape selects a generator.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeTorus
	ShapeCube
	ShapePyramid
)

var shapeNames = [...]string{"sphere", "torus", "cube", "pyramid"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Shapes lists every generator.
func Shapes() []Shape {
	return []Shape{ShapeSphere, ShapeTorus, ShapeCube, ShapePyramid}
}

// ParseShape maps a case-insensitive name to a shape.
func ParseShape(name string) (Shape, error) {
	n := normalizeName(name)
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q (want one of %s)", name, strings.Join(shapeNames[:], ", "))
}
