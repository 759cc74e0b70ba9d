package cloth

import (
	"fmt"
	"strings"
)

// FabricType selects one of the built-in fabric presets.
type FabricType int

const (
	Cotton FabricType = iota
	Silk
	Leather
	Rubber
)

var fabricNames = [...]string{"cotton", "silk", "leather", "rubber"}

func (f FabricType) String() string {
	if f < 0 || int(f) >= len(fabricNames) {
		return fmt.Sprintf("fabric(%d)", int(f))
	}
	return fabricNames[f]
}

// FabricTypes lists every preset in table order.
func FabricTypes() []FabricType {
	return []FabricType{Cotton, Silk, Leather, Rubber}
}

// ParseFabricType maps a case-insensitive name to a fabric.
func ParseFabricType(name string) (FabricType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range fabricNames {
		if s == n {
			return FabricType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fabric %q (want one of %s)", name, strings.Join(fabricNames[:], ", "))
}

// FabricParams are the per-instance cloth parameters. StretchFactor is the tear threshold as a
// multiple of rest length.
type FabricParams struct {
	StructuralStiffness float64 `yaml:"structural_stiffness,omitempty" json:"structural_stiffness,omitempty"`
	ShearStiffness      float64 `yaml:"shear_stiffness,omitempty" json:"shear_stiffness,omitempty"`
	BendStiffness       float64 `yaml:"bend_stiffness,omitempty" json:"bend_stiffness,omitempty"`
	Damping             float64 `yaml:"damping,omitempty" json:"damping,omitempty"`
	Mass                float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
	StretchFactor       float64 `yaml:"stretch_factor,omitempty" json:"stretch_factor,omitempty"`
}

// fabricPresets is never mutated; Preset hands out copies.
var fabricPresets = map[FabricType]FabricParams{
	Cotton:  {StructuralStiffness: 5000, ShearStiffness: 100, BendStiffness: 10, Damping: 25, Mass: 1.0, StretchFactor: 1.05},
	Silk:    {StructuralStiffness: 1000, ShearStiffness: 50, BendStiffness: 5, Damping: 15, Mass: 0.5, StretchFactor: 1.1},
	Leather: {StructuralStiffness: 10000, ShearStiffness: 5000, BendStiffness: 1000, Damping: 50, Mass: 2.0, StretchFactor: 1.01},
	Rubber:  {StructuralStiffness: 500, ShearStiffness: 200, BendStiffness: 100, Damping: 5, Mass: 1.5, StretchFactor: 1.5},
}

// Preset returns a copy of the built-in parameters for f. Unknown fabrics fall back to cotton.
func Preset(f FabricType) FabricParams {
	if p, ok := fabricPresets[f]; ok {
		return p
	}
	return fabricPresets[Cotton]
}
