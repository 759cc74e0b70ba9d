// Package presets loads user-defined fabric and material presets from a YAML file. Each entry names a
// built-in base and overrides some of its parameters:
//
//	fabrics:
//	  canvas:
//	    base: cotton
//	    mass: 1.4
//	materials:
//	  bouncy:
//	    base: rubber
//	    pressure: 9
package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"softbody/internal/cloth"
	"softbody/internal/squishy"
)

// PresetsPath is the default preset file, relative to the working directory.
const PresetsPath = "assets/presets.yaml"

type fabricEntry struct {
	Base               string `yaml:"base"`
	cloth.FabricParams `yaml:",inline"`
}

type materialEntry struct {
	Base                   string `yaml:"base"`
	squishy.MaterialParams `yaml:",inline"`
}

type document struct {
	Fabrics   map[string]fabricEntry   `yaml:"fabrics"`
	Materials map[string]materialEntry `yaml:"materials"`
}

// Fabric is a resolved custom fabric: its base preset and the final parameters.
type Fabric struct {
	Base   cloth.FabricType
	Params cloth.FabricParams
}

// Material is a resolved custom material.
type Material struct {
	Base   squishy.Material
	Params squishy.MaterialParams
}

// Set holds resolved custom presets keyed by lower-case name.
type Set struct {
	Fabrics   map[string]Fabric
	Materials map[string]Material
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{Fabrics: make(map[string]Fabric), Materials: make(map[string]Material)}
}

// Load reads and resolves path. A missing file yields an empty set and no error.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse resolves a preset document. Overrides are overlaid on the base with zero values ignored,
// so a field left out (or set to 0) keeps the base value.
func Parse(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	s := NewSet()
	for name, e := range doc.Fabrics {
		base, err := cloth.ParseFabricType(e.Base)
		if err != nil {
			return nil, fmt.Errorf("fabric %q: %w", name, err)
		}
		params := cloth.Preset(base)
		if err := overlay(&params, &e.FabricParams); err != nil {
			return nil, fmt.Errorf("fabric %q: %w", name, err)
		}
		s.Fabrics[key(name)] = Fabric{Base: base, Params: params}
	}
	for name, e := range doc.Materials {
		base, err := squishy.ParseMaterial(e.Base)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		params := squishy.Preset(base)
		if err := overlay(&params, &e.MaterialParams); err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		s.Materials[key(name)] = Material{Base: base, Params: params}
	}
	return s, nil
}

func overlay(dst, src any) error {
	return copier.CopyWithOption(dst, src, copier.Option{IgnoreEmpty: true})
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Fabric looks up a custom fabric by name.
func (s *Set) Fabric(name string) (Fabric, bool) {
	if s == nil {
		return Fabric{}, false
	}
	f, ok := s.Fabrics[key(name)]
	return f, ok
}

// Material looks up a custom material by name.
func (s *Set) Material(name string) (Material, bool) {
	if s == nil {
		return Material{}, false
	}
	m, ok := s.Materials[key(name)]
	return m, ok
}

// Names returns the sorted custom fabric and material names.
func (s *Set) Names() (fabrics, materials []string) {
	if s == nil {
		return nil, nil
	}
	for n := range s.Fabrics {
		fabrics = append(fabrics, n)
	}
	for n := range s.Materials {
		materials = append(materials, n)
	}
	sort.Strings(fabrics)
	sort.Strings(materials)
	return fabrics, materials
}
