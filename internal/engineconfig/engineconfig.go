package engineconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"softbody/internal/presets"
	"softbody/internal/sim"
)

// ConfigPath is the path to the preferences file, relative to the process working directory.
const ConfigPath = "config/softbody.json"

// Prefs holds viewer preferences and the start-up simulation settings. Persisted across runs.
type Prefs struct {
	ShowFPS      bool `json:"show_fps"`
	ShowMemAlloc bool `json:"show_memalloc"`
	ShowStats    bool `json:"show_stats"`
	GridVisible  bool `json:"grid_visible"`

	WindowWidth  int  `json:"window_width"`
	WindowHeight int  `json:"window_height"`
	Fullscreen   bool `json:"fullscreen"`

	// Font is a family or file name searched under assets/fonts; empty picks the first font found.
	Font        string     `json:"font"`
	PresetsPath string     `json:"presets_path"`
	Sim         sim.Config `json:"sim"`
}

// Default returns default preferences (stats and grid on, 1280×720 window, stock simulation).
func Default() Prefs {
	return Prefs{
		ShowFPS:      false,
		ShowMemAlloc: false,
		ShowStats:    true,
		GridVisible:  true,
		WindowWidth:  1280,
		WindowHeight: 720,
		PresetsPath:  presets.PresetsPath,
		Sim:          sim.DefaultConfig(),
	}
}

// Load reads preferences from ConfigPath.
func Load() (Prefs, error) {
	return LoadFrom(ConfigPath)
}

// LoadFrom reads preferences from path. Fields missing from the file keep their defaults. If the file
// is missing or invalid, returns Default() and does not create a file.
func LoadFrom(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p, nil
}

// Save writes preferences to ConfigPath.
func Save(p Prefs) error {
	return SaveTo(ConfigPath, p)
}

// SaveTo writes preferences to path, creating its directory if needed.
func SaveTo(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
