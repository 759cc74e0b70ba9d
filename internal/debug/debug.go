package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"softbody/internal/sim"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh overlay text every N frames to reduce allocations.
	updateInterval = 30
)

// Debug holds the runtime overlays: FPS and heap (top-right), simulation stats (top-left).
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool

	sim          *sim.Simulation
	font         rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastStats    []string
	lastMemStats runtime.MemStats
}

// New returns a Debug system reading stats from s, with all overlays hidden.
func New(s *sim.Simulation) *Debug {
	return &Debug{sim: s}
}

// SetShowFPS sets whether the FPS counter is drawn (top-right, green).
func (d *Debug) SetShowFPS(show bool) { d.ShowFPS = show }

// SetShowMemAlloc sets whether the memory allocation counter is drawn (top-right, under FPS).
func (d *Debug) SetShowMemAlloc(show bool) { d.ShowMemAlloc = show }

// SetShowStats sets whether the simulation stats are drawn (top-left).
func (d *Debug) SetShowStats(show bool) { d.ShowStats = show }

// SetFont sets the font used by the overlays. Zero texture ID = use raylib default.
func (d *Debug) SetFont(font rl.Font) { d.font = font }

// StatsLines formats the overlay text for a simulation.
func StatsLines(s *sim.Simulation) []string {
	st := s.Stats()
	lines := []string{
		fmt.Sprintf("Mode: %s", s.Mode),
		fmt.Sprintf("Energy: %.2f", st.Energy),
		fmt.Sprintf("Particles: %d  Springs: %d", st.Particles, st.Springs),
	}
	if s.Mode == sim.ModeSquishy {
		lines[0] += fmt.Sprintf(" (%s %s)", s.MaterialName(), s.Shape())
		lines = append(lines, fmt.Sprintf("Volume: %.3f  Resets: %d", st.Volume, st.Resets))
	} else {
		lines[0] += fmt.Sprintf(" (%s, %s)", s.FabricName(), s.Integrator)
		lines = append(lines, fmt.Sprintf("Broken springs: %d", st.Broken))
	}
	lines = append(lines, fmt.Sprintf("Render: %s  t=%.1fs", s.Render, s.Elapsed))
	if s.Paused {
		lines = append(lines, "PAUSED")
	}
	return lines
}

// Draw renders any enabled overlays. Call after scene and terminal in the draw loop.
// Text is only recomputed every updateInterval frames to limit allocations.
func (d *Debug) Draw() {
	d.frameCount++
	update := (d.frameCount % updateInterval) == 0
	if d.ShowFPS && d.lastFpsText == "" {
		update = true
	}
	if d.ShowMemAlloc && d.lastMemText == "" {
		update = true
	}
	if d.ShowStats && d.lastStats == nil {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)

	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.drawRight(d.lastFpsText, screenW, y)
		y += lineHeight
	}

	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			mb := float64(d.lastMemStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		d.drawRight(d.lastMemText, screenW, y)
	}

	if d.ShowStats && d.sim != nil {
		if update {
			d.lastStats = StatsLines(d.sim)
		}
		for i, line := range d.lastStats {
			d.draw(line, padding, int32(padding+i*lineHeight), rl.RayWhite)
		}
	}
}

func (d *Debug) drawRight(text string, screenW, y int32) {
	if text == "" {
		return
	}
	var w int32
	if d.font.Texture.ID != 0 {
		w = int32(rl.MeasureTextEx(d.font, text, fontSize, 1).X)
	} else {
		w = rl.MeasureText(text, fontSize)
	}
	d.draw(text, screenW-w-padding, y, rl.Green)
}

func (d *Debug) draw(text string, x, y int32, col rl.Color) {
	if d.font.Texture.ID != 0 {
		rl.DrawTextEx(d.font, text, rl.NewVector2(float32(x), float32(y)), fontSize, 1, col)
		return
	}
	rl.DrawText(text, x, y, fontSize, col)
}
