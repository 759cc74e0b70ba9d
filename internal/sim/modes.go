package sim

import (
	"fmt"
	"strings"
)

// Mode selects which object is simulated and drawn.
type Mode int

const (
	ModeCloth Mode = iota
	ModeSquishy
)

// Integrator selects the cloth time-stepping scheme. Volumes always use Verlet with sub-steps.
type Integrator int

const (
	Verlet Integrator = iota
	PBD
)

// RenderMode selects how the active object is drawn.
type RenderMode int

const (
	RenderShaded RenderMode = iota
	RenderWireframe
	RenderPoints
	RenderSprings
	RenderDebug
)

var (
	modeNames       = []string{"cloth", "squishy"}
	integratorNames = []string{"verlet", "pbd"}
	renderNames     = []string{"shaded", "wireframe", "points", "springs", "debug"}
)

func (m Mode) String() string       { return nameOf(modeNames, int(m), "mode") }
func (i Integrator) String() string { return nameOf(integratorNames, int(i), "integrator") }
func (r RenderMode) String() string { return nameOf(renderNames, int(r), "render") }

// ParseMode maps "cloth" or "squishy" to a Mode.
func ParseMode(s string) (Mode, error) {
	i, err := parseName("mode", modeNames, s)
	return Mode(i), err
}

// ParseIntegrator maps "verlet" or "pbd" to an Integrator.
func ParseIntegrator(s string) (Integrator, error) {
	i, err := parseName("integrator", integratorNames, s)
	return Integrator(i), err
}

// ParseRenderMode maps a render mode name to a RenderMode.
func ParseRenderMode(s string) (RenderMode, error) {
	i, err := parseName("render mode", renderNames, s)
	return RenderMode(i), err
}

// RenderModes lists every render mode in cycle order.
func RenderModes() []RenderMode {
	return []RenderMode{RenderShaded, RenderWireframe, RenderPoints, RenderSprings, RenderDebug}
}

// Next returns the following render mode, wrapping around.
func (r RenderMode) Next() RenderMode {
	return RenderMode((int(r) + 1) % len(renderNames))
}

func nameOf(names []string, i int, kind string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func parseName(kind string, names []string, s string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == n {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
