package commands

import (
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/engineconfig"
	"softbody/internal/sim"
	"softbody/internal/squishy"
)

type recordingLogger struct{ lines []string }

func (r *recordingLogger) Log(line string) { r.lines = append(r.lines, line) }

func (r *recordingLogger) last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

func setup(t *testing.T) (*Registry, *sim.Simulation, *recordingLogger) {
	t.Helper()
	s, err := sim.New(sim.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	log := &recordingLogger{}
	r := NewRegistry()
	RegisterSimulation(r, s, log)
	return r, s, log
}

func run(t *testing.T, r *Registry, line string) error {
	t.Helper()
	args, ok := Parse(line)
	if !ok {
		t.Fatalf("%q is not a command line", line)
	}
	return r.Execute(args)
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		args []string
		ok   bool
	}{
		{"cmd mode squishy", []string{"mode", "squishy"}, true},
		{"cmd   gravity 0  -9.8 0 ", []string{"gravity", "0", "-9.8", "0"}, true},
		{"cmd ", nil, true},
		{"hello", nil, false},
		{"CMD mode cloth", nil, false},
	}
	for _, tt := range tests {
		args, ok := Parse(tt.line)
		if ok != tt.ok || strings.Join(args, "|") != strings.Join(tt.args, "|") {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.line, args, ok, tt.args, tt.ok)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	r, _, _ := setup(t)
	if err := r.Execute(nil); err == nil {
		t.Error("empty args accepted")
	}
	if err := r.Execute([]string{"explode"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v", err)
	}
	for _, line := range []string{
		"cmd mode",
		"cmd mode fluid",
		"cmd gravity 1 2",
		"cmd gravity a b c",
		"cmd pin 1",
		"cmd pin 99 99",
		"cmd cut -bogus 1 0 0 0 0 0 1",
		"cmd wind -dir 1,0",
		"cmd fabric denim",
	} {
		if err := run(t, r, line); err == nil {
			t.Errorf("%q succeeded", line)
		}
	}
}

func TestGuardNegatives(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.Float64("radius", 0, "")
	fs.Bool("free", false, "")
	tests := []struct {
		in, want string
	}{
		{"-1 0 0", "-- -1 0 0"},
		{"0 -1 0", "0 -1 0"},
		{"-radius 0.2 -3 2", "-radius 0.2 -- -3 2"},
		{"-radius -0.2 1", "-radius -0.2 1"},
		{"-free -4", "-free -- -4"},
		{"-radius=2 -4", "-radius=2 -- -4"},
	}
	for _, tt := range tests {
		got := strings.Join(guardNegatives(fs, strings.Fields(tt.in)), " ")
		if got != tt.want {
			t.Errorf("guardNegatives(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimulationCommands(t *testing.T) {
	r, s, log := setup(t)

	if err := run(t, r, "cmd gravity -1 -9.8 0"); err != nil {
		t.Fatal(err)
	}
	if g := s.Gravity(); g != (mgl64.Vec3{-1, -9.8, 0}) {
		t.Errorf("gravity = %v", g)
	}

	if err := run(t, r, "cmd wind -strength 3 -dir -1,0,0"); err != nil {
		t.Fatal(err)
	}
	if s.Cloth.WindStrength != 3 || s.Cloth.WindDirection != (mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("wind = %v %v", s.Cloth.WindDirection, s.Cloth.WindStrength)
	}
	if err := run(t, r, "cmd wind -strength 5"); err != nil {
		t.Fatal(err)
	}
	if s.Cloth.WindDirection != (mgl64.Vec3{-1, 0, 0}) {
		t.Error("wind without -dir changed the direction")
	}

	if err := run(t, r, "cmd pin 3 4"); err != nil || !s.Cloth.Particle(3, 4).IsFixed() {
		t.Errorf("pin: %v", err)
	}
	if err := run(t, r, "cmd pin -free 3 4"); err != nil || s.Cloth.Particle(3, 4).IsFixed() {
		t.Errorf("pin -free: %v", err)
	}
	// -free must not stick to the next call
	if err := run(t, r, "cmd pin 3 5"); err != nil || !s.Cloth.Particle(3, 5).IsFixed() {
		t.Errorf("pin after -free: %v", err)
	}

	if err := run(t, r, "cmd cut -radius 0.2 -3 2 0 1 0 0"); err != nil {
		t.Fatal(err)
	}
	if s.Stats().Broken == 0 || !strings.HasPrefix(log.last(), "cut ") {
		t.Errorf("cut broke %d, log %q", s.Stats().Broken, log.last())
	}

	if err := run(t, r, "cmd tear 1.2"); err != nil || s.Cloth.TearFactor != 1.2 {
		t.Errorf("tear = %v, %v", s.Cloth.TearFactor, err)
	}

	for _, line := range []string{"cmd sphere 0 0 0 1", "cmd box 0 0 0 1 1 1", "cmd plane 0 -1 0 0 1 0"} {
		if err := run(t, r, line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	if len(s.Colliders()) != 4 {
		t.Errorf("colliders = %d, want 4", len(s.Colliders()))
	}
	if err := run(t, r, "cmd clear"); err != nil || len(s.Colliders()) != 0 {
		t.Errorf("clear: %v", err)
	}

	if err := run(t, r, "cmd mode squishy"); err != nil || s.Mode != sim.ModeSquishy {
		t.Fatalf("mode: %v", err)
	}
	if err := run(t, r, "cmd cut 0 0 0 1 0 0"); err == nil {
		t.Error("cut in squishy mode succeeded")
	}
	if err := run(t, r, "cmd shape cube"); err != nil || s.Volume.Shape != squishy.ShapeCube {
		t.Errorf("shape: %v", err)
	}
	if err := run(t, r, "cmd material water balloon"); err == nil {
		t.Error("material with two tokens accepted")
	}
	if err := run(t, r, "cmd material water_balloon"); err != nil || s.Volume.Material != squishy.WaterBalloon {
		t.Errorf("material: %v", err)
	}
	if err := run(t, r, "cmd pinidx 2"); err != nil || !s.Volume.Particles[2].IsFixed() {
		t.Errorf("pinidx: %v", err)
	}
	if err := run(t, r, "cmd render points"); err != nil || s.Render != sim.RenderPoints {
		t.Errorf("render: %v", err)
	}
	if err := run(t, r, "cmd integrator pbd"); err != nil || s.Integrator != sim.PBD {
		t.Errorf("integrator: %v", err)
	}
	if err := run(t, r, "cmd pause"); err != nil || !s.Paused {
		t.Errorf("pause: %v", err)
	}
	if err := run(t, r, "cmd energy"); err != nil || !strings.HasPrefix(log.last(), "water_balloon cube") {
		t.Errorf("energy: %v, log %q", err, log.last())
	}
}

func TestPickingCommands(t *testing.T) {
	r, s, log := setup(t)

	if err := run(t, r, "cmd drag 0 5 10 0 -0.5 -1"); err == nil {
		t.Error("drag without a grab succeeded")
	}
	if err := run(t, r, "cmd grab 5 2 5 -1 0 -1"); err != nil || log.last() != "grabbed (14, 14)" {
		t.Fatalf("grab: %v, log %q", err, log.last())
	}
	if err := run(t, r, "cmd drag -normal 0,0,-1 0 5 10 0 -0.5 -1"); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if p := s.Cloth.Particle(14, 14).Position; !approxVec(p, mgl64.Vec3{0, 1, 2}) {
		t.Errorf("dragged to %v, want (0,1,2)", p)
	}
	if err := run(t, r, "cmd release"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Grabbed(); ok {
		t.Error("release kept the grab")
	}
	if err := run(t, r, "cmd grab 0 10 0 0 1 0"); err == nil {
		t.Error("grab pointing away succeeded")
	}

	if err := run(t, r, "cmd pinat 0 2 0"); err != nil || !s.Cloth.Particle(7, 7).IsFixed() {
		t.Errorf("pinat: %v", err)
	}
	if err := run(t, r, "cmd mode squishy"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, r, "cmd pinat 0 4.6 0"); err != nil || !s.Volume.Particles[1].IsFixed() {
		t.Errorf("pinat volume: %v", err)
	}
	if err := run(t, r, "cmd pinat -radius 0.01 0 4.6 0"); err == nil {
		t.Error("pinat with a tiny radius found a particle")
	}
}

func TestSaveWritesCurrentSettings(t *testing.T) {
	r, s, log := setup(t)
	prefs := engineconfig.Default()
	RegisterPrefs(r, &prefs, s, log)
	if err := s.SetFabric("leather"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cfg", "prefs.json")

	if err := run(t, r, "cmd save -path "+path); err != nil {
		t.Fatal(err)
	}
	got, err := engineconfig.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sim.Fabric != "leather" || got != prefs {
		t.Errorf("saved %+v, want %+v", got, prefs)
	}
	if err := run(t, r, "cmd save extra"); err == nil {
		t.Error("save with an argument succeeded")
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	r, _, log := setup(t)
	if err := run(t, r, "cmd help"); err != nil {
		t.Fatal(err)
	}
	names := r.Names()
	if len(log.lines) != len(names) {
		t.Fatalf("help printed %d lines for %d commands", len(log.lines), len(names))
	}
	for i, name := range names {
		if !strings.HasPrefix(log.lines[i], "cmd "+name) {
			t.Errorf("line %d = %q, want usage of %s", i, log.lines[i], name)
		}
	}
	if r.Usage("cut") != "cut [-radius r] ox oy oz dx dy dz" || r.Usage("nope") != "nope" {
		t.Errorf("usage = %q / %q", r.Usage("cut"), r.Usage("nope"))
	}
}

func approxVec(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}
