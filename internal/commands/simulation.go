package commands

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
	"softbody/internal/sim"
)

// Logger receives command output. *logger.Logger satisfies it.
type Logger interface {
	Log(line string)
}

type simCommands struct {
	log Logger
	reg *Registry
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// RegisterSimulation adds the simulation commands to r. Results are reported through log.
func RegisterSimulation(r *Registry, s *sim.Simulation, log Logger) {
	c := &simCommands{log: log, reg: r}

	c.add("mode", "mode cloth|squishy", func(fs *flag.FlagSet) error {
		arg, err := oneArg(fs)
		if err != nil {
			return err
		}
		m, err := sim.ParseMode(arg)
		if err != nil {
			return err
		}
		s.SetMode(m)
		c.logf("mode: %s", m)
		return nil
	})
	c.add("integrator", "integrator verlet|pbd", func(fs *flag.FlagSet) error {
		arg, err := oneArg(fs)
		if err != nil {
			return err
		}
		i, err := sim.ParseIntegrator(arg)
		if err != nil {
			return err
		}
		s.SetIntegrator(i)
		c.logf("integrator: %s", i)
		return nil
	})
	c.add("fabric", "fabric <name>", c.named(s.SetFabric, "fabric"))
	c.add("material", "material <name>", c.named(s.SetMaterial, "material"))
	c.add("shape", "shape sphere|torus|cube|pyramid", c.named(s.SetShape, "shape"))
	c.add("render", "render shaded|wireframe|points|springs|debug", func(fs *flag.FlagSet) error {
		arg, err := oneArg(fs)
		if err != nil {
			return err
		}
		mode, err := sim.ParseRenderMode(arg)
		if err != nil {
			return err
		}
		s.Render = mode
		c.logf("render: %s", mode)
		return nil
	})

	windFS := newFlagSet("wind")
	strength := windFS.Float64("strength", -1, "wind strength (keeps the current one when negative)")
	dir := windFS.String("dir", "", "wind direction as x,y,z")
	c.register(windFS, "wind [-strength s] [-dir x,y,z]", func() error {
		d, st := s.Cloth.WindDirection, s.Cloth.WindStrength
		if *strength >= 0 {
			st = *strength
		}
		if *dir != "" {
			v, err := parseVec(strings.Split(*dir, ","))
			if err != nil {
				return fmt.Errorf("wind -dir: %w", err)
			}
			d = v
		}
		s.SetWind(d, st)
		c.logf("wind: %v strength %g", d, st)
		return nil
	})

	c.add("gravity", "gravity x y z", func(fs *flag.FlagSet) error {
		g, err := vecArgs(fs)
		if err != nil {
			return err
		}
		s.SetGravity(g)
		c.logf("gravity: %v", g)
		return nil
	})

	pinFS := newFlagSet("pin")
	pinFree := pinFS.Bool("free", false, "release instead of pin")
	c.register(pinFS, "pin [-free] row col", func() error {
		n, err := intArgs(pinFS, 2)
		if err != nil {
			return err
		}
		if !s.Pin(n[0], n[1], !*pinFree) {
			return fmt.Errorf("pin: no particle at (%d, %d)", n[0], n[1])
		}
		c.logf("pin (%d, %d): %t", n[0], n[1], !*pinFree)
		return nil
	})

	pinIdxFS := newFlagSet("pinidx")
	pinIdxFree := pinIdxFS.Bool("free", false, "release instead of pin")
	c.register(pinIdxFS, "pinidx [-free] index", func() error {
		n, err := intArgs(pinIdxFS, 1)
		if err != nil {
			return err
		}
		if !s.PinIndex(n[0], !*pinIdxFree) {
			return fmt.Errorf("pinidx: no particle %d", n[0])
		}
		c.logf("pin %d: %t", n[0], !*pinIdxFree)
		return nil
	})

	cutFS := newFlagSet("cut")
	radius := cutFS.Float64("radius", 0, "cut radius (default 0.1)")
	c.register(cutFS, "cut [-radius r] ox oy oz dx dy dz", func() error {
		f, err := floatArgs(cutFS, 6)
		if err != nil {
			return err
		}
		if s.Mode != sim.ModeCloth {
			return fmt.Errorf("cut: only the cloth can be cut")
		}
		origin := mgl64.Vec3{f[0], f[1], f[2]}
		direction := mgl64.Vec3{f[3], f[4], f[5]}
		c.logf("cut %d springs", s.Cut(origin, direction, *radius))
		return nil
	})

	pinAtFS := newFlagSet("pinat")
	pinRadius := pinAtFS.Float64("radius", 0, "search radius (default 0.2)")
	c.register(pinAtFS, "pinat [-radius r] x y z", func() error {
		pos, err := vecArgs(pinAtFS)
		if err != nil {
			return err
		}
		i, ok := s.PinNear(pos, *pinRadius)
		if !ok {
			return fmt.Errorf("pinat: no particle near %v", pos)
		}
		c.logf("pin %d: %t", i, s.World().Particles[i].IsFixed())
		return nil
	})

	c.add("grab", "grab ox oy oz dx dy dz", func(fs *flag.FlagSet) error {
		f, err := floatArgs(fs, 6)
		if err != nil {
			return err
		}
		row, col, ok := s.Grab(mgl64.Vec3{f[0], f[1], f[2]}, mgl64.Vec3{f[3], f[4], f[5]})
		if !ok {
			return fmt.Errorf("grab: no cloth particle on that ray")
		}
		c.logf("grabbed (%d, %d)", row, col)
		return nil
	})
	dragFS := newFlagSet("drag")
	normal := dragFS.String("normal", "", "drag plane normal as x,y,z (default: the ray direction)")
	c.register(dragFS, "drag [-normal x,y,z] ox oy oz dx dy dz", func() error {
		f, err := floatArgs(dragFS, 6)
		if err != nil {
			return err
		}
		origin := mgl64.Vec3{f[0], f[1], f[2]}
		direction := mgl64.Vec3{f[3], f[4], f[5]}
		n := direction
		if *normal != "" {
			if n, err = parseVec(strings.Split(*normal, ",")); err != nil {
				return fmt.Errorf("drag -normal: %w", err)
			}
		}
		row, col, ok := s.Grabbed()
		if !ok {
			return fmt.Errorf("drag: nothing grabbed")
		}
		if !s.Drag(origin, direction, n) {
			return fmt.Errorf("drag: (%d, %d) cannot move along that ray", row, col)
		}
		c.logf("(%d, %d) at %v", row, col, s.Cloth.Particle(row, col).Position)
		return nil
	})
	c.add("release", "release (drop the grabbed particle)", func(fs *flag.FlagSet) error {
		s.Release()
		c.logf("released")
		return nil
	})

	c.add("tear", "tear <factor> (0 disables)", func(fs *flag.FlagSet) error {
		f, err := floatArgs(fs, 1)
		if err != nil {
			return err
		}
		s.SetTearFactor(f[0])
		c.logf("tear factor: %g", s.Cloth.TearFactor)
		return nil
	})

	c.add("sphere", "sphere x y z r", func(fs *flag.FlagSet) error {
		f, err := floatArgs(fs, 4)
		if err != nil {
			return err
		}
		s.AddCollider(physics.NewSphereCollider(mgl64.Vec3{f[0], f[1], f[2]}, f[3]))
		c.logf("added sphere collider (%d total)", len(s.Colliders()))
		return nil
	})
	c.add("box", "box x y z sx sy sz", func(fs *flag.FlagSet) error {
		f, err := floatArgs(fs, 6)
		if err != nil {
			return err
		}
		s.AddCollider(physics.NewBoxCollider(mgl64.Vec3{f[0], f[1], f[2]}, mgl64.Vec3{f[3], f[4], f[5]}))
		c.logf("added box collider (%d total)", len(s.Colliders()))
		return nil
	})
	c.add("plane", "plane px py pz nx ny nz", func(fs *flag.FlagSet) error {
		f, err := floatArgs(fs, 6)
		if err != nil {
			return err
		}
		s.AddCollider(physics.NewPlaneCollider(mgl64.Vec3{f[0], f[1], f[2]}, mgl64.Vec3{f[3], f[4], f[5]}))
		c.logf("added plane collider (%d total)", len(s.Colliders()))
		return nil
	})
	c.add("clear", "clear (remove colliders)", func(fs *flag.FlagSet) error {
		s.ClearColliders()
		c.logf("colliders cleared")
		return nil
	})

	c.add("reset", "reset", func(fs *flag.FlagSet) error {
		s.Reset()
		c.logf("reset %s", s.Mode)
		return nil
	})
	c.add("pause", "pause (toggle)", func(fs *flag.FlagSet) error {
		s.Paused = !s.Paused
		c.logf("paused: %t", s.Paused)
		return nil
	})
	c.add("energy", "energy", func(fs *flag.FlagSet) error {
		c.logf("%s", s.Describe())
		return nil
	})
	c.add("help", "help", func(fs *flag.FlagSet) error {
		for _, name := range r.Names() {
			c.logf("cmd %s", r.Usage(name))
		}
		return nil
	})
}

// add registers a command whose FlagSet has no flags of its own.
func (c *simCommands) add(name, usage string, run func(fs *flag.FlagSet) error) {
	fs := newFlagSet(name)
	c.register(fs, usage, func() error { return run(fs) })
}

func (c *simCommands) register(fs *flag.FlagSet, usage string, run func() error) {
	c.reg.Register(fs.Name(), fs, run)
	c.reg.SetUsage(fs.Name(), usage)
}

func (c *simCommands) named(set func(string) error, what string) func(fs *flag.FlagSet) error {
	return func(fs *flag.FlagSet) error {
		arg, err := oneArg(fs)
		if err != nil {
			return err
		}
		if err := set(arg); err != nil {
			return err
		}
		c.logf("%s: %s", what, arg)
		return nil
	}
}

func (c *simCommands) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Log(fmt.Sprintf(format, args...))
	}
}

func oneArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: want 1 argument, got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func floatArgs(fs *flag.FlagSet, n int) ([]float64, error) {
	if fs.NArg() != n {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", fs.Name(), n, fs.NArg())
	}
	out := make([]float64, n)
	for i, a := range fs.Args() {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fs.Name(), i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func intArgs(fs *flag.FlagSet, n int) ([]int, error) {
	if fs.NArg() != n {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", fs.Name(), n, fs.NArg())
	}
	out := make([]int, n)
	for i, a := range fs.Args() {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fs.Name(), i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func vecArgs(fs *flag.FlagSet) (mgl64.Vec3, error) {
	f, err := floatArgs(fs, 3)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return mgl64.Vec3{f[0], f[1], f[2]}, nil
}

func parseVec(parts []string) (mgl64.Vec3, error) {
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want x,y,z, got %d components", len(parts))
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}
