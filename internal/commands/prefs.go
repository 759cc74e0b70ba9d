package commands

import (
	"fmt"

	"softbody/internal/engineconfig"
	"softbody/internal/sim"
)

// RegisterPrefs adds the save command. It stores p, with the simulation's current settings as the
// start-up state, at engineconfig.ConfigPath or the -path flag.
func RegisterPrefs(r *Registry, p *engineconfig.Prefs, s *sim.Simulation, log Logger) {
	c := &simCommands{log: log, reg: r}
	fs := newFlagSet("save")
	path := fs.String("path", "", "preferences file (default "+engineconfig.ConfigPath+")")
	c.register(fs, "save [-path file]", func() error {
		if fs.NArg() != 0 {
			return fmt.Errorf("save: want no arguments, got %d", fs.NArg())
		}
		p.Sim = s.Config()
		target := *path
		var err error
		if target == "" {
			target = engineconfig.ConfigPath
			err = engineconfig.Save(*p)
		} else {
			err = engineconfig.SaveTo(target, *p)
		}
		if err != nil {
			return err
		}
		c.logf("saved %s", target)
		return nil
	})
}
