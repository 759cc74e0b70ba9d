package main

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"softbody/internal/commands"
	"softbody/internal/debug"
	"softbody/internal/engineconfig"
	"softbody/internal/fonts"
	"softbody/internal/graphics"
	"softbody/internal/logger"
	"softbody/internal/presets"
	"softbody/internal/scene"
	"softbody/internal/sim"
	"softbody/internal/terminal"
)

func main() {
	log := logger.New()

	prefs, _ := engineconfig.Load()
	custom, err := presets.Load(prefs.PresetsPath)
	if err != nil {
		log.Log(err.Error())
		custom = presets.NewSet()
	}
	s, err := sim.New(prefs.Sim, custom, log)
	if err != nil {
		log.Log(fmt.Sprintf("config: %v, using defaults", err))
		s, err = sim.New(sim.DefaultConfig(), custom, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	reg := commands.NewRegistry()
	commands.RegisterSimulation(reg, s, log)
	commands.RegisterPrefs(reg, &prefs, s, log)
	term := terminal.New(log, reg, func() string {
		if s.Mode == sim.ModeSquishy {
			return s.Mode.String() + "/" + s.MaterialName()
		}
		return s.Mode.String() + "/" + s.Integrator.String()
	})
	scn := scene.New(s, log)
	scn.SetGridVisible(prefs.GridVisible)
	dbg := debug.New(s)
	dbg.SetShowFPS(prefs.ShowFPS)
	dbg.SetShowMemAlloc(prefs.ShowMemAlloc)
	dbg.SetShowStats(prefs.ShowStats)

	update := func(dt float64) {
		term.Update()
		if !term.IsOpen() {
			scn.Update()
		}
		s.Advance(dt)
	}
	draw := func() {
		scn.Draw()
		dbg.Draw()
		term.Draw()
	}
	var font rl.Font
	open := func() {
		path, err := fonts.Find(prefs.Font)
		if err != nil {
			return
		}
		font = rl.LoadFont(path)
		if font.Texture.ID == 0 {
			log.Log(fmt.Sprintf("font %s: could not load, using default", path))
			return
		}
		term.SetFont(font)
		dbg.SetFont(font)
	}
	closeWindow := func() {
		scn.Unload()
		if font.Texture.ID != 0 {
			rl.UnloadFont(font)
		}
	}
	graphics.Run(graphics.Window{
		Width:      prefs.WindowWidth,
		Height:     prefs.WindowHeight,
		Fullscreen: prefs.Fullscreen,
		Title:      "softbody",
		OnOpen:     open,
		OnClose:    closeWindow,
	}, update, draw)
}
