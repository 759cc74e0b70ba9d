package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the window Run opens. Fullscreen uses the monitor size and ignores Width/Height.
type Window struct {
	Width, Height int
	Fullscreen    bool
	Title         string

	// OnOpen runs once after the window and GL context exist; OnClose runs before the window closes.
	OnOpen, OnClose func()
}

// Run starts the window and main loop. Each frame it calls update with the frame time in seconds, then
// clears the screen and calls draw. ESC toggles the terminal, so quitting is via the window button.
func Run(w Window, update func(dt float64), draw func()) {
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode)
		w.Width, w.Height = rl.GetMonitorWidth(0), rl.GetMonitorHeight(0)
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	}
	if w.Width <= 0 || w.Height <= 0 {
		w.Width, w.Height = 1280, 720
	}
	rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	defer rl.CloseWindow()
	if w.OnClose != nil {
		defer w.OnClose()
	}

	rl.SetExitKey(rl.KeyNull) // ESC is used to toggle terminal, not to quit; close via window button
	rl.SetTargetFPS(60)
	if w.OnOpen != nil {
		w.OnOpen()
	}

	for !rl.WindowShouldClose() {
		update(float64(rl.GetFrameTime()))

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 26, 32, 255))
		draw()
		rl.EndDrawing()
	}
}
