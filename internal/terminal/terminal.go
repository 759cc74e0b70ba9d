package terminal

import (
	"fmt"
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"

	"softbody/internal/commands"
	"softbody/internal/logger"
)

const (
	BarHeight = 40
	// Windowed mode lifts the console so the window frame does not clip it.
	WindowedBarOffset = 56

	fontSize    = 20
	hintSize    = 16
	padding     = 8
	logLines    = 12
	lineHeight  = fontSize + 4
	historySize = 64
	maxLineLen  = 160
)

var (
	barColor  = rl.NewColor(30, 34, 40, 255)
	edgeColor = rl.NewColor(90, 140, 200, 255)
	logColor  = rl.NewColor(18, 20, 24, 230)
	hintColor = rl.NewColor(150, 190, 230, 255)
	errColor  = rl.NewColor(230, 120, 110, 255)
)

// Status reports the state shown in the prompt, e.g. "cloth/verlet".
type Status func() string

// Terminal is the simulator console, toggled with ESC. Typed lines run as commands with or
// without the "cmd " lead. TAB completes command names, the arrow keys recall earlier lines and
// the usage of the command being typed is drawn above the input.
type Terminal struct {
	log     *logger.Logger
	reg     *commands.Registry
	status  Status
	history *commands.History
	input   string
	failed  bool
	open    bool
	font    rl.Font
}

// New returns a closed console that runs lines through reg. status may be nil.
func New(log *logger.Logger, reg *commands.Registry, status Status) *Terminal {
	return &Terminal{log: log, reg: reg, status: status, history: commands.NewHistory(historySize)}
}

func (t *Terminal) IsOpen() bool { return t.open }

// SetFont switches drawing to font; a zero texture keeps raylib's default.
func (t *Terminal) SetFont(font rl.Font) { t.font = font }

// Update reads the keyboard while the console is open. Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = !t.open
	}
	if !t.open {
		return
	}
	t.readText()
	switch {
	case rl.IsKeyPressed(rl.KeyTab):
		t.input = t.reg.Complete(t.input)
	case rl.IsKeyPressed(rl.KeyUp):
		if l, ok := t.history.Prev(); ok {
			t.input = l
		}
	case rl.IsKeyPressed(rl.KeyDown):
		t.input = t.history.Next()
	case rl.IsKeyPressed(rl.KeyBackspace) || rl.IsKeyPressedRepeat(rl.KeyBackspace):
		if t.input != "" {
			_, size := utf8.DecodeLastRuneInString(t.input)
			t.input = t.input[:len(t.input)-size]
		}
	case rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter):
		t.submit()
	}
}

func (t *Terminal) readText() {
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
	if ctrl && rl.IsKeyPressed(rl.KeyV) {
		t.input += rl.GetClipboardText()
		return
	}
	for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
		t.input += string(rune(c))
	}
}

func (t *Terminal) submit() {
	line := t.input
	t.input = ""
	if line == "" {
		return
	}
	t.history.Push(line)
	t.log.Log(t.prompt() + line)
	args, ok := t.reg.Line(line)
	if !ok {
		t.failed = true
		t.log.Log(t.reg.Hint(line) + `; "help" lists commands`)
		return
	}
	err := t.reg.Execute(args)
	t.failed = err != nil
	if err != nil {
		t.log.Log("error: " + err.Error())
	}
}

func (t *Terminal) prompt() string {
	if t.status == nil {
		return "softbody> "
	}
	return fmt.Sprintf("softbody[%s]> ", t.status())
}

// Draw renders the log tail, the usage hint and the input bar when open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	w := int32(rl.GetScreenWidth())
	barY := int32(rl.GetScreenHeight()) - BarHeight
	if !rl.IsWindowFullscreen() {
		barY -= WindowedBarOffset
	}
	hintY := barY - hintSize - padding
	logTop := max(hintY-logLines*lineHeight, 0)
	rl.DrawRectangle(0, logTop, w, barY-logTop, logColor)

	lines := t.log.Lines()
	lines = lines[max(len(lines)-logLines, 0):]
	for i, line := range lines {
		if len(line) > maxLineLen {
			line = line[:maxLineLen-3] + "..."
		}
		col := rl.LightGray
		if i == len(lines)-1 && t.failed {
			col = errColor
		}
		t.text(line, padding, logTop+int32(i*lineHeight)+padding/2, fontSize, col)
	}
	if hint := t.reg.Hint(t.input); hint != "" {
		t.text(hint, padding, hintY, hintSize, hintColor)
	}

	rl.DrawRectangle(0, barY, w, BarHeight, barColor)
	rl.DrawRectangle(0, barY, w, 2, edgeColor)
	cursor := "_"
	if int(rl.GetTime()*2)%2 == 1 {
		cursor = " "
	}
	t.text(t.prompt()+t.input+cursor, padding, barY+padding, fontSize, rl.White)
}

func (t *Terminal) text(s string, x, y, size int32, col rl.Color) {
	if t.font.Texture.ID == 0 {
		rl.DrawText(s, x, y, size, col)
		return
	}
	rl.DrawTextEx(t.font, s, rl.NewVector2(float32(x), float32(y)), float32(size), 1, col)
}
