package inject

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs programs with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Xdotool is a Port that drives X11 input through the xdotool program.
type Xdotool struct {
	cfg    Config
	run    Runner
	binary string
}

// XdotoolOption customizes an Xdotool port.
type XdotoolOption func(*Xdotool)

// WithRunner replaces the program runner, mainly for tests.
func WithRunner(r Runner) XdotoolOption {
	return func(x *Xdotool) {
		x.run = r
	}
}

// WithBinary sets the xdotool executable path.
func WithBinary(path string) XdotoolOption {
	return func(x *Xdotool) {
		x.binary = path
	}
}

// NewXdotool returns a Port configured with cfg.
func NewXdotool(cfg Config, opts ...XdotoolOption) *Xdotool {
	x := &Xdotool{
		cfg:    cfg,
		run:    ExecRunner,
		binary: "xdotool",
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Hotkey presses keys as one chord.
func (x *Xdotool) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	syms := make([]string, len(keys))
	for i, k := range keys {
		syms[i] = Keysym(k)
	}
	return x.act(ctx, "key", "--clearmodifiers", strings.Join(syms, "+"))
}

// Type types text literally.
func (x *Xdotool) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return x.act(ctx, "type", "--delay", "0", "--", text)
}

func (x *Xdotool) act(ctx context.Context, args ...string) error {
	if x.cfg.FailSafe {
		if err := x.checkFailSafe(ctx); err != nil {
			return err
		}
	}
	if _, err := x.run(ctx, x.binary, args...); err != nil {
		return err
	}
	return Sleep(ctx, x.cfg.Pause)
}

// checkFailSafe returns ErrFailSafe when the pointer is in any corner of the
// screen.
func (x *Xdotool) checkFailSafe(ctx context.Context) error {
	out, err := x.run(ctx, x.binary, "getdisplaygeometry")
	if err != nil {
		return fmt.Errorf("fail-safe: display geometry: %w", err)
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return fmt.Errorf("fail-safe: unexpected display geometry %q", strings.TrimSpace(string(out)))
	}
	width, errW := strconv.Atoi(fields[0])
	height, errH := strconv.Atoi(fields[1])
	if errW != nil || errH != nil {
		return fmt.Errorf("fail-safe: unexpected display geometry %q", strings.TrimSpace(string(out)))
	}

	out, err = x.run(ctx, x.binary, "getmouselocation", "--shell")
	if err != nil {
		return fmt.Errorf("fail-safe: mouse location: %w", err)
	}
	px, py, err := parseMouseLocation(out)
	if err != nil {
		return fmt.Errorf("fail-safe: %w", err)
	}

	if inCorner(px, py, width, height) {
		return ErrFailSafe
	}
	return nil
}

// parseMouseLocation reads X and Y from `xdotool getmouselocation --shell`.
func parseMouseLocation(out []byte) (int, int, error) {
	var x, y int
	var haveX, haveY bool
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch name {
		case "X":
			x, haveX = n, true
		case "Y":
			y, haveY = n, true
		}
	}
	if !haveX || !haveY {
		return 0, 0, fmt.Errorf("unexpected mouse location %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}

func inCorner(x, y, width, height int) bool {
	left, right := x == 0, x == width-1
	top, bottom := y == 0, y == height-1
	return (left || right) && (top || bottom)
}

// Keysym maps a port key name to the X keysym xdotool expects. Names without
// a mapping pass through unchanged; xdotool rejects the ones it does not know.
func Keysym(name string) string {
	if sym, ok := keysyms[name]; ok {
		return sym
	}
	if len(name) > 1 && name[0] == 'f' {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return "F" + name[1:]
		}
	}
	if len(name) == 4 && strings.HasPrefix(name, "num") && name[3] >= '0' && name[3] <= '9' {
		return "KP_" + name[3:]
	}
	return name
}

var keysyms = map[string]string{
	"\t": "Tab", "\n": "Return", "\r": "Return", " ": "space",
	"!": "exclam", "\"": "quotedbl", "#": "numbersign", "$": "dollar",
	"%": "percent", "&": "ampersand", "'": "apostrophe", "(": "parenleft",
	")": "parenright", "*": "asterisk", "+": "plus", ",": "comma",
	"-": "minus", ".": "period", "/": "slash", ":": "colon",
	";": "semicolon", "<": "less", "=": "equal", ">": "greater",
	"?": "question", "@": "at", "[": "bracketleft", "\\": "backslash",
	"]": "bracketright", "^": "asciicircum", "_": "underscore", "`": "grave",
	"{": "braceleft", "|": "bar", "}": "braceright", "~": "asciitilde",

	"alt": "alt", "altleft": "Alt_L", "altright": "Alt_R",
	"ctrl": "ctrl", "ctrlleft": "Control_L", "ctrlright": "Control_R",
	"shift": "shift", "shiftleft": "Shift_L", "shiftright": "Shift_R",
	"win": "super", "winleft": "Super_L", "winright": "Super_R",
	"command": "super", "option": "alt", "optionleft": "Alt_L", "optionright": "Alt_R",
	"apps": "Menu", "fn": "function",

	"enter": "Return", "return": "Return", "esc": "Escape", "escape": "Escape",
	"tab": "Tab", "space": "space", "backspace": "BackSpace",
	"del": "Delete", "delete": "Delete", "insert": "Insert",
	"home": "Home", "end": "End",
	"pageup": "Prior", "pgup": "Prior", "pagedown": "Next", "pgdn": "Next",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"capslock": "Caps_Lock", "numlock": "Num_Lock", "scrolllock": "Scroll_Lock",
	"pause": "Pause", "clear": "Clear", "help": "Help", "select": "Select",
	"execute": "Execute", "sleep": "XF86Sleep",
	"print": "Print", "printscreen": "Print", "prntscrn": "Print", "prtsc": "Print", "prtscr": "Print",

	"add": "KP_Add", "subtract": "KP_Subtract", "multiply": "KP_Multiply",
	"divide": "KP_Divide", "decimal": "KP_Decimal", "separator": "KP_Separator",

	"volumeup": "XF86AudioRaiseVolume", "volumedown": "XF86AudioLowerVolume",
	"volumemute": "XF86AudioMute", "playpause": "XF86AudioPlay",
	"nexttrack": "XF86AudioNext", "prevtrack": "XF86AudioPrev", "stop": "XF86AudioStop",
	"browserback": "XF86Back", "browserforward": "XF86Forward",
	"browserhome": "XF86HomePage", "browserrefresh": "XF86Refresh",
	"browsersearch": "XF86Search", "browserstop": "XF86Stop",
	"browserfavorites": "XF86Favorites", "launchmail": "XF86Mail",
	"launchapp1": "XF86Launch0", "launchapp2": "XF86Launch1",
	"launchmediaselect": "XF86AudioMedia",

	"hangul": "Hangul", "hanguel": "Hangul", "hanja": "Hangul_Hanja",
	"kana": "Katakana", "kanji": "Kanji", "junja": "Hangul_Jeonja",
	"final": "Hangul_End", "convert": "Henkan", "nonconvert": "Muhenkan",
	"modechange": "Mode_switch", "accept": "Execute", "yen": "yen",
}
