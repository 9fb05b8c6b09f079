package keys

// keyboardKeys is the key-name vocabulary of the injection port. It mirrors
// the names understood by the pyautogui family of automation tools, which is
// the vocabulary ducky scripts were written against; the xdotool backend maps
// each of these onto an X keysym.
var keyboardKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(keyboardKeyList))
	for _, k := range keyboardKeyList {
		m[k] = struct{}{}
	}
	return m
}()

// IsKeyName reports whether name belongs to the injection port's key
// vocabulary. Names are lowercase; no case folding is applied.
func IsKeyName(name string) bool {
	_, ok := keyboardKeys[name]
	return ok
}

// KeyNames returns the injection port's key vocabulary in a stable order.
func KeyNames() []string {
	out := make([]string, len(keyboardKeyList))
	copy(out, keyboardKeyList)
	return out
}

var keyboardKeyList = []string{
	"\t", "\n", "\r", " ", "!", "\"", "#", "$", "%", "&", "'", "(",
	")", "*", "+", ",", "-", ".", "/", "0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", ":", ";", "<", "=", ">", "?", "@", "[", "\\", "]", "^", "_", "`",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o",
	"p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z", "{", "|", "}", "~",
	"accept", "add", "alt", "altleft", "altright", "apps", "backspace",
	"browserback", "browserfavorites", "browserforward", "browserhome",
	"browserrefresh", "browsersearch", "browserstop", "capslock", "clear",
	"convert", "ctrl", "ctrlleft", "ctrlright", "decimal", "del", "delete",
	"divide", "down", "end", "enter", "esc", "escape", "execute",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
	"f13", "f14", "f15", "f16", "f17", "f18", "f19", "f20", "f21", "f22", "f23", "f24",
	"final", "fn", "hanguel", "hangul", "hanja", "help", "home", "insert", "junja",
	"kana", "kanji", "launchapp1", "launchapp2", "launchmail",
	"launchmediaselect", "left", "modechange", "multiply", "nexttrack",
	"nonconvert", "num0", "num1", "num2", "num3", "num4", "num5", "num6",
	"num7", "num8", "num9", "numlock", "pagedown", "pageup", "pause", "pgdn",
	"pgup", "playpause", "prevtrack", "print", "printscreen", "prntscrn",
	"prtsc", "prtscr", "return", "right", "scrolllock", "select", "separator",
	"shift", "shiftleft", "shiftright", "sleep", "space", "stop", "subtract", "tab",
	"up", "volumedown", "volumemute", "volumeup", "win", "winleft", "winright", "yen",
	"command", "option", "optionleft", "optionright",
}
