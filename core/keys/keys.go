// Package keys resolves ducky-script tokens to statement verbs and to the key
// names understood by the injection port.
//
// Resolution is a pure table lookup:
//
//   - aliases map alternate spellings to a canonical verb or key name, one hop
//     only (no alias targets another alias)
//   - a small translation table handles the keys whose port name is not simply
//     the lowercased ducky name (GUI, APP)
//   - every other key lowercases, and the result must belong to the port's key
//     vocabulary (see IsKeyName)
//
// Tokens joined with '-' (CTRL-ALT) are modifier chords; each part resolves
// independently.
package keys

import (
	"runtime"
	"strings"

	"github.com/opal-lang/ducky/core/invariant"
)

// Canonical statement verbs.
const (
	VerbRem          = "REM"
	VerbDefaultDelay = "DEFAULT_DELAY"
	VerbDelay        = "DELAY"
	VerbString       = "STRING"
	VerbRepeat       = "REPEAT"
)

// Unresolved marks a key token that does not translate to a port key name.
const Unresolved = ""

// ChordSeparator joins modifier keys inside a single token, as in CTRL-ALT.
const ChordSeparator = "-"

var verbs = []string{VerbRem, VerbDefaultDelay, VerbDelay, VerbString, VerbRepeat}

// aliases maps alternate spellings to their canonical verb or key. Keys are
// case sensitive.
var aliases = map[string]string{
	"DEFAULTDELAY": VerbDefaultDelay,
	"WINDOWS":      "GUI",
	"MENU":         "APP",
	"CONTROL":      "CTRL",
	"DOWNARROW":    "DOWN",
	"UPARROW":      "UP",
	"LEFTARROW":    "LEFT",
	"RIGHTARROW":   "RIGHT",
	"BREAK":        "PAUSE",
	"ESC":          "ESCAPE",
}

// translations holds the keys whose port name differs from their lowercased
// ducky name.
var translations = map[string]string{
	"GUI": guiKeyFor(runtime.GOOS),
	"APP": "apps",
}

func init() {
	for alias, target := range aliases {
		_, chained := aliases[target]
		invariant.Invariant(!chained, "alias %q targets another alias %q", alias, target)
	}
}

// guiKeyFor returns the port name of the GUI (Windows/Command) key on goos.
func guiKeyFor(goos string) string {
	if goos == "darwin" {
		return "command"
	}
	return "winleft"
}

// GUIKey returns the port key name the GUI key translates to on this platform.
func GUIKey() string {
	return translations["GUI"]
}

// Verbs returns the canonical statement verbs.
func Verbs() []string {
	out := make([]string, len(verbs))
	copy(out, verbs)
	return out
}

// IsVerb reports whether token is a canonical statement verb. Aliases are not
// verbs; resolve them first.
func IsVerb(token string) bool {
	for _, v := range verbs {
		if v == token {
			return true
		}
	}
	return false
}

// IsAlias reports whether token is an alias. A canonical name that has an
// alias (ESCAPE) is not itself an alias.
func IsAlias(token string) bool {
	_, ok := aliases[token]
	return ok
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// ResolveAlias returns the canonical name alias stands for.
func ResolveAlias(alias string) (string, error) {
	target, ok := aliases[alias]
	if !ok {
		return "", &AliasError{Token: alias, Reason: "is not an alias"}
	}
	return target, nil
}

// AliasOf returns the alias of a canonical verb or key name. ok is false when
// name is recognized but has no alias. Asking for the alias of an alias, or of
// something that is neither a verb nor a key, is an error.
func AliasOf(name string) (alias string, ok bool, err error) {
	if !IsRecognized(name) {
		return "", false, &AliasError{Token: name, Reason: "is not a recognized verb or key"}
	}
	if IsAlias(name) {
		return "", false, &AliasError{Token: name, Reason: "is already an alias"}
	}
	for a, target := range aliases {
		if target == name {
			return a, true, nil
		}
	}
	return "", false, nil
}

// resolve replaces token with its alias target, if it has one.
func resolve(token string) string {
	if target, ok := aliases[token]; ok {
		return target
	}
	return token
}

// IsRecognized reports whether token can start a statement: either a verb
// (directly or through an alias) or a key token that fully translates to port
// key names.
func IsRecognized(token string) bool {
	if IsVerb(resolve(token)) {
		return true
	}
	return Resolved(Translate(token))
}

// Translate converts a ducky key token into port key names.
//
// A chord token (CTRL-ALT) is split on '-' and each part translated on its
// own. A single token is alias-resolved, then looked up in the translation
// table or lowercased. A part whose name is not in the port vocabulary comes
// back as Unresolved, so callers check the result with Resolved.
func Translate(token string) []string {
	if strings.Contains(token, ChordSeparator) {
		var out []string
		for _, part := range strings.Split(token, ChordSeparator) {
			out = append(out, Translate(part)...)
		}
		return out
	}

	token = resolve(token)
	name, ok := translations[token]
	if !ok {
		name = strings.ToLower(token)
	}
	if !IsKeyName(name) {
		return []string{Unresolved}
	}
	return []string{name}
}

// Resolved reports whether every name in keys translated successfully.
func Resolved(keys []string) bool {
	for _, k := range keys {
		if k == Unresolved {
			return false
		}
	}
	return true
}
