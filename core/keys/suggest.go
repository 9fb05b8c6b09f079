package keys

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions caps how many candidates Suggest returns.
const maxSuggestions = 3

// maxEditDistance bounds the typo fallback used when no candidate contains
// the token as a subsequence.
const maxEditDistance = 2

// suggestionCandidates lists every spelling a statement can start with:
// verbs, aliases and the uppercase form of each named key. Single-character
// keys are left out; they are never a plausible correction.
var suggestionCandidates = func() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, v := range verbs {
		add(v)
	}
	for a := range aliases {
		add(a)
	}
	for k := range translations {
		add(k)
	}
	for _, k := range keyboardKeyList {
		if len(k) > 1 {
			add(strings.ToUpper(k))
		}
	}
	sort.Strings(out)
	return out
}()

// Suggest returns up to three recognized spellings close to token, best match
// first. It returns nil when nothing is close.
func Suggest(token string) []string {
	if token == "" {
		return nil
	}

	ranks := fuzzy.RankFindFold(token, suggestionCandidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		out := make([]string, 0, maxSuggestions)
		for _, r := range ranks {
			if len(out) == maxSuggestions {
				break
			}
			out = append(out, r.Target)
		}
		return out
	}

	// No candidate contains the token; fall back to plain typo distance.
	type scored struct {
		target   string
		distance int
	}
	upper := strings.ToUpper(token)
	var near []scored
	for _, c := range suggestionCandidates {
		if d := fuzzy.LevenshteinDistance(upper, c); d <= maxEditDistance {
			near = append(near, scored{c, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].distance < near[j].distance })

	var out []string
	for _, s := range near {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, s.target)
	}
	return out
}
