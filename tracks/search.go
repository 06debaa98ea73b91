package tracks

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

var folder = cases.Fold()

// Normalize folds width and case and drops spaces and punctuation, so that
// "ｍｋｓ", "M K S" and "mks" compare equal.
func Normalize(s string) string {
	s = folder.String(width.Fold.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// index maps a normalized nick to a track id. Abbreviations and full names
// come first; a name with its console prefix dropped ("rainbow road" for
// "N64 Rainbow Road") only fills keys nothing else claims, and such keys shared
// by two tracks are left out.
var index = func() map[string]int {
	idx := make(map[string]int)
	for _, t := range All {
		idx[Normalize(t.Abbr)] = t.ID
		idx[Normalize(t.Name)] = t.ID
	}
	short := make(map[string]int)
	ambiguous := make(map[string]bool)
	for _, t := range All {
		console, rest, ok := strings.Cut(t.Name, " ")
		if !ok || !isConsole(console) {
			continue
		}
		key := Normalize(rest)
		if _, taken := idx[key]; taken || ambiguous[key] {
			continue
		}
		if prev, dup := short[key]; dup && prev != t.ID {
			delete(short, key)
			ambiguous[key] = true
			continue
		}
		short[key] = t.ID
	}
	for key, id := range short {
		idx[key] = id
	}
	return idx
}()

func isConsole(prefix string) bool {
	switch prefix {
	case "SNES", "N64", "GBA", "GCN", "DS", "Wii", "3DS", "Tour":
		return true
	}
	return false
}

// Search finds the track a chat message names. Only whole-message matches on
// an abbreviation or name count.
func Search(nick string) (Track, bool) {
	id, ok := index[Normalize(nick)]
	if !ok {
		return Track{}, false
	}
	return All[id], true
}
