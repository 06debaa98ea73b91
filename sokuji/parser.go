package sokuji

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// maxRankInput is the number of characters of a team's rank text that are parsed.
const maxRankInput = 9

// dashFolder maps the long-vowel mark and full-width hyphen to '-' before width
// folding, which would otherwise turn U+30FC into the half-width katakana form.
var dashFolder = strings.NewReplacer("ー", "-", "－", "-", "ｰ", "-")

// NormalizeRanks folds full-width input to ASCII, strips everything except
// '+', '-' and digits, and truncates to the parsed length.
func NormalizeRanks(text string) string {
	text = width.Narrow.String(dashFolder.Replace(text))
	var b strings.Builder
	for _, r := range text {
		if r == '+' || r == '-' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxRankInput {
				break
			}
		}
	}
	return b.String()
}

// ParseRanks turns one team's rank text into distinct 1-based rank positions.
//
// Ranks are usually typed without separators, so the two-digit collisions
// (1/10, 1/11, 1/12, 11/12) resolve greedily in a fixed order:
//
//	"0", "10" -> 10      "110" -> 1, 10     "1112" -> 11, 12
//	"111" -> 1, 11       "112" -> 1, 12     "+", "11" -> 11
//	"12" -> 12, or 1, 2 when nothing was parsed yet and no range is open
//
// A run of '-' opens a range: every rank between the previous one (or 0) and
// the next parsed rank is emitted. A trailing range runs to 12.
func ParseRanks(text string) []int {
	text = NormalizeRanks(text)
	parsed := make([]int, 0, 12)
	push := func(ns ...int) {
		for _, n := range ns {
			found := false
			for _, p := range parsed {
				if p == n {
					found = true
					break
				}
			}
			if !found {
				parsed = append(parsed, n)
			}
		}
	}
	consume := func(prefix string) bool {
		if strings.HasPrefix(text, prefix) {
			text = text[len(prefix):]
			return true
		}
		return false
	}

	for text != "" {
		var next []int
		dash := consume("-")
		if dash {
			for consume("-") {
			}
		}
		switch {
		case consume("0"), consume("10"):
			next = []int{10}
		case consume("110"):
			next = []int{1, 10}
		case consume("1112"):
			next = []int{11, 12}
		case consume("111"):
			next = []int{1, 11}
		case consume("112"):
			next = []int{1, 12}
		case consume("+"), consume("11"):
			next = []int{11}
		case consume("12"):
			if len(parsed) > 0 || dash {
				next = []int{12}
			} else {
				next = []int{1, 2}
			}
		case text != "":
			n, _ := strconv.Atoi(text[:1])
			next = []int{n}
			text = text[1:]
		}
		if dash {
			if next == nil {
				next = []int{12}
			}
			from := 1
			if len(parsed) > 0 {
				from = parsed[len(parsed)-1] + 1
			}
			for n := from; n < next[0]; n++ {
				push(n)
			}
		}
		push(next...)
	}
	return parsed
}
