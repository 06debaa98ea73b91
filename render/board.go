package render

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/tracks"
)

const (
	ansiReset = "\x1b[0m"
	ansiGray  = "\x1b[30m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"

	codeOpen  = "```ansi\n"
	codeClose = "```"

	// Discord rejects embed field values longer than this.
	fieldLimit    = 1024
	compactLines  = 20
	trackGridRows = 6
	trackGridMax  = 24
)

// scoresToANSI renders "a:b(+d):c(-d)" with diffs against the first team.
func scoresToANSI(scores []int, pad int, hideDiff bool) string {
	if len(scores) == 0 {
		return ""
	}
	if hideDiff {
		parts := make([]string, len(scores))
		for i, s := range scores {
			parts[i] = fmt.Sprintf("%*d", pad, s)
		}
		return strings.Join(parts, ":")
	}
	var b strings.Builder
	b.WriteString(ansiReset)
	fmt.Fprintf(&b, "%*d:", pad, scores[0])
	for i, s := range scores[1:] {
		if i > 0 {
			b.WriteString(ansiReset + ":")
		}
		diff := scores[0] - s
		fmt.Fprintf(&b, "%*d%s(%s%*d%s)", pad, s, ansiGray, diffSign(diff), pad, abs(diff), ansiGray)
	}
	b.WriteString(ansiReset)
	return b.String()
}

func diffSign(diff int) string {
	if diff >= 0 {
		return ansiGreen + "+"
	}
	return ansiRed + "-"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// PlainText is the copy/paste line: teams by score, each with its gap to the
// first team, then the races left.
func PlainText(s *sokuji.Session) string {
	order := make([]int, s.TeamNum())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(s.Scores[b], s.Scores[a]) })
	parts := make([]string, len(order))
	for k, i := range order {
		if i == 0 {
			parts[k] = fmt.Sprintf("%s: %d", s.Tags[0], s.Scores[0])
			continue
		}
		diff := s.Scores[0] - s.Scores[i]
		sign := ""
		if diff >= 0 {
			sign = "+"
		}
		parts[k] = fmt.Sprintf("%s: %d (%s%d)", s.Tags[i], s.Scores[i], sign, diff)
	}
	return strings.Join(parts, " | ") + " || @" + strconv.Itoa(s.Remaining())
}

func trackName(id *int) string {
	return tracks.Label(id)
}

// Board renders the session board in the channel's display mode.
func Board(s *sokuji.Session, color int) Message {
	hideDiff := s.Format == 2
	embed := Embed{
		Title:       strings.Join(s.Tags, " - "),
		Description: codeOpen + scoresToANSI(s.Scores, 1, hideDiff) + " " + ansiBlue + "@" + strconv.Itoa(s.Remaining()) + codeClose,
		Color:       color,
	}
	switch s.Mode {
	case sokuji.ModeCompact:
		embed.Fields = compactFields(s, hideDiff)
	default:
		for i, r := range s.Races {
			name := strconv.Itoa(i+1) + "."
			if label := trackName(r.TrackID); label != "" {
				name += " " + label
			}
			embed.Fields = append(embed.Fields, Field{
				Name:  name,
				Value: codeOpen + scoresToANSI(r.Scores(), 2, hideDiff) + " | " + joinInts(r.Ranks()) + codeClose,
			})
		}
	}

	msg := Message{Components: boardButtons(s)}
	if s.ShowText {
		msg.Content = PlainText(s)
	}
	if s.ShowImage {
		img, err := ScoreImage(s)
		if err != nil {
			slog.Warn("failed to draw score image", slog.String("session", s.ID), slog.Any("err", err))
		} else {
			embed.Image = "attachment://" + ImageName
			msg.Files = []File{{Name: ImageName, Data: img}}
		}
	}
	msg.Embeds = []Embed{embed}
	return msg
}

func compactFields(s *sokuji.Session, hideDiff bool) []Field {
	entries := s.Entries()
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > compactLines {
		entries = entries[len(entries)-compactLines:]
	}
	width := len(strconv.Itoa(len(s.Races))) + 3
	lines := make([]string, len(entries))
	for i, e := range entries {
		scores := scoresToANSI(e.Scores, 2, hideDiff || s.Format == 3)
		switch {
		case len(s.Races) == 0:
			lines[i] = scores + " | " + e.Reason
		case e.IsRace():
			lines[i] = fmt.Sprintf("%*s", width, strconv.Itoa(e.N)+" | ") + scores + " | " + joinInts(e.Ranks)
		default:
			lines[i] = strings.Repeat(" ", width) + scores + " | " + e.Reason
		}
	}
	value := strings.Join(lines, "\n") + codeClose
	for utf8.RuneCountInString(codeOpen+value) > fieldLimit {
		cut := strings.IndexByte(value, '\n')
		if cut < 0 {
			break
		}
		value = value[cut+1:]
	}
	scores := Field{Name: i18n.Sprintf(s.IsJa, "label_scores"), Value: codeOpen + value}

	from := max(len(s.Races)-trackGridMax, 0)
	recent := s.Races[from:]
	hasTrack := false
	for _, r := range recent {
		if r.TrackID != nil {
			hasTrack = true
			break
		}
	}
	if !hasTrack {
		return []Field{scores}
	}
	var rows []string
	for start := 0; start < len(recent); start += trackGridRows {
		end := min(start+trackGridRows, len(recent))
		cells := make([]string, 0, trackGridRows)
		for _, r := range recent[start:end] {
			label := trackName(r.TrackID)
			if label == "" {
				label = "?"
			}
			cells = append(cells, "`"+label+"`")
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	grid := Field{Name: i18n.Sprintf(s.IsJa, "label_tracks"), Value: strings.Join(rows, "\n")}
	return []Field{grid, scores}
}

func boardButtons(s *sokuji.Session) []Row {
	ja := s.IsJa
	var row Row
	if s.IsEnded {
		row = append(row, button(IDResumePrefix+s.ID, i18n.Sprintf(ja, "label_resume"), StyleSecondary))
		return []Row{row}
	}
	if !s.Done() {
		row = append(row, button(IDAdd, i18n.Sprintf(ja, "label_add"), StylePrimary))
	}
	if s.Format == 6 {
		row = append(row, button(IDEditRace, i18n.Sprintf(ja, "label_edit"), StyleSuccess))
	} else {
		row = append(row, button(IDEditTrack, i18n.Sprintf(ja, "label_edit_track"), StyleSuccess))
	}
	if len(s.Races) > 0 {
		row = append(row, button(IDUndo, i18n.Sprintf(ja, "label_undo"), StyleDanger))
	}
	return []Row{row}
}

// RaceBoard renders one race per team: score, gap to the first team and
// ranks. index addresses s.Races; pass pending to render the pending race.
func RaceBoard(s *sokuji.Session, index int, pending bool, color int) Message {
	var race *sokuji.Race
	n := index + 1
	if pending {
		race = s.Pending
		n = len(s.Races) + 1
	} else if index >= 0 && index < len(s.Races) {
		race = s.Races[index]
	}
	if race == nil {
		return Message{}
	}
	title := strconv.Itoa(n) + "."
	if label := trackName(race.TrackID); label != "" {
		title += " " + label
	}
	scores := race.Scores()
	embed := Embed{Title: title, Color: color}
	for i, tag := range s.Tags {
		if i >= len(scores) || scores[i] == 0 {
			embed.Fields = append(embed.Fields, Field{Name: tag, Value: codeOpen + ansiGray + "--" + codeClose})
			continue
		}
		value := codeOpen + fmt.Sprintf("%2d", scores[i])
		if i == 0 {
			value += strings.Repeat(" ", 5)
		} else {
			diff := scores[0] - scores[i]
			value += ansiGray + "(" + diffSign(diff) + fmt.Sprintf("%2d", abs(diff)) + ansiGray + ")"
		}
		if ranks := race.RanksOf(i); len(ranks) > 0 {
			value += " " + ansiReset + "| " + joinInts(ranks)
		}
		embed.Fields = append(embed.Fields, Field{Name: tag, Value: value + codeClose})
	}
	return Message{Embeds: []Embed{embed}}
}
