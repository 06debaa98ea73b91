package bot

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
)

// EditKind selects what an edit form changes.
type EditKind string

const (
	EditKindRace  EditKind = "race"
	EditKindTrack EditKind = "track"
	EditKindRanks EditKind = "ranks"
)

// EditInput is a submitted edit. A nil N addresses the latest race. Nil
// entries of Ranks keep that team; all-nil Ranks leave the race's ranks
// alone. The track is replaced when Track is set or EditTrack is true.
type EditInput struct {
	N         *int
	Ranks     []*string
	Track     string
	EditTrack bool
}

// ParseRaceNumber reads a user-typed race number. Full-width digits are
// accepted. Blank or unreadable input yields nil, the latest race.
func ParseRaceNumber(text string) *int {
	text = width.Narrow.String(strings.ReplaceAll(strings.TrimSpace(text), "ー", "-"))
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &n
}

// EditForm returns the form behind the board's edit buttons and the
// follow-up ranks prompt of two-player teams.
func (b *Bot) EditForm(ctx context.Context, req Request, kind EditKind) (RanksForm, error) {
	var form RanksForm
	err := b.observe(ctx, "edit_form", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if err := s.CheckOpen(); err != nil {
			return err
		}
		form = RanksForm{Format: s.Format}
		switch kind {
		case EditKindRanks:
			form.Tags = s.Tags[:min(len(s.Tags), maxFormFields)]
		case EditKindTrack:
			form.WithRaceNumber = true
			form.WithTrack = true
		default:
			form.WithRaceNumber = true
			form.WithTrack = true
			if s.Format != 2 {
				form.Tags = s.Tags[:min(len(s.Tags), maxFormFields-2)]
			}
		}
		return nil
	})
	return form, err
}

// EditPrompt answers a two-player race edit, whose ranks do not fit the
// first form, with a button opening the ranks form for race n.
func (b *Bot) EditPrompt(ctx context.Context, req Request, n *int) error {
	return b.observe(ctx, "edit_prompt", req, func(ctx context.Context) error {
		text := i18n.Sprintf(req.IsJa, "edit_latest_prompt")
		id := render.IDEditRanksPrefix + "latest"
		if n != nil {
			text = i18n.Sprintf(req.IsJa, "edit_race_prompt", *n)
			id = render.IDEditRanksPrefix + strconv.Itoa(*n)
		}
		_, err := b.reply(ctx, req, render.Message{
			Content:    text,
			Ephemeral:  true,
			Components: []render.Row{{{Kind: render.KindButton, ID: id, Label: i18n.Sprintf(req.IsJa, "label_enter"), Style: render.StyleSuccess}}},
		})
		return err
	})
}

// EditRace applies a submitted edit form.
func (b *Bot) EditRace(ctx context.Context, req Request, in EditInput) error {
	return b.locked(ctx, "edit", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		idx, edited, err := b.applyEdit(ctx, req, s, in)
		if err != nil {
			return err
		}
		msg := render.Message{Content: i18n.Sprintf(s.IsJa, "edited_race", idx+1)}
		if s.Format != 6 && edited {
			msg.Embeds = render.RaceBoard(s, idx, false, b.color(ctx, s.GuildID)).Embeds
		}
		if _, err := b.reply(ctx, req, msg); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		return b.save(ctx, s, false, true)
	})
}

// applyEdit resolves the target race and edits it. It reports whether the
// ranks changed.
func (b *Bot) applyEdit(ctx context.Context, req Request, s *sokuji.Session, in EditInput) (int, bool, error) {
	if err := s.CheckOpen(); err != nil {
		return 0, false, err
	}
	idx, err := s.RaceIndex(in.N)
	if err != nil {
		return 0, false, err
	}
	editTrack := in.EditTrack || in.Track != ""
	var trackID *int
	if editTrack {
		if trackID, err = b.searchTrack(ctx, req, in.Track); err != nil {
			return 0, false, err
		}
	}
	ranks := in.Ranks
	if !slices.ContainsFunc(ranks, func(r *string) bool { return r != nil }) {
		ranks = nil
	}
	if err := s.EditRace(idx, ranks, trackID, editTrack); err != nil {
		return 0, false, err
	}
	return idx, ranks != nil, nil
}

// EditTrackText is the %track command: "[n] nick" sets the track of race n,
// or of the latest race when n is omitted.
func (b *Bot) EditTrackText(ctx context.Context, req Request, arg string) error {
	return b.locked(ctx, "track", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if err := s.CheckOpen(); err != nil {
			return err
		}
		if len(s.Races) == 0 {
			return sokuji.NewError(sokuji.CodeNoEditableTrack)
		}
		arg = strings.TrimSpace(arg)
		idx, nick, numbered := len(s.Races)-1, arg, false
		if parts := strings.SplitN(arg, " ", 2); len(parts) == 2 {
			if n, err := strconv.Atoi(parts[0]); err == nil && n >= 1 && n <= len(s.Races) {
				idx, nick, numbered = n-1, strings.TrimSpace(parts[1]), true
			}
		}
		trackID, err := b.searchTrack(ctx, req, nick)
		if err != nil {
			return err
		}
		if err := s.SetTrack(idx, trackID); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		text := i18n.Sprintf(s.IsJa, "edited_latest_track")
		if numbered {
			text = i18n.Sprintf(s.IsJa, "edited_race_track", idx+1)
		}
		if err := b.replyText(ctx, req, text); err != nil {
			return err
		}
		return b.save(ctx, s, false, true)
	})
}

func isRankChar(r rune) bool {
	return r == '+' || r == '-' || r == '＋' || r == 'ー' ||
		(r >= '0' && r <= '9') || (r >= '０' && r <= '９')
}

// invalidRankChars lists the distinct characters of args that cannot be
// rank input.
func invalidRankChars(args []string) []string {
	var bad []string
	for _, a := range args {
		if a == "?" {
			continue
		}
		for _, r := range a {
			if !isRankChar(r) && !slices.Contains(bad, string(r)) {
				bad = append(bad, string(r))
			}
		}
	}
	return bad
}

// EditRanksText is the %race command: "[n] ranks..." re-sets the ranks of
// race n, or of the latest race. "?" keeps a team's ranks.
func (b *Bot) EditRanksText(ctx context.Context, req Request, arg string) error {
	args := strings.Fields(arg)
	var n *int
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v < 100 {
			n = &v
			args = args[1:]
		}
	}
	check := func() error {
		if bad := invalidRankChars(args); len(bad) > 0 {
			return sokuji.NewError(sokuji.CodeInvalidCharacters, strings.Join(bad, " "))
		}
		return nil
	}
	ranks := make([]*string, len(args))
	for i, a := range args {
		if a != "?" {
			ranks[i] = &args[i]
		}
	}
	return b.checked(ctx, "race", req, check, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		idx, edited, err := b.applyEdit(ctx, req, s, EditInput{N: n, Ranks: ranks})
		if err != nil {
			return err
		}
		msg := render.Message{Content: i18n.Sprintf(s.IsJa, "edited_race_ranks", idx+1)}
		if s.Format != 6 && edited {
			msg.Embeds = render.RaceBoard(s, idx, false, b.color(ctx, s.GuildID)).Embeds
		}
		if _, err := b.reply(ctx, req, msg); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		return b.save(ctx, s, false, true)
	})
}
