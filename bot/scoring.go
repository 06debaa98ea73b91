package bot

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/tracks"
)

var scoreText = regexp.MustCompile(`^([＋ー０-９+\-0-9\s]+|back|undo)$`)

// IsScoreText reports whether a plain message is rank input or an undo word.
func IsScoreText(text string) bool {
	return scoreText.MatchString(strings.TrimSpace(text))
}

// ScoreText feeds a plain chat message into the channel's pending race. It
// reports whether the message was consumed. Messages are ignored when no
// session is open or every race is recorded; "back" and "undo" still work
// on a finished session.
func (b *Bot) ScoreText(ctx context.Context, req Request, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if !scoreText.MatchString(text) {
		return false, nil
	}
	handled := false
	err := b.locked(ctx, "score", req, func(ctx context.Context) error {
		s, err := b.loadIfAny(ctx, req.ChannelID)
		if err != nil || s == nil || s.IsEnded {
			return err
		}
		if text == "back" || text == "undo" {
			return b.undoFromText(ctx, req, s, &handled)
		}
		if s.Done() {
			return nil
		}
		handled = true
		oldPendingID := s.PendingMessageID
		race := s.Pending
		if race == nil {
			race = s.StartNextRace(b.latestTrack(ctx, s.ChannelID, b.messageTime(s.PrevMessageID)))
		}
		if race.Add(text) {
			return b.pushRace(ctx, req, s, oldPendingID)
		}
		return b.showPending(ctx, req, s, oldPendingID)
	})
	return handled, err
}

func (b *Bot) undoFromText(ctx context.Context, req Request, s *sokuji.Session, handled *bool) error {
	if s.Pending != nil {
		*handled = true
		oldPendingID := s.PendingMessageID
		if s.UndoPending() {
			b.remove(ctx, s.ChannelID, oldPendingID)
			return b.save(ctx, s, false, false)
		}
		return b.showPending(ctx, req, s, oldPendingID)
	}
	if err := s.UndoLast(); err != nil {
		return nil
	}
	*handled = true
	return b.repostBoard(ctx, req, s)
}

// RanksForm describes the rank entry form a transport shows.
type RanksForm struct {
	Format int
	// Tags has one rank field per entry.
	Tags     []string
	Required bool
	// WithTrack adds a track field, prefilled with Track.
	WithTrack bool
	Track     string
	// WithRaceNumber adds the optional race number field of edit forms.
	WithRaceNumber bool
}

// Placeholder returns the example input of rank field i.
func (f RanksForm) Placeholder(i int) string {
	switch f.Format {
	case 6:
		return "123456"
	case 2:
		return strconv.Itoa(2*i+1) + strconv.Itoa(2*i+2)
	}
	var sb strings.Builder
	for j := range f.Format {
		sb.WriteString(strconv.Itoa(i*f.Format + j + 1))
	}
	return sb.String()
}

// maxFormFields is the number of inputs a form can hold, race number or
// track included.
const maxFormFields = 5

func addForm(s *sokuji.Session) RanksForm {
	f := RanksForm{Format: s.Format}
	switch s.Format {
	case 6:
		f.Tags = s.Tags[:1]
		f.Required = true
		f.WithTrack = true
	case 2:
		f.Tags = s.Tags[:min(len(s.Tags), maxFormFields)]
		f.Required = true
	default:
		f.Tags = s.Tags
		f.WithTrack = true
	}
	return f
}

// AddForm returns the form behind the board's Add button. req.MessageID is
// the board the button belongs to.
func (b *Bot) AddForm(ctx context.Context, req Request) (RanksForm, error) {
	var form RanksForm
	err := b.observe(ctx, "add_form", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if err := s.CheckOpen(); err != nil {
			return err
		}
		if err := b.checkBoard(ctx, s, req.MessageID); err != nil {
			return err
		}
		form = addForm(s)
		if form.WithTrack {
			form.Track = tracks.Label(b.latestTrack(ctx, s.ChannelID, b.messageTime(req.MessageID)))
		}
		return nil
	})
	return form, err
}

// SubmitRanks applies a submitted Add form. A pending race is overwritten
// team by team; otherwise a new race starts with the form's track, or the
// channel's latest track when the field is empty.
func (b *Bot) SubmitRanks(ctx context.Context, req Request, ranks []*string, track string) error {
	return b.locked(ctx, "add", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if err := s.CheckOpen(); err != nil {
			return err
		}
		if err := b.checkBoard(ctx, s, req.MessageID); err != nil {
			return err
		}
		oldPendingID := s.PendingMessageID
		isPending := s.Pending != nil
		race := s.Pending
		if race == nil {
			if s.Done() {
				return b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "all_races_recorded"))
			}
			race = s.StartNextRace(nil)
		}
		switch {
		case track != "":
			id, err := b.searchTrack(ctx, req, track)
			if err != nil {
				return err
			}
			race.TrackID = id
		case !isPending:
			race.TrackID = b.latestTrack(ctx, s.ChannelID, b.messageTime(s.PrevMessageID))
		}
		if race.Set(ranks, isPending) {
			return b.pushRace(ctx, req, s, oldPendingID)
		}
		return b.showPending(ctx, req, s, oldPendingID)
	})
}

// UndoBoard removes the latest race or adjustment after the user confirmed
// on the board's Undo button. req.MessageID is that board.
func (b *Bot) UndoBoard(ctx context.Context, req Request) error {
	return b.locked(ctx, "undo", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if s.PrevMessageID != req.MessageID {
			return sokuji.NewError(sokuji.CodeOutdatedBoard)
		}
		if err := s.UndoLast(); err != nil {
			return err
		}
		if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "undid_latest")); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		return b.save(ctx, s, false, true)
	})
}

// Back is the %back command: it strips the last team from the pending race,
// or removes the latest race or adjustment.
func (b *Bot) Back(ctx context.Context, req Request) error {
	return b.locked(ctx, "back", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if s.Pending != nil {
			oldPendingID := s.PendingMessageID
			if s.UndoPending() {
				b.remove(ctx, s.ChannelID, oldPendingID)
				if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "deleted_pending_race")); err != nil {
					return err
				}
				return b.save(ctx, s, false, false)
			}
			b.edit(ctx, s.ChannelID, oldPendingID, render.RaceBoard(s, 0, true, b.color(ctx, s.GuildID)))
			if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "undid_pending_team")); err != nil {
				return err
			}
			return b.save(ctx, s, false, true)
		}
		if err := s.UndoLast(); err != nil {
			return err
		}
		if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "undid_latest")); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		return b.save(ctx, s, false, true)
	})
}
