package bot

import (
	"context"
	"strings"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/telemetry"
)

// Adjustment reasons.
const (
	ReasonRepick  = "Repick"
	ReasonPenalty = "Penalty"
	ReasonBonus   = "Bonus"
)

// DefaultRepickScore is applied by a repick without an explicit score.
const DefaultRepickScore = -15

// StartInput configures a new session. Format 0 infers it from the tags.
type StartInput struct {
	Format int
	Tags   []string
}

// Start opens a new session on the channel. An open session is ended first:
// its board loses its buttons and its config panel is deleted.
func (b *Bot) Start(ctx context.Context, req Request, in StartInput) error {
	check := func() error {
		if in.Format != 0 && !sokuji.ValidFormat(in.Format) {
			return sokuji.NewError(sokuji.CodeInvalidFormat)
		}
		return nil
	}
	return b.checked(ctx, "start", req, check, func(ctx context.Context) error {
		prev, err := b.loadIfAny(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		cfg, err := sokuji.LoadConfig(ctx, b.Sessions, req.ChannelID)
		if err != nil {
			return err
		}
		s, err := sokuji.Start(sokuji.StartOptions{
			ID:        b.newID(),
			ChannelID: req.ChannelID,
			GuildID:   req.GuildID,
			Format:    in.Format,
			Tags:      in.Tags,
			Guild:     b.guild(ctx, req.GuildID),
			Config:    cfg,
		})
		if err != nil {
			return err
		}

		if prev != nil && !prev.IsEnded {
			if err := prev.End(); err != nil {
				return err
			}
			b.retireBoard(ctx, prev)
			b.remove(ctx, prev.ChannelID, prev.ConfigMessageID)
			if err := b.save(ctx, prev, false, false); err != nil {
				return err
			}
		}

		if err := b.present(ctx, req, s); err != nil {
			return err
		}
		telemetry.IncSessionsStarted()
		return b.save(ctx, s, true, false)
	})
}

// present posts the config panel and the board and records both ids.
func (b *Bot) present(ctx context.Context, req Request, s *sokuji.Session) error {
	color := b.color(ctx, s.GuildID)
	configID, err := b.reply(ctx, req, render.ConfigPanel(s, color, b.WidgetBaseURL))
	if err != nil {
		return err
	}
	boardID, err := b.reply(ctx, req, render.Board(s, color))
	if err != nil {
		return err
	}
	s.ConfigMessageID = configID
	s.PrevMessageID = boardID
	return nil
}

// End closes the channel's session. The board keeps a Resume button.
func (b *Bot) End(ctx context.Context, req Request) error {
	return b.locked(ctx, "end", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if err := s.End(); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		b.remove(ctx, s.ChannelID, s.ConfigMessageID)
		if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "ended")); err != nil {
			return err
		}
		return b.save(ctx, s, true, false)
	})
}

// Resume reopens session id on the channel. The channel's current session,
// when it is another one, is ended.
func (b *Bot) Resume(ctx context.Context, req Request, id string) error {
	return b.locked(ctx, "resume", req, func(ctx context.Context) error {
		target, err := sokuji.LoadByID(ctx, b.Sessions, id)
		if err != nil {
			return err
		}
		cur, err := b.loadIfAny(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if cur != nil && cur.ID != target.ID {
			if !cur.IsEnded {
				if err := cur.End(); err != nil {
					return err
				}
			}
			b.refreshBoard(ctx, cur)
			b.remove(ctx, cur.ChannelID, cur.ConfigMessageID)
			if err := b.save(ctx, cur, false, false); err != nil {
				return err
			}
		} else if cur != nil {
			b.retireBoard(ctx, cur)
			b.remove(ctx, cur.ChannelID, cur.ConfigMessageID)
		}

		target.Resume()
		if err := b.present(ctx, req, target); err != nil {
			return err
		}
		return b.save(ctx, target, true, true)
	})
}

// Now re-posts the board. The old board loses its buttons.
func (b *Bot) Now(ctx context.Context, req Request) error {
	return b.locked(ctx, "now", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		id, err := b.reply(ctx, req, b.board(ctx, s))
		if err != nil {
			return err
		}
		b.retireBoard(ctx, s)
		s.PrevMessageID = id
		return b.save(ctx, s, false, true)
	})
}

// AddOther records a repick, penalty or bonus for the teams named in tags
// (whitespace separated), or for the first team when tags is empty.
func (b *Bot) AddOther(ctx context.Context, req Request, reason string, score int, tags string) error {
	check := func() error {
		switch {
		case reason == ReasonPenalty && score > 0:
			return sokuji.NewError(sokuji.CodePenaltyPositive)
		case reason == ReasonBonus && score < 0:
			return sokuji.NewError(sokuji.CodeBonusNegative)
		}
		return nil
	}
	return b.checked(ctx, strings.ToLower(reason), req, check, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if _, err := s.AddOther(reason, score, strings.Fields(tags)); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		if err := b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "added_other", reason)); err != nil {
			return err
		}
		return b.save(ctx, s, false, true)
	})
}
