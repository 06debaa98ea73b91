package bot

import (
	"context"
	"strings"
	"unicode"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
)

// configure runs mutate against the session whose config panel is
// req.MessageID. A panel that is no longer current is deleted and the
// request dropped.
func (b *Bot) configure(ctx context.Context, command string, req Request, mutate func(ctx context.Context, s *sokuji.Session) error) error {
	return b.locked(ctx, command, req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if s.ConfigMessageID != req.MessageID {
			b.remove(ctx, req.ChannelID, req.MessageID)
			return nil
		}
		if err := mutate(ctx, s); err != nil {
			return err
		}
		b.refreshBoard(ctx, s)
		b.edit(ctx, s.ChannelID, s.ConfigMessageID, render.ConfigPanel(s, b.color(ctx, s.GuildID), b.WidgetBaseURL))
		return b.save(ctx, s, true, true)
	})
}

// SetLanguage switches the channel's display language.
func (b *Bot) SetLanguage(ctx context.Context, req Request, isJa bool) error {
	return b.configure(ctx, "config_lang", req, func(_ context.Context, s *sokuji.Session) error {
		s.IsJa = isJa
		return nil
	})
}

// SetShowText toggles the copy/paste text above the board.
func (b *Bot) SetShowText(ctx context.Context, req Request, show bool) error {
	return b.configure(ctx, "config_text", req, func(_ context.Context, s *sokuji.Session) error {
		s.ShowText = show
		return nil
	})
}

// SetShowImage toggles the score image attached to the board.
func (b *Bot) SetShowImage(ctx context.Context, req Request, show bool) error {
	return b.configure(ctx, "config_image", req, func(_ context.Context, s *sokuji.Session) error {
		s.ShowImage = show
		return nil
	})
}

// SetMode switches the board layout.
func (b *Bot) SetMode(ctx context.Context, req Request, mode string) error {
	return b.configure(ctx, "config_mode", req, func(_ context.Context, s *sokuji.Session) error {
		s.Mode = sokuji.ParseMode(mode)
		return nil
	})
}

// PanelForm returns the current tags and race count for the config panel's
// edit forms. ok is false when the panel is stale; it has been deleted.
func (b *Bot) PanelForm(ctx context.Context, req Request) (tags []string, raceNum int, ok bool, err error) {
	err = b.observe(ctx, "config_form", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		if s.ConfigMessageID != req.MessageID {
			b.remove(ctx, req.ChannelID, req.MessageID)
			return nil
		}
		tags, raceNum, ok = s.Tags, s.RaceNum, true
		return nil
	})
	return tags, raceNum, ok, err
}

// ParseTagLines reads one tag per line. Whitespace is removed, tags are cut
// to the maximum length and blank lines are skipped.
func ParseTagLines(text string) []string {
	var tags []string
	for _, line := range strings.Split(text, "\n") {
		tag := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, line)
		if tag = sokuji.TruncateTag(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SetTags applies the Edit Tags form. want is the team count the form was
// opened for.
func (b *Bot) SetTags(ctx context.Context, req Request, text string, want int) error {
	tags := ParseTagLines(text)
	return b.configure(ctx, "config_tags", req, func(ctx context.Context, s *sokuji.Session) error {
		if want > 0 && len(tags) != want {
			return sokuji.NewError(sokuji.CodeTagCountMismatch)
		}
		if err := s.SetTags(tags); err != nil {
			return err
		}
		return b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "tags_edited"))
	})
}

// SetRaceNum applies the Edit Total Races form.
func (b *Bot) SetRaceNum(ctx context.Context, req Request, text string) error {
	return b.configure(ctx, "config_race_num", req, func(ctx context.Context, s *sokuji.Session) error {
		n := ParseRaceNumber(text)
		if n == nil {
			return sokuji.NewError(sokuji.CodeInvalidValue)
		}
		if err := s.SetRaceNum(*n); err != nil {
			return err
		}
		return b.replyText(ctx, req, i18n.Sprintf(s.IsJa, "race_num_edited"))
	})
}

// Hint answers a text command that moved to the config panel, quoting the
// panel. key is one of language_hint, tags_hint and race_num_hint.
func (b *Bot) Hint(ctx context.Context, req Request, key string) error {
	return b.observe(ctx, "hint", req, func(ctx context.Context) error {
		s, err := b.load(ctx, req.ChannelID)
		if err != nil {
			return err
		}
		_, err = b.reply(ctx, req, render.Message{Content: i18n.Sprintf(s.IsJa, key), ReplyTo: s.ConfigMessageID})
		return err
	})
}

// RegisterWidget binds each user's stream widget to the channel and replies
// with their widget URLs. Without userIDs the invoker is registered. From
// the config panel the reply is ephemeral and in the invoker's language.
func (b *Bot) RegisterWidget(ctx context.Context, req Request, userIDs []string, fromPanel bool) error {
	return b.observe(ctx, "widget", req, func(ctx context.Context) error {
		if len(userIDs) == 0 {
			userIDs = []string{req.UserID}
		}
		for _, id := range userIDs {
			if err := b.Sessions.PutWidgetChannel(ctx, id, req.ChannelID); err != nil {
				return err
			}
		}
		isJa := req.IsJa
		if !fromPanel {
			cfg, err := sokuji.LoadConfig(ctx, b.Sessions, req.ChannelID)
			if err != nil {
				return err
			}
			if cfg != nil {
				isJa = cfg.IsJa
			}
		}
		msg := render.WidgetReply(isJa, userIDs, b.color(ctx, req.GuildID), b.WidgetBaseURL)
		msg.Ephemeral = fromPanel
		_, err := b.reply(ctx, req, msg)
		return err
	})
}
