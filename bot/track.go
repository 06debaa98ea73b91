package bot

import (
	"context"
	"strings"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/tracks"
)

// maxTrackMessage bounds the messages tried as track names.
const maxTrackMessage = 40

// TrackMessage answers a plain message that names a track and remembers the
// track as the channel's latest. It reports whether the message matched.
func (b *Bot) TrackMessage(ctx context.Context, req Request, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if b.Tracks == nil || text == "" || len([]rune(text)) > maxTrackMessage {
		return false, nil
	}
	t, ok, err := b.Tracks.Search(ctx, req.GuildID, req.UserID, text)
	if err != nil || !ok {
		return false, err
	}
	err = b.observe(ctx, "track_message", req, func(ctx context.Context) error {
		b.Tracks.Remember(ctx, req.ChannelID, t.ID, b.now())
		_, err := b.reply(ctx, req, render.TrackCard(t, req.IsJa, b.color(ctx, req.GuildID)))
		return err
	})
	return true, err
}

// SetNick is the %nick command: "<nick> <track>" makes nick resolve to the
// catalog track named by the rest of the line for the invoker, and
// "<nick> -" stops nick from resolving at all.
func (b *Bot) SetNick(ctx context.Context, req Request, arg string) error {
	return b.observe(ctx, "nick", req, func(ctx context.Context) error {
		nick, target, _ := strings.Cut(strings.TrimSpace(arg), " ")
		target = strings.TrimSpace(target)
		if nick == "" || target == "" || b.Tracks == nil {
			return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "nick_usage"))
		}
		if target == "-" {
			if err := b.Tracks.SetNick(ctx, tracks.ScopeUser, req.UserID, nick, nil); err != nil {
				return err
			}
			return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "nick_ignored", nick))
		}
		t, ok := tracks.Search(target)
		if !ok {
			return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "track_not_found", target))
		}
		id := t.ID
		if err := b.Tracks.SetNick(ctx, tracks.ScopeUser, req.UserID, nick, &id); err != nil {
			return err
		}
		return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "nick_set", nick, t.Name))
	})
}

// ClearNick is the %unnick command.
func (b *Bot) ClearNick(ctx context.Context, req Request, arg string) error {
	return b.observe(ctx, "unnick", req, func(ctx context.Context) error {
		nick := strings.TrimSpace(arg)
		if nick == "" || b.Tracks == nil {
			return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "nick_usage"))
		}
		if err := b.Tracks.ClearNick(ctx, tracks.ScopeUser, req.UserID, nick); err != nil {
			return err
		}
		return b.replyText(ctx, req, i18n.Sprintf(req.IsJa, "nick_cleared", nick))
	})
}
