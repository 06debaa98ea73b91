package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/telemetry"
)

const transport = "discord"

func (b *Bot) onMessage(s *discordgo.Session, mc *discordgo.MessageCreate) {
	m := mc.Message
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	ctx, cancel := b.eventContext()
	defer cancel()
	b.HandleMessage(ctx, m)
}

// guildIsJa reports the guild's language for errors raised before a session
// is loaded.
func (b *Bot) guildIsJa(ctx context.Context, guildID string) bool {
	if b.core.Guilds == nil || guildID == "" {
		return false
	}
	g, err := b.core.Guilds.GuildProfile(ctx, guildID)
	if err != nil || g == nil {
		return false
	}
	return g.IsJa
}

// HandleMessage runs a guild text message through the text commands and
// score input.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	ctx = telemetry.EnsureCorrelation(ctx)
	mentions := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions = append(mentions, u.ID)
	}
	req := bot.Request{
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		MessageID: m.ID,
		Mentions:  mentions,
		Reply:     channelReplier{s: b.session, channelID: m.ChannelID},
	}
	if m.Author != nil {
		req.UserID = m.Author.ID
	}

	handled, err := b.core.HandleText(ctx, req, m.Content)
	switch {
	case err != nil:
		telemetry.RecordChatMessage(transport, bot.Classify(err).String())
		isJa := b.guildIsJa(ctx, m.GuildID)
		if !bot.IsUserFacing(err) {
			telemetry.LoggerWithCorr(ctx).Warn("discord message failed",
				slog.String("component", "discord"),
				slog.String("channel_id", m.ChannelID),
				slog.Any("err", err))
		}
		if _, rerr := req.Reply.Reply(ctx, errorMessage(err, isJa, m.ID)); rerr != nil {
			slog.Debug("error reply failed", slog.String("component", "discord"), slog.Any("err", rerr))
		}
	case handled:
		telemetry.RecordChatMessage(transport, "handled")
	default:
		telemetry.RecordChatMessage(transport, "ignored")
	}
}
