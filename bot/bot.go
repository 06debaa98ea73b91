// Package bot holds the platform-neutral sokuji handlers. Every handler
// follows the same sequence: validate input, take the channel lock, load the
// session, check that the user acted on the current board, mutate, present,
// save and publish the new state to the stream widget.
//
// Transports (Discord, Twitch chat) translate their events into a Request
// and call the matching Bot method. They present through the Replier carried
// by the request and the Messenger held by the Bot.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/sokuji-bot/keylock"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/telemetry"
	"github.com/onnwee/sokuji-bot/tracks"
)

// Messenger edits and deletes messages the bot posted earlier.
type Messenger interface {
	Edit(ctx context.Context, channelID, messageID string, msg render.Message) error
	Delete(ctx context.Context, channelID, messageID string) error
}

// Replier answers one inbound request. The first reply is the response to
// the request itself and later ones are follow-ups. Reply returns the id of
// the posted message.
type Replier interface {
	Reply(ctx context.Context, msg render.Message) (string, error)
}

// Publisher receives every saved session.
type Publisher interface {
	Publish(s *sokuji.Session)
}

// Request identifies who acted where.
type Request struct {
	ChannelID string
	GuildID   string
	UserID    string
	// MessageID is the message a button or modal was attached to, or the
	// text message that carried a command.
	MessageID string
	// Mentions lists the users a text command mentioned.
	Mentions []string
	// IsJa is the invoker's language, used before a session is loaded.
	IsJa  bool
	Reply Replier
}

// Bot runs sokuji commands against a session store.
type Bot struct {
	Sessions sokuji.SessionStore
	// Guilds may be nil.
	Guilds    sokuji.GuildDirectory
	Tracks    *tracks.Service
	Locks     *keylock.Locker
	Messenger Messenger
	// Widgets may be nil.
	Widgets Publisher

	DefaultColor  int
	WidgetBaseURL string

	// NewID returns a fresh session id. Defaults to a uuid.
	NewID func() string
	// Clock defaults to time.Now.
	Clock func() time.Time
	// MessageTime returns when a message was posted. Transports whose ids
	// encode a timestamp set it; the zero time accepts any latest track.
	MessageTime func(messageID string) time.Time
}

func (b *Bot) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func (b *Bot) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now()
}

func (b *Bot) messageTime(id string) time.Time {
	if b.MessageTime == nil || id == "" {
		return time.Time{}
	}
	return b.MessageTime(id)
}

// locked runs fn under the channel lock inside a span and records the
// outcome.
func (b *Bot) locked(ctx context.Context, command string, req Request, fn func(ctx context.Context) error) error {
	return b.observe(ctx, command, req, func(ctx context.Context) error {
		return b.Locks.Do(ctx, req.ChannelID, fn)
	})
}

// checked is locked with check run before the channel lock is taken, so
// malformed input is rejected without waiting on the channel.
func (b *Bot) checked(ctx context.Context, command string, req Request, check func() error, fn func(ctx context.Context) error) error {
	return b.observe(ctx, command, req, func(ctx context.Context) error {
		if err := check(); err != nil {
			return err
		}
		return b.Locks.Do(ctx, req.ChannelID, fn)
	})
}

// observe runs fn inside a span and records the outcome without locking.
func (b *Bot) observe(ctx context.Context, command string, req Request, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx = telemetry.EnsureCorrelation(ctx)
	ctx, span := telemetry.StartSpan(ctx, "bot", "sokuji."+command,
		attribute.String("channel_id", req.ChannelID),
		attribute.String("guild_id", req.GuildID))
	err := fn(ctx)
	telemetry.EndSpan(span, err)

	class := Classify(err)
	telemetry.RecordCommand(command, class.String(), time.Since(start))
	if class == ErrorClassUnexpected {
		telemetry.LoggerWithCorr(ctx).Error("sokuji command failed",
			slog.String("component", "bot"),
			slog.String("command", command),
			slog.String("channel_id", req.ChannelID),
			slog.Any("error", err))
	}
	return err
}

func (b *Bot) color(ctx context.Context, guildID string) int {
	if b.Guilds == nil || guildID == "" {
		return b.DefaultColor
	}
	p, err := b.Guilds.GuildProfile(ctx, guildID)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Debug("guild profile lookup failed", slog.String("guild_id", guildID), slog.Any("error", err))
		return b.DefaultColor
	}
	if p == nil || p.Color == 0 {
		return b.DefaultColor
	}
	return p.Color
}

func (b *Bot) guild(ctx context.Context, guildID string) *sokuji.GuildProfile {
	if b.Guilds == nil || guildID == "" {
		return nil
	}
	p, err := b.Guilds.GuildProfile(ctx, guildID)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Warn("guild profile lookup failed", slog.String("guild_id", guildID), slog.Any("error", err))
		return nil
	}
	return p
}

func (b *Bot) save(ctx context.Context, s *sokuji.Session, updateChannel, withPending bool) error {
	if err := sokuji.Save(ctx, b.Sessions, s, updateChannel, withPending); err != nil {
		return err
	}
	if b.Widgets != nil {
		b.Widgets.Publish(s)
	}
	return nil
}
