// Package discord connects the sokuji bot to Discord: the /sokuji slash
// commands, the buttons, selects and modals of boards and config panels,
// and plain text messages in guild channels.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/render"
)

// Session is the REST surface of *discordgo.Session the bot uses.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// KV remembers the last registered command set.
type KV interface {
	GetKV(ctx context.Context, key string) (string, bool, error)
	SetKV(ctx context.Context, key, value string) error
}

// NewSession creates a gateway session with the intents text scoring needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	return s, nil
}

// MessageTime reads the creation time from a message snowflake. It returns
// the zero time for ids that are not snowflakes.
func MessageTime(id string) time.Time {
	if id == "" {
		return time.Time{}
	}
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Messenger edits and deletes channel messages. It implements bot.Messenger.
type Messenger struct {
	Session Session
}

func (m Messenger) Edit(_ context.Context, channelID, messageID string, msg render.Message) error {
	_, err := m.Session.ChannelMessageEditComplex(toMessageEdit(channelID, messageID, msg))
	return err
}

func (m Messenger) Delete(_ context.Context, channelID, messageID string) error {
	return m.Session.ChannelMessageDelete(channelID, messageID)
}

// Options configures a Bot.
type Options struct {
	// GuildID scopes command registration; empty registers globally.
	GuildID          string
	RegisterCommands bool
	UndoTimeout      time.Duration
	// HandlerTimeout bounds one event.
	HandlerTimeout time.Duration
	KV             KV
}

// Bot routes Discord events into a bot.Bot.
type Bot struct {
	session  Session
	core     *bot.Bot
	opts     Options
	confirms *confirmations
	ctx      context.Context
}

// New returns a Bot replying through s. core should use Messenger{s} and
// MessageTime.
func New(s Session, core *bot.Bot, opts Options) *Bot {
	if opts.UndoTimeout <= 0 {
		opts.UndoTimeout = 10 * time.Second
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 30 * time.Second
	}
	return &Bot{
		session:  s,
		core:     core,
		opts:     opts,
		confirms: newConfirmations(),
		ctx:      context.Background(),
	}
}

// Run attaches the handlers, opens the gateway and blocks until ctx is
// canceled.
func (b *Bot) Run(ctx context.Context, dg *discordgo.Session) error {
	b.ctx = ctx
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteraction)
	dg.AddHandler(b.onMessage)
	if err := dg.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	slog.Info("discord gateway connected", slog.String("component", "discord"))
	<-ctx.Done()
	b.confirms.stopAll()
	if err := dg.Close(); err != nil {
		slog.Warn("discord close", slog.String("component", "discord"), slog.Any("err", err))
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord ready", slog.String("component", "discord"), slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	if !b.opts.RegisterCommands {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.opts.HandlerTimeout)
	defer cancel()
	if err := b.RegisterCommands(ctx, r.User.ID); err != nil {
		slog.Error("register commands", slog.String("component", "discord"), slog.Any("err", err))
	}
}

// eventContext derives the per-event context.
func (b *Bot) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, b.opts.HandlerTimeout)
}
