package chat

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/google/uuid"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/telemetry"
)

const (
	// ChannelPrefix keys Twitch channels apart from other transports.
	ChannelPrefix = "twitch:"

	transport = "twitch"
	// Twitch drops PRIVMSG bodies longer than this.
	maxMessage = 500
)

// Client is the part of the go-twitch-irc client the listener uses.
type Client interface {
	OnPrivateMessage(func(twitch.PrivateMessage))
	OnConnect(func())
	Join(channels ...string)
	Say(channel, text string)
	Reply(channel, parentMsgID, text string)
	Connect() error
	Disconnect() error
}

// Handler consumes chat text. *bot.Bot satisfies it.
type Handler interface {
	HandleText(ctx context.Context, req bot.Request, text string) (bool, error)
}

// Listener relays Twitch chat into a Handler.
type Listener struct {
	Client   Client
	Handler  Handler
	Channels []string
	// Timeout bounds one message's handling. Zero means no limit.
	Timeout time.Duration
}

// NewListener builds a listener over a real IRC client.
func NewListener(username, oauthToken string, channels []string, h Handler) *Listener {
	return &Listener{
		Client:   twitch.NewClient(username, normalizeToken(oauthToken)),
		Handler:  h,
		Channels: channels,
		Timeout:  30 * time.Second,
	}
}

func normalizeToken(tok string) string {
	if tok == "" || strings.HasPrefix(tok, "oauth:") {
		return tok
	}
	return "oauth:" + tok
}

// ChannelKey returns the session key of a Twitch channel login.
func ChannelKey(login string) string {
	return ChannelPrefix + strings.ToLower(strings.TrimPrefix(login, "#"))
}

// handle runs one chat message through the handler and answers errors in
// chat. It must not block the IRC read loop for long.
func (l *Listener) handle(ctx context.Context, msg twitch.PrivateMessage) {
	if msg.User.Name == "" || strings.TrimSpace(msg.Message) == "" {
		return
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	ctx = telemetry.EnsureCorrelation(ctx)
	req := bot.Request{
		ChannelID: ChannelKey(msg.Channel),
		UserID:    ChannelPrefix + msg.User.ID,
		MessageID: msg.ID,
		Reply:     &replier{client: l.Client, channel: msg.Channel, parentID: msg.ID},
	}
	handled, err := l.Handler.HandleText(ctx, req, msg.Message)
	switch {
	case err != nil:
		telemetry.RecordChatMessage(transport, bot.Classify(err).String())
		l.Client.Reply(msg.Channel, msg.ID, truncate(bot.ErrorText(err, false)))
		if !bot.IsUserFacing(err) {
			telemetry.LoggerWithCorr(ctx).Warn("chat message failed",
				slog.String("component", "chat"),
				slog.String("channel", msg.Channel),
				slog.Any("error", err))
		}
	case handled:
		telemetry.RecordChatMessage(transport, "handled")
	default:
		telemetry.RecordChatMessage(transport, "ignored")
	}
}

// replier answers in the channel the message came from. The first reply
// threads under the triggering message.
type replier struct {
	client   Client
	channel  string
	parentID string
	replied  bool
}

func (r *replier) Reply(_ context.Context, msg render.Message) (string, error) {
	for _, line := range Lines(msg) {
		if !r.replied && r.parentID != "" {
			r.client.Reply(r.channel, r.parentID, line)
		} else {
			r.client.Say(r.channel, line)
		}
		r.replied = true
	}
	// IRC messages have no ids the bot can address later.
	return uuid.NewString(), nil
}

// Messenger is the no-op bot.Messenger for IRC.
type Messenger struct{}

func (Messenger) Edit(context.Context, string, string, render.Message) error { return nil }

func (Messenger) Delete(context.Context, string, string) error { return nil }

var (
	ansiCodes   = regexp.MustCompile("\x1b\\[[0-9;]*m")
	codeFences  = regexp.MustCompile("```[a-z]*\n?")
	blankSpaces = regexp.MustCompile(`[ \t]+`)
)

// Lines flattens a message into chat lines: the content first, then each
// embed as "title | description | name: value ...". Code blocks and colour
// codes are stripped and lines are cut to the IRC length limit.
func Lines(msg render.Message) []string {
	var lines []string
	add := func(s string) {
		s = clean(s)
		if s != "" {
			lines = append(lines, truncate(s))
		}
	}
	add(msg.Content)
	for _, e := range msg.Embeds {
		parts := []string{e.Title, e.Description}
		for _, f := range e.Fields {
			parts = append(parts, f.Name+": "+f.Value)
		}
		var kept []string
		for _, p := range parts {
			if p = clean(p); p != "" && p != ":" {
				kept = append(kept, p)
			}
		}
		add(strings.Join(kept, " | "))
	}
	return lines
}

func clean(s string) string {
	s = ansiCodes.ReplaceAllString(s, "")
	s = codeFences.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(blankSpaces.ReplaceAllString(s, " "))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessage {
		return s
	}
	return string(r[:maxMessage-1]) + "…"
}
