package discord

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/sokuji-bot/bot"
	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/telemetry"
)

type replyState int

const (
	stateFresh replyState = iota
	// stateDeferred has acknowledged with a loading reply that the first
	// Reply replaces.
	stateDeferred
	stateResponded
)

// interactionReplier answers one interaction: the first reply is the
// interaction response, later ones are follow-ups.
type interactionReplier struct {
	s Session
	i *discordgo.Interaction

	mu    sync.Mutex
	state replyState
}

func newInteractionReplier(s Session, i *discordgo.Interaction) *interactionReplier {
	return &interactionReplier{s: s, i: i}
}

func (r *interactionReplier) Reply(_ context.Context, msg render.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case stateFresh:
		err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: toResponseData(msg),
		})
		if err != nil {
			return "", err
		}
		r.state = stateResponded
		m, err := r.s.InteractionResponse(r.i)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	case stateDeferred:
		m, err := r.s.InteractionResponseEdit(r.i, toWebhookEdit(msg))
		if err != nil {
			return "", err
		}
		r.state = stateResponded
		return m.ID, nil
	}
	m, err := r.s.FollowupMessageCreate(r.i, true, toWebhookParams(msg))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// deferReply acknowledges with a loading message the first reply replaces.
func (r *interactionReplier) deferReply(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.respond(stateDeferred, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// deferUpdate acknowledges a component without changing its message.
func (r *interactionReplier) deferUpdate() error {
	return r.respond(stateResponded, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
}

// stripComponents acknowledges a component by removing the buttons of its
// message.
func (r *interactionReplier) stripComponents() error {
	data := &discordgo.InteractionResponseData{Components: []discordgo.MessageComponent{}}
	if m := r.i.Message; m != nil {
		data.Content = m.Content
		data.Embeds = m.Embeds
	}
	return r.respond(stateResponded, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

func (r *interactionReplier) showModal(customID, title string, rows []discordgo.MessageComponent) error {
	return r.respond(stateResponded, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: rows,
		},
	})
}

func (r *interactionReplier) respond(next replyState, resp *discordgo.InteractionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateFresh {
		return nil
	}
	if err := r.s.InteractionRespond(r.i, resp); err != nil {
		return err
	}
	r.state = next
	return nil
}

// finish drops a loading reply nothing replaced.
func (r *interactionReplier) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateDeferred {
		return
	}
	if err := r.s.InteractionResponseDelete(r.i); err != nil {
		slog.Debug("delete deferred reply", slog.String("component", "discord"), slog.Any("err", err))
	}
	r.state = stateResponded
}

// channelReplier posts into a channel, for text commands.
type channelReplier struct {
	s         Session
	channelID string
}

func (r channelReplier) Reply(_ context.Context, msg render.Message) (string, error) {
	m, err := r.s.ChannelMessageSendComplex(r.channelID, toMessageSend(msg))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func errorMessage(err error, isJa bool, replyTo string) render.Message {
	return render.Message{Content: bot.ErrorText(err, isJa), Ephemeral: true, ReplyTo: replyTo}
}

// answerError replies with the localized error text.
func answerError(ctx context.Context, r bot.Replier, err error, isJa bool, replyTo string) {
	if !bot.IsUserFacing(err) {
		telemetry.LoggerWithCorr(ctx).Warn("discord handler failed", slog.String("component", "discord"), slog.Any("err", err))
	}
	if _, rerr := r.Reply(ctx, errorMessage(err, isJa, replyTo)); rerr != nil {
		slog.Debug("error reply failed", slog.String("component", "discord"), slog.Any("err", rerr))
	}
}
