package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onnwee/sokuji-bot/render"
	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/telemetry"
)

// load returns the channel's current session.
func (b *Bot) load(ctx context.Context, channelID string) (*sokuji.Session, error) {
	return sokuji.LoadCurrent(ctx, b.Sessions, channelID)
}

// loadIfAny is load with a missing session reported as nil.
func (b *Bot) loadIfAny(ctx context.Context, channelID string) (*sokuji.Session, error) {
	s, err := b.load(ctx, channelID)
	if errors.Is(err, sokuji.NewError(sokuji.CodeSessionNotFound)) {
		return nil, nil
	}
	return s, err
}

func (b *Bot) reply(ctx context.Context, req Request, msg render.Message) (string, error) {
	id, err := req.Reply.Reply(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}
	return id, nil
}

func (b *Bot) replyText(ctx context.Context, req Request, text string) error {
	_, err := b.reply(ctx, req, render.Message{Content: text})
	return err
}

// edit and remove tolerate failures: the message may already be gone.
func (b *Bot) edit(ctx context.Context, channelID, messageID string, msg render.Message) {
	if messageID == "" {
		return
	}
	if err := b.Messenger.Edit(ctx, channelID, messageID, msg); err != nil {
		telemetry.LoggerWithCorr(ctx).Debug("edit message failed",
			slog.String("channel_id", channelID),
			slog.String("message_id", messageID),
			slog.Any("error", err))
	}
}

func (b *Bot) remove(ctx context.Context, channelID, messageID string) {
	if messageID == "" {
		return
	}
	if err := b.Messenger.Delete(ctx, channelID, messageID); err != nil {
		telemetry.LoggerWithCorr(ctx).Debug("delete message failed",
			slog.String("channel_id", channelID),
			slog.String("message_id", messageID),
			slog.Any("error", err))
	}
}

// removeAsync starts deleting ids and returns a wait func.
func (b *Bot) removeAsync(ctx context.Context, channelID string, ids ...string) func() {
	var g errgroup.Group
	for _, id := range ids {
		if id == "" {
			continue
		}
		g.Go(func() error {
			b.remove(ctx, channelID, id)
			return nil
		})
	}
	return func() { _ = g.Wait() }
}

func (b *Bot) board(ctx context.Context, s *sokuji.Session) render.Message {
	return render.Board(s, b.color(ctx, s.GuildID))
}

// refreshBoard re-renders the current board in place.
func (b *Bot) refreshBoard(ctx context.Context, s *sokuji.Session) {
	b.edit(ctx, s.ChannelID, s.PrevMessageID, b.board(ctx, s))
}

// retireBoard re-renders the current board without its buttons.
func (b *Bot) retireBoard(ctx context.Context, s *sokuji.Session) {
	b.edit(ctx, s.ChannelID, s.PrevMessageID, b.board(ctx, s).WithoutComponents())
}

// checkBoard rejects interactions on a board that is no longer current. The
// current board is refreshed so its buttons are usable again.
func (b *Bot) checkBoard(ctx context.Context, s *sokuji.Session, messageID string) error {
	if s.PrevMessageID == messageID {
		return nil
	}
	b.refreshBoard(ctx, s)
	return sokuji.NewError(sokuji.CodeStaleMessage)
}

// pushRace records the pending race, posts its race board and a fresh
// session board, and retires the pending and previous boards.
func (b *Bot) pushRace(ctx context.Context, req Request, s *sokuji.Session, oldPendingID string) error {
	prevID := s.PrevMessageID
	s.PushPendingRace()
	telemetry.IncRacesRecorded()

	wait := b.removeAsync(ctx, s.ChannelID, oldPendingID, prevID)
	color := b.color(ctx, s.GuildID)
	if s.Format != 6 {
		if _, err := b.reply(ctx, req, render.RaceBoard(s, len(s.Races)-1, false, color)); err != nil {
			wait()
			return err
		}
	}
	id, err := b.reply(ctx, req, render.Board(s, color))
	wait()
	if err != nil {
		return err
	}
	s.PrevMessageID = id
	return b.save(ctx, s, false, false)
}

// showPending posts the pending race board and drops the one it replaces.
func (b *Bot) showPending(ctx context.Context, req Request, s *sokuji.Session, oldPendingID string) error {
	wait := b.removeAsync(ctx, s.ChannelID, oldPendingID)
	id, err := b.reply(ctx, req, render.RaceBoard(s, 0, true, b.color(ctx, s.GuildID)))
	wait()
	if err != nil {
		return err
	}
	s.PendingMessageID = id
	return b.save(ctx, s, false, true)
}

// repostBoard posts a fresh board and deletes the previous one.
func (b *Bot) repostBoard(ctx context.Context, req Request, s *sokuji.Session) error {
	wait := b.removeAsync(ctx, s.ChannelID, s.PrevMessageID)
	id, err := b.reply(ctx, req, b.board(ctx, s))
	wait()
	if err != nil {
		return err
	}
	s.PrevMessageID = id
	return b.save(ctx, s, false, true)
}

func (b *Bot) latestTrack(ctx context.Context, channelID string, after time.Time) *int {
	if b.Tracks == nil {
		return nil
	}
	return b.Tracks.Latest(ctx, channelID, after)
}

// searchTrack resolves a nick for the requesting user. Unknown nicks clear
// the track.
func (b *Bot) searchTrack(ctx context.Context, req Request, nick string) (*int, error) {
	if b.Tracks == nil || nick == "" {
		return nil, nil
	}
	t, ok, err := b.Tracks.Search(ctx, req.GuildID, req.UserID, nick)
	if err != nil {
		return nil, fmt.Errorf("search track: %w", err)
	}
	if !ok {
		return nil, nil
	}
	id := t.ID
	return &id, nil
}
