package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// Backoff bounds the delay between reconnect attempts.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// DefaultBackoff starts at 2s and doubles up to 2m.
var DefaultBackoff = Backoff{Min: 2 * time.Second, Max: 2 * time.Minute}

func (b Backoff) next(cur time.Duration) time.Duration {
	if cur <= 0 {
		return b.Min
	}
	cur *= 2
	if cur > b.Max {
		return b.Max
	}
	return cur
}

// Run joins the configured channels and serves chat until ctx ends. A
// dropped connection is retried with backoff; a connection that stayed up
// for a while resets the delay.
func (l *Listener) Run(ctx context.Context) error {
	return l.run(ctx, DefaultBackoff)
}

func (l *Listener) run(ctx context.Context, backoff Backoff) error {
	if len(l.Channels) == 0 {
		slog.Info("twitch chat: no channels configured; listener disabled")
		return nil
	}
	l.Client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		l.handle(ctx, msg)
	})
	l.Client.OnConnect(func() {
		slog.Info("twitch chat: connected", slog.Any("channels", l.Channels))
	})
	l.Client.Join(l.Channels...)

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			if err := l.Client.Disconnect(); err != nil && !errors.Is(err, twitch.ErrConnectionIsNotOpen) {
				slog.Debug("twitch chat: disconnect", slog.Any("err", err))
			}
		case <-done:
		}
	}()

	var delay time.Duration
	for {
		started := time.Now()
		err := l.Client.Connect()
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > backoff.Max {
			delay = 0
		}
		delay = backoff.next(delay)
		slog.Warn("twitch chat: connection lost; reconnecting",
			slog.Any("err", err),
			slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
