package sokuji

import (
	"context"
	"errors"
	"fmt"
)

// SessionStore persists sessions, the channel -> current session pointer,
// channel preferences and the widget user -> channel table. Getters return
// ErrNotFound for missing keys.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (Record, error)
	CurrentSessionID(ctx context.Context, channelID string) (string, error)
	// PutSession writes rec and, when updateChannel is set, points the
	// channel at it in the same transaction.
	PutSession(ctx context.Context, rec Record, updateChannel bool) error
	GetConfig(ctx context.Context, channelID string) (Config, error)
	PutConfig(ctx context.Context, channelID string, cfg Config) error
	PutWidgetChannel(ctx context.Context, userID, channelID string) error
	WidgetChannel(ctx context.Context, userID string) (string, error)
}

// GuildDirectory resolves the guild profile used when starting sessions.
type GuildDirectory interface {
	GuildProfile(ctx context.Context, guildID string) (*GuildProfile, error)
}

// LoadConfig returns the channel's stored preferences, or nil when none exist.
func LoadConfig(ctx context.Context, store SessionStore, channelID string) (*Config, error) {
	cfg, err := store.GetConfig(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// LoadCurrent returns the session the channel points at. A missing session
// is reported as CodeSessionNotFound.
func LoadCurrent(ctx context.Context, store SessionStore, channelID string) (*Session, error) {
	id, err := store.CurrentSessionID(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(CodeSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load current session: %w", err)
	}
	s, err := LoadByID(ctx, store, id)
	var e *Error
	if errors.As(err, &e) && e.Code == CodeSessionIDNotFound {
		return nil, NewError(CodeSessionNotFound)
	}
	return s, err
}

// LoadByID returns a session by id, with its channel's preferences applied.
func LoadByID(ctx context.Context, store SessionStore, id string) (*Session, error) {
	rec, err := store.GetSession(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(CodeSessionIDNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	cfg, err := LoadConfig(ctx, store, rec.ChannelID)
	if err != nil {
		return nil, err
	}
	return FromRecord(rec, cfg)
}

// Save persists the session and its channel's preferences.
func Save(ctx context.Context, store SessionStore, s *Session, updateChannel, withPending bool) error {
	if err := store.PutSession(ctx, s.Record(withPending), updateChannel); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	if err := store.PutConfig(ctx, s.ChannelID, s.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
