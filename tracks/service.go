package tracks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrNotFound is returned by a Store when nothing is stored under the key.
var ErrNotFound = errors.New("tracks: not found")

// Scope selects whose nick overrides apply.
type Scope string

const (
	ScopeGuild Scope = "guild"
	ScopeUser  Scope = "user"
)

// Overrides customise track search for a guild or a user. Ignores silence
// nicks that would otherwise match; Additionals add nicks of their own.
type Overrides struct {
	Ignores     []string       `json:"ignores"`
	Additionals map[string]int `json:"additionals"`
}

// lookup reports whether the overrides decide nick. A decided nick with
// ok=false is ignored.
func (o Overrides) lookup(key string) (id int, ok, decided bool) {
	if id, found := o.Additionals[key]; found {
		return id, true, true
	}
	for _, ig := range o.Ignores {
		if Normalize(ig) == key {
			return 0, false, true
		}
	}
	return 0, false, false
}

// Store persists overrides and the latest track per channel.
type Store interface {
	LatestTrack(ctx context.Context, channelID string) (trackID int, at time.Time, err error)
	PutLatestTrack(ctx context.Context, channelID string, trackID int, at time.Time) error
	Overrides(ctx context.Context, scope Scope, ownerID string) (Overrides, error)
	PutOverrides(ctx context.Context, scope Scope, ownerID string, o Overrides) error
}

// Service resolves nicks to tracks with overrides applied.
type Service struct {
	Store Store
}

// Search resolves nick for a message by userID in guildID. User overrides win
// over guild overrides, which win over the built-in catalog.
func (s *Service) Search(ctx context.Context, guildID, userID, nick string) (Track, bool, error) {
	key := Normalize(strings.TrimSpace(nick))
	if key == "" {
		return Track{}, false, nil
	}
	for _, o := range []struct {
		scope Scope
		owner string
	}{{ScopeUser, userID}, {ScopeGuild, guildID}} {
		if o.owner == "" || s.Store == nil {
			continue
		}
		ov, err := s.Store.Overrides(ctx, o.scope, o.owner)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Track{}, false, fmt.Errorf("load %s overrides: %w", o.scope, err)
		}
		if id, ok, decided := ov.lookup(key); decided {
			if !ok {
				return Track{}, false, nil
			}
			t, found := ByID(id)
			return t, found, nil
		}
	}
	t, ok := Search(nick)
	return t, ok, nil
}

// Remember records trackID as the channel's latest track. Failures are logged
// and swallowed; a lost latest track only costs the user a retype.
func (s *Service) Remember(ctx context.Context, channelID string, trackID int, at time.Time) {
	if s.Store == nil {
		return
	}
	if err := s.Store.PutLatestTrack(ctx, channelID, trackID, at); err != nil {
		slog.Warn("failed to store latest track", slog.String("channel", channelID), slog.Any("err", err))
	}
}

// Latest returns the channel's latest track if it was seen after the given
// time, which callers set to the moment the previous board was posted.
func (s *Service) Latest(ctx context.Context, channelID string, after time.Time) *int {
	if s.Store == nil {
		return nil
	}
	id, at, err := s.Store.LatestTrack(ctx, channelID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("failed to load latest track", slog.String("channel", channelID), slog.Any("err", err))
		}
		return nil
	}
	if !at.After(after) {
		return nil
	}
	if _, ok := ByID(id); !ok {
		return nil
	}
	return &id
}

// SetNick adds or (with trackID nil) ignores nick in the owner's overrides.
func (s *Service) SetNick(ctx context.Context, scope Scope, ownerID, nick string, trackID *int) error {
	key := Normalize(nick)
	if key == "" {
		return fmt.Errorf("empty nick")
	}
	if trackID != nil {
		if _, ok := ByID(*trackID); !ok {
			return fmt.Errorf("unknown track id %d", *trackID)
		}
	}
	ov, err := s.Store.Overrides(ctx, scope, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("load %s overrides: %w", scope, err)
	}
	ov = ov.without(key)
	if trackID != nil {
		if ov.Additionals == nil {
			ov.Additionals = make(map[string]int)
		}
		ov.Additionals[key] = *trackID
	} else {
		ov.Ignores = append(ov.Ignores, key)
	}
	return s.Store.PutOverrides(ctx, scope, ownerID, ov)
}

// ClearNick removes nick from the owner's overrides, restoring the default.
func (s *Service) ClearNick(ctx context.Context, scope Scope, ownerID, nick string) error {
	ov, err := s.Store.Overrides(ctx, scope, ownerID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s overrides: %w", scope, err)
	}
	return s.Store.PutOverrides(ctx, scope, ownerID, ov.without(Normalize(nick)))
}

func (o Overrides) without(key string) Overrides {
	out := Overrides{}
	for nick, id := range o.Additionals {
		if Normalize(nick) == key {
			continue
		}
		if out.Additionals == nil {
			out.Additionals = make(map[string]int)
		}
		out.Additionals[nick] = id
	}
	for _, ig := range o.Ignores {
		if Normalize(ig) != key {
			out.Ignores = append(out.Ignores, ig)
		}
	}
	return out
}
