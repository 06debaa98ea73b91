package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/tracks"
)

type latestTrack struct {
	id int
	at time.Time
}

// MemoryStore is an in-memory sokuji.SessionStore, sokuji.GuildDirectory and
// tracks.Store. Records are copied through JSON on the way in and out, as a
// database would.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string][]byte
	channels  map[string]string
	configs   map[string]sokuji.Config
	widgets   map[string]string
	latest    map[string]latestTrack
	overrides map[string]tracks.Overrides
	guilds    map[string]sokuji.GuildProfile

	// Puts counts PutSession calls.
	Puts int
	// Err, when set, is returned by every call.
	Err error
}

var (
	_ sokuji.SessionStore   = (*MemoryStore)(nil)
	_ sokuji.GuildDirectory = (*MemoryStore)(nil)
	_ tracks.Store          = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  map[string][]byte{},
		channels:  map[string]string{},
		configs:   map[string]sokuji.Config{},
		widgets:   map[string]string{},
		latest:    map[string]latestTrack{},
		overrides: map[string]tracks.Overrides{},
		guilds:    map[string]sokuji.GuildProfile{},
	}
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (sokuji.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return sokuji.Record{}, m.Err
	}
	raw, ok := m.sessions[id]
	if !ok {
		return sokuji.Record{}, sokuji.ErrNotFound
	}
	var rec sokuji.Record
	err := json.Unmarshal(raw, &rec)
	return rec, err
}

func (m *MemoryStore) CurrentSessionID(_ context.Context, channelID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	id, ok := m.channels[channelID]
	if !ok {
		return "", sokuji.ErrNotFound
	}
	return id, nil
}

func (m *MemoryStore) PutSession(_ context.Context, rec sokuji.Record, updateChannel bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.sessions[rec.ID] = raw
	if updateChannel {
		m.channels[rec.ChannelID] = rec.ID
	}
	m.Puts++
	return nil
}

func (m *MemoryStore) GetConfig(_ context.Context, channelID string) (sokuji.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return sokuji.Config{}, m.Err
	}
	cfg, ok := m.configs[channelID]
	if !ok {
		return sokuji.Config{}, sokuji.ErrNotFound
	}
	return cfg, nil
}

func (m *MemoryStore) PutConfig(_ context.Context, channelID string, cfg sokuji.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.configs[channelID] = cfg
	return nil
}

func (m *MemoryStore) PutWidgetChannel(_ context.Context, userID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.widgets[userID] = channelID
	return nil
}

func (m *MemoryStore) WidgetChannel(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	ch, ok := m.widgets[userID]
	if !ok {
		return "", sokuji.ErrNotFound
	}
	return ch, nil
}

func (m *MemoryStore) LatestTrack(_ context.Context, channelID string) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, time.Time{}, m.Err
	}
	l, ok := m.latest[channelID]
	if !ok {
		return 0, time.Time{}, tracks.ErrNotFound
	}
	return l.id, l.at, nil
}

func (m *MemoryStore) PutLatestTrack(_ context.Context, channelID string, trackID int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.latest[channelID] = latestTrack{id: trackID, at: at}
	return nil
}

func (m *MemoryStore) Overrides(_ context.Context, scope tracks.Scope, ownerID string) (tracks.Overrides, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return tracks.Overrides{}, m.Err
	}
	o, ok := m.overrides[string(scope)+":"+ownerID]
	if !ok {
		return tracks.Overrides{}, tracks.ErrNotFound
	}
	return o, nil
}

func (m *MemoryStore) PutOverrides(_ context.Context, scope tracks.Scope, ownerID string, o tracks.Overrides) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.overrides[string(scope)+":"+ownerID] = o
	return nil
}

func (m *MemoryStore) GuildProfile(_ context.Context, guildID string) (*sokuji.GuildProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.guilds[guildID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// PutGuildProfile seeds a guild profile.
func (m *MemoryStore) PutGuildProfile(_ context.Context, guildID string, p sokuji.GuildProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guilds[guildID] = p
	return nil
}
