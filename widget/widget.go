// Package widget models the stream overlay: a JSON snapshot of a channel's
// session and a hub that pushes new snapshots to subscribed overlays as
// sessions are saved.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/onnwee/sokuji-bot/sokuji"
	"github.com/onnwee/sokuji-bot/telemetry"
	"github.com/onnwee/sokuji-bot/tracks"
)

// Entry is one race or adjustment as the overlay shows it.
type Entry struct {
	N      int    `json:"n,omitempty"`
	Track  string `json:"track,omitempty"`
	Reason string `json:"reason,omitempty"`
	Scores []int  `json:"scores"`
	Ranks  []int  `json:"ranks,omitempty"`
}

// Snapshot is the overlay's view of a session.
type Snapshot struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Format    int       `json:"format"`
	Tags      []string  `json:"tags"`
	Colors    []string  `json:"colors"`
	Scores    []int     `json:"scores"`
	RaceNum   int       `json:"race_num"`
	Races     int       `json:"races"`
	Entries   []Entry   `json:"entries"`
	IsEnded   bool      `json:"is_ended"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot captures s at the given time.
func NewSnapshot(s *sokuji.Session, at time.Time) Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		ChannelID: s.ChannelID,
		Format:    s.Format,
		Tags:      append([]string(nil), s.Tags...),
		Scores:    append([]int(nil), s.Scores...),
		RaceNum:   s.RaceNum,
		Races:     len(s.Races),
		IsEnded:   s.IsEnded,
		UpdatedAt: at.UTC(),
	}
	for _, c := range s.Colors {
		snap.Colors = append(snap.Colors, fmt.Sprintf("#%06x", c&0xffffff))
	}
	for _, e := range s.Entries() {
		snap.Entries = append(snap.Entries, Entry{
			N:      e.N,
			Track:  tracks.Label(e.TrackID),
			Reason: e.Reason,
			Scores: e.Scores,
			Ranks:  e.Ranks,
		})
	}
	if snap.Entries == nil {
		snap.Entries = []Entry{}
	}
	return snap
}

// ErrNoSession is returned when the channel has never had a session.
var ErrNoSession = errors.New("widget: no session")

// Current loads the channel's current session as a snapshot.
func Current(ctx context.Context, store sokuji.SessionStore, channelID string) (Snapshot, error) {
	s, err := sokuji.LoadCurrent(ctx, store, channelID)
	if code, ok := sokuji.CodeOf(err); ok && code == sokuji.CodeSessionNotFound {
		return Snapshot{}, ErrNoSession
	}
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(s, time.Now()), nil
}

// ChannelFor resolves a user's registered widget channel.
func ChannelFor(ctx context.Context, store sokuji.SessionStore, userID string) (string, error) {
	ch, err := store.WidgetChannel(ctx, userID)
	if errors.Is(err, sokuji.ErrNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("widget channel: %w", err)
	}
	return ch, nil
}

// subscriberBuffer is how many snapshots a slow overlay may lag behind
// before older ones are dropped.
const subscriberBuffer = 4

// Hub fans saved sessions out to overlay subscribers, keyed by channel.
// It implements bot.Publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	now  func() time.Time
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), now: time.Now}
}

// Subscription receives snapshots for one channel.
type Subscription struct {
	C         <-chan Snapshot
	ch        chan Snapshot
	channelID string
	hub       *Hub
	once      sync.Once
}

// Subscribe registers for the channel's snapshots. Close the subscription
// when done.
func (h *Hub) Subscribe(channelID string) *Subscription {
	ch := make(chan Snapshot, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, channelID: channelID, hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channelID] == nil {
		h.subs[channelID] = make(map[*Subscription]struct{})
	}
	h.subs[channelID][sub] = struct{}{}
	telemetry.AddWidgetClients(1)
	return sub
}

// Close unregisters the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs := h.subs[s.channelID]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.subs, s.channelID)
			}
		}
		close(s.ch)
		telemetry.AddWidgetClients(-1)
	})
}

// Publish sends the session's snapshot to every subscriber of its channel.
// A subscriber whose buffer is full loses its oldest snapshot.
func (h *Hub) Publish(s *sokuji.Session) {
	snap := NewSnapshot(s, h.now())
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[s.ChannelID] {
		select {
		case sub.ch <- snap:
			continue
		default:
		}
		// Only Publish sends, under h.mu, so one receive makes room.
		select {
		case <-sub.ch:
			slog.Debug("widget subscriber lagging; dropped snapshot", slog.String("channel_id", s.ChannelID))
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

// Subscribers returns the number of subscribers of a channel.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[channelID])
}
