package sokuji

import (
	"fmt"
	"maps"
	"slices"
)

// RaceRecord is a completed race as persisted. Order, Scores and Ranks are
// the validated snapshot.
type RaceRecord struct {
	TrackID *int  `json:"trackId"`
	Order   []int `json:"order"`
	Scores  []int `json:"scores"`
	Ranks   []int `json:"ranks"`
}

// PendingRaceRecord is a race under construction. Unassigned slots are -1.
type PendingRaceRecord struct {
	MessageID string `json:"messageId"`
	TrackID   *int   `json:"trackId"`
	Order     []int  `json:"order"`
}

// Record is the flat persisted shape of a session. Display preferences are
// stored separately per channel.
type Record struct {
	ID              string             `json:"id"`
	GuildID         string             `json:"guildId,omitempty"`
	ChannelID       string             `json:"channelId"`
	ConfigMessageID string             `json:"configMessageId,omitempty"`
	MessageID       string             `json:"messageId,omitempty"`
	Format          int                `json:"format"`
	Tags            []string           `json:"tags"`
	Colors          []int              `json:"colors"`
	Scores          []int              `json:"scores"`
	RaceNum         int                `json:"raceNum"`
	Races           []RaceRecord       `json:"races"`
	PendingRace     *PendingRaceRecord `json:"pendingRace"`
	Others          map[int][]Other    `json:"others"`
	IsEnded         bool               `json:"isEnded"`
}

// FromRecord rebuilds a session from its persisted record. A nil cfg yields
// the default preferences.
func FromRecord(rec Record, cfg *Config) (*Session, error) {
	if !ValidFormat(rec.Format) {
		return nil, fmt.Errorf("session %s: invalid format %d", rec.ID, rec.Format)
	}
	teamNum := 12 / rec.Format
	if len(rec.Tags) != teamNum {
		return nil, fmt.Errorf("session %s: %d tags for %d teams", rec.ID, len(rec.Tags), teamNum)
	}
	scores := slices.Clone(rec.Scores)
	if scores == nil {
		scores = make([]int, teamNum)
	}
	if len(scores) != teamNum {
		return nil, fmt.Errorf("session %s: %d scores for %d teams", rec.ID, len(scores), teamNum)
	}
	colors := slices.Clone(rec.Colors)
	if len(colors) != teamNum {
		colors = teamColors(teamNum, nil)
	}

	s := &Session{
		ID:              rec.ID,
		GuildID:         rec.GuildID,
		ChannelID:       rec.ChannelID,
		PrevMessageID:   rec.MessageID,
		ConfigMessageID: rec.ConfigMessageID,
		Format:          rec.Format,
		Tags:            slices.Clone(rec.Tags),
		Colors:          colors,
		Scores:          scores,
		RaceNum:         rec.RaceNum,
		Races:           make([]*Race, 0, len(rec.Races)),
		Others:          make(map[int][]Other, len(rec.Others)),
		IsEnded:         rec.IsEnded,
		Config:          Config{Mode: ModeClassic},
	}
	if s.RaceNum <= 0 {
		s.RaceNum = DefaultRaceNum
	}
	if cfg != nil {
		s.Config = *cfg
		s.Mode = ParseMode(string(cfg.Mode))
	}
	for _, r := range rec.Races {
		s.Races = append(s.Races, restoreRace(rec.Format, r.TrackID, r.Order, true))
	}
	for k, v := range rec.Others {
		if len(v) == 0 {
			continue
		}
		others := make([]Other, len(v))
		for i, o := range v {
			others[i] = Other{Reason: o.Reason, Scores: slices.Clone(o.Scores)}
		}
		s.Others[k] = others
	}
	if p := rec.PendingRace; p != nil {
		s.Pending = restoreRace(rec.Format, p.TrackID, p.Order, false)
		s.PendingMessageID = p.MessageID
	}
	return s, nil
}

// Record flattens the session for storage. Recorded races are validated
// first. The pending race is kept only when withPending is set.
func (s *Session) Record(withPending bool) Record {
	rec := Record{
		ID:              s.ID,
		GuildID:         s.GuildID,
		ChannelID:       s.ChannelID,
		ConfigMessageID: s.ConfigMessageID,
		MessageID:       s.PrevMessageID,
		Format:          s.Format,
		Tags:            slices.Clone(s.Tags),
		Colors:          slices.Clone(s.Colors),
		Scores:          slices.Clone(s.Scores),
		RaceNum:         s.RaceNum,
		Races:           make([]RaceRecord, 0, len(s.Races)),
		Others:          maps.Clone(s.Others),
		IsEnded:         s.IsEnded,
	}
	if rec.Others == nil {
		rec.Others = map[int][]Other{}
	}
	for _, r := range s.Races {
		r.Validate()
		order := r.Order()
		rec.Races = append(rec.Races, RaceRecord{
			TrackID: r.TrackID,
			Order:   order[:],
			Scores:  r.Scores(),
			Ranks:   r.Ranks(),
		})
	}
	if withPending && s.Pending != nil {
		order := s.Pending.Order()
		rec.PendingRace = &PendingRaceRecord{
			MessageID: s.PendingMessageID,
			TrackID:   s.Pending.TrackID,
			Order:     order[:],
		}
	}
	return rec
}
