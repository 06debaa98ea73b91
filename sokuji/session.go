package sokuji

import (
	"maps"
	"slices"
)

// Mode selects the board layout.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeCompact Mode = "compact"
)

// ParseMode returns the mode named s, defaulting to classic.
func ParseMode(s string) Mode {
	if Mode(s) == ModeCompact {
		return ModeCompact
	}
	return ModeClassic
}

// Config holds the per-channel display preferences. They outlive sessions.
type Config struct {
	IsJa      bool `json:"isJa"`
	ShowText  bool `json:"showText"`
	ShowImage bool `json:"showImage"`
	Mode      Mode `json:"mode"`
}

// Other is an ad-hoc adjustment (repick, penalty, bonus).
type Other struct {
	Reason string `json:"reason"`
	Scores []int  `json:"scores"`
}

// Entry is one line of the session history: a race (N > 0) or an adjustment.
type Entry struct {
	N       int
	TrackID *int
	Scores  []int
	Ranks   []int
	Reason  string
}

// IsRace reports whether the entry is a race.
func (e Entry) IsRace() bool { return e.N > 0 }

// Session is one live scoring run on a channel. Callers hold the channel
// lock for the whole load, mutate, save sequence.
type Session struct {
	ID        string
	GuildID   string
	ChannelID string

	// Message bookkeeping for the displayed board and config panel.
	PrevMessageID    string
	ConfigMessageID  string
	PendingMessageID string

	Format  int
	Tags    []string
	Colors  []int
	Scores  []int
	RaceNum int
	Races   []*Race
	Pending *Race
	Others  map[int][]Other
	IsEnded bool

	Config
}

// TeamNum is the number of teams.
func (s *Session) TeamNum() int { return len(s.Tags) }

// Remaining is the number of races still to be run.
func (s *Session) Remaining() int { return s.RaceNum - len(s.Races) }

// Done reports whether every planned race has been recorded.
func (s *Session) Done() bool { return len(s.Races) >= s.RaceNum }

// CheckOpen rejects changes to an ended session. Resume reopens it.
func (s *Session) CheckOpen() error {
	if s.IsEnded {
		return NewError(CodeSessionEnded)
	}
	return nil
}

// StartNextRace opens a pending race seeded with trackID.
func (s *Session) StartNextRace(trackID *int) *Race {
	s.Pending = NewRace(s.Format, trackID)
	s.PendingMessageID = ""
	return s.Pending
}

// PushPendingRace records the pending race and adds its scores.
func (s *Session) PushPendingRace() {
	if s.Pending == nil {
		return
	}
	s.Pending.Validate()
	s.Races = append(s.Races, s.Pending)
	s.addScores(s.Pending.Scores(), 1)
	s.Pending = nil
	s.PendingMessageID = ""
}

// DiscardPending drops the pending race.
func (s *Session) DiscardPending() {
	s.Pending = nil
	s.PendingMessageID = ""
}

// UndoPending strips the last filled team from the pending race. When that
// team is the first one, the whole pending race is discarded and true is
// returned.
func (s *Session) UndoPending() bool {
	if s.Pending == nil {
		return false
	}
	last := -1
	for i, f := range s.Pending.Filled() {
		if f {
			last = i
		}
	}
	if last <= 0 {
		s.DiscardPending()
		return true
	}
	s.Pending.ClearTeam(last)
	return false
}

// UndoLast removes the most recent race or adjustment and subtracts its scores.
func (s *Session) UndoLast() error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	entries := s.Entries()
	if len(entries) == 0 {
		return NewError(CodeEmptySession)
	}
	last := entries[len(entries)-1]
	s.addScores(last.Scores, -1)
	if last.IsRace() {
		s.Races = s.Races[:len(s.Races)-1]
		return nil
	}
	key := s.lastOtherKey()
	s.Others[key] = s.Others[key][:len(s.Others[key])-1]
	if len(s.Others[key]) == 0 {
		delete(s.Others, key)
	}
	return nil
}

func (s *Session) lastOtherKey() int {
	key := -1
	for k, v := range s.Others {
		if len(v) > 0 && k > key {
			key = k
		}
	}
	return key
}

// AddOther applies score to the teams whose tag is in tags, or to team 0
// when tags is empty, and records the adjustment after the current race.
func (s *Session) AddOther(reason string, score int, tags []string) (Other, error) {
	if err := s.CheckOpen(); err != nil {
		return Other{}, err
	}
	o := Other{Reason: reason, Scores: make([]int, s.TeamNum())}
	for i, tag := range s.Tags {
		if (len(tags) == 0 && i == 0) || slices.Contains(tags, tag) {
			o.Scores[i] = score
		}
	}
	s.addScores(o.Scores, 1)
	if s.Others == nil {
		s.Others = make(map[int][]Other)
	}
	n := len(s.Races)
	s.Others[n] = append(s.Others[n], o)
	return o, nil
}

// RaceIndex resolves a user-facing race number. nil and 0 address the last
// race, positive numbers are 1-based and negative numbers count from the end.
func (s *Session) RaceIndex(n *int) (int, error) {
	idx := len(s.Races) - 1
	if n != nil {
		if *n <= -100 || *n >= 100 {
			return 0, NewError(CodeRaceNotFound, *n)
		}
		idx = *n - 1
		if *n < 0 {
			idx = *n
		}
		if idx < 0 {
			idx += len(s.Races)
		}
	}
	if idx < 0 || idx >= len(s.Races) {
		if n != nil {
			return 0, NewError(CodeRaceNotFound, *n)
		}
		return 0, NewError(CodeTargetRaceNotFound)
	}
	return idx, nil
}

// EditRace re-sets the ranks of a recorded race with overwrite semantics and
// moves the score difference into the totals. A nil ranks slice leaves the
// ranks alone. The track is replaced when editTrack is set.
func (s *Session) EditRace(index int, ranks []*string, trackID *int, editTrack bool) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Races) {
		return NewError(CodeRaceNotFound, index+1)
	}
	race := s.Races[index]
	if editTrack {
		race.TrackID = trackID
	}
	if ranks == nil {
		return nil
	}
	s.addScores(race.Scores(), -1)
	race.Set(ranks, true)
	race.Validate()
	s.addScores(race.Scores(), 1)
	return nil
}

// SetTrack replaces the track of a recorded race.
func (s *Session) SetTrack(index int, trackID *int) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Races) {
		return NewError(CodeRaceNotFound, index+1)
	}
	s.Races[index].TrackID = trackID
	return nil
}

// SetTags replaces the team labels. The count must match the team count.
func (s *Session) SetTags(tags []string) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	if len(tags) != s.TeamNum() {
		return NewError(CodeTagCountMismatch)
	}
	s.Tags = slices.Clone(tags)
	return nil
}

// SetRaceNum changes the planned race count.
func (s *Session) SetRaceNum(n int) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	switch {
	case n < 1:
		return NewError(CodeRaceNumTooSmall)
	case n >= 100:
		return NewError(CodeRaceNumTooLarge)
	case n < len(s.Races):
		return NewError(CodeRaceNumBelowRecorded, len(s.Races))
	}
	s.RaceNum = n
	return nil
}

// End closes the session. The pending race is dropped.
func (s *Session) End() error {
	if s.IsEnded {
		return NewError(CodeAlreadyEnded)
	}
	s.IsEnded = true
	s.DiscardPending()
	return nil
}

// Resume reopens an ended session.
func (s *Session) Resume() {
	s.IsEnded = false
}

// Entries lists races and adjustments chronologically. Adjustments recorded
// after k races come right after race k.
func (s *Session) Entries() []Entry {
	entries := make([]Entry, 0, len(s.Races)+len(s.Others))
	for i, r := range s.Races {
		entries = append(entries, Entry{N: i + 1, TrackID: r.TrackID, Scores: r.Scores(), Ranks: r.Ranks()})
	}
	keys := slices.Sorted(maps.Keys(s.Others))
	slices.Reverse(keys)
	for _, k := range keys {
		at := min(max(k, 0), len(entries))
		others := make([]Entry, 0, len(s.Others[k]))
		for _, o := range s.Others[k] {
			others = append(others, Entry{Reason: o.Reason, Scores: slices.Clone(o.Scores)})
		}
		entries = slices.Insert(entries, at, others...)
	}
	return entries
}

// Recount sums every race and adjustment per team. It always equals Scores.
func (s *Session) Recount() []int {
	totals := make([]int, s.TeamNum())
	for _, e := range s.Entries() {
		for i := 0; i < len(totals) && i < len(e.Scores); i++ {
			totals[i] += e.Scores[i]
		}
	}
	return totals
}

func (s *Session) addScores(delta []int, sign int) {
	for i := 0; i < len(s.Scores) && i < len(delta); i++ {
		s.Scores[i] += sign * delta[i]
	}
}
