package sokuji

import (
	"regexp"
	"slices"
)

// Points awarded per finishing position.
var Points = [12]int{15, 12, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// TotalPoints is the sum of Points, the score handed out by every race.
const TotalPoints = 82

// Unassigned marks a rank slot no team occupies yet.
const Unassigned = -1

var rankSeparator = regexp.MustCompile(`[\s\p{Zs}]+`)

// Snapshot is the memoized result of Validate.
type Snapshot struct {
	Order  [12]int
	Scores []int
	Ranks  []int
}

// Race assigns each of the 12 finishing positions to a team.
type Race struct {
	Format  int
	TrackID *int

	order    [12]int
	snapshot *Snapshot
}

// NewRace returns an empty race for the given format.
func NewRace(format int, trackID *int) *Race {
	r := &Race{Format: format, TrackID: trackID}
	for i := range r.order {
		r.order[i] = Unassigned
	}
	return r
}

// restoreRace rebuilds a race from a raw order. Validated orders come back
// with their snapshot recomputed, so reads never depend on a stale cache.
func restoreRace(format int, trackID *int, order []int, validated bool) *Race {
	r := NewRace(format, trackID)
	for i := 0; i < len(order) && i < 12; i++ {
		r.order[i] = order[i]
	}
	if validated {
		r.Validate()
	}
	return r
}

// TeamNum is the number of teams in the race.
func (r *Race) TeamNum() int { return 12 / r.Format }

// Order returns a copy of the slot assignment.
func (r *Race) Order() [12]int {
	if r.snapshot != nil {
		return r.snapshot.Order
	}
	return r.order
}

// Validated reports whether the race has a memoized snapshot.
func (r *Race) Validated() bool { return r.snapshot != nil }

func (r *Race) occupies(team int) bool {
	return slices.Contains(r.order[:], team)
}

// Filled reports for each team whether it holds at least one slot.
func (r *Race) Filled() []bool {
	filled := make([]bool, r.TeamNum())
	for _, t := range r.order {
		if t >= 0 && t < len(filled) {
			filled[t] = true
		}
	}
	return filled
}

// ClearTeam frees every slot held by team.
func (r *Race) ClearTeam(team int) {
	r.snapshot = nil
	for i, t := range r.order {
		if t == team {
			r.order[i] = Unassigned
		}
	}
}

// Set assigns parsed ranks to teams. ranks[i] is team i's rank text; nil
// leaves the team untouched. Teams that parse fewer than Format ranks take
// the last free slots. With overwrite, the listed teams lose their previous
// slots first and collisions are only checked against this call's writes.
//
// Set reports whether the race is complete: at least TeamNum-1 teams are
// filled, or overwrite was requested. A complete race is validated.
func (r *Race) Set(ranks []*string, overwrite bool) bool {
	r.snapshot = nil
	teamNum := r.TeamNum()
	if overwrite {
		for i := 0; i < teamNum && i < len(ranks); i++ {
			if ranks[i] != nil {
				for s, t := range r.order {
					if t == i {
						r.order[s] = Unassigned
					}
				}
			}
		}
	}

	var written [12]bool
	isWritten := func(s int) bool {
		if overwrite {
			return written[s]
		}
		return r.order[s] != Unassigned
	}
	lastFree := func() int {
		for s := 11; s >= 0; s-- {
			if !isWritten(s) {
				return s
			}
		}
		return -1
	}

	filled := 0
	for i := 0; i < teamNum; i++ {
		if i >= len(ranks) || ranks[i] == nil {
			if r.occupies(i) {
				filled++
			}
			continue
		}
		count := 0
		for _, n := range ParseRanks(*ranks[i]) {
			s := n - 1
			if s < 0 || s > 11 || isWritten(s) {
				continue
			}
			written[s] = true
			r.order[s] = i
			count++
			if count == r.Format {
				break
			}
		}
		for count < r.Format {
			s := lastFree()
			if s < 0 {
				break
			}
			written[s] = true
			r.order[s] = i
			count++
		}
		filled++
	}

	if filled >= teamNum-1 || overwrite {
		r.Validate()
		return true
	}
	return false
}

// Add appends whitespace-separated rank text for the next unfilled teams.
// The next team is the one after the highest team holding a slot.
func (r *Race) Add(text string) bool {
	next := 0
	for _, t := range r.order {
		if t+1 > next {
			next = t + 1
		}
	}
	ranks := make([]*string, next)
	for _, part := range rankSeparator.Split(text, -1) {
		ranks = append(ranks, &part)
	}
	return r.Set(ranks, false)
}

// Validate finalizes the order: surplus slots of a team are released, slots
// holding no valid team are cleared, and every team short of Format slots
// takes the last free ones. The result is memoized until the next Set.
func (r *Race) Validate() {
	if r.snapshot != nil {
		return
	}
	teamNum := r.TeamNum()
	counts := make([]int, teamNum)
	var order [12]int
	for s, t := range r.order {
		if t < 0 || t >= teamNum || counts[t] == r.Format {
			order[s] = Unassigned
			continue
		}
		counts[t]++
		order[s] = t
	}
	for t := 0; t < teamNum; t++ {
		for counts[t] < r.Format {
			s := -1
			for i := 11; i >= 0; i-- {
				if order[i] == Unassigned {
					s = i
					break
				}
			}
			if s < 0 {
				break
			}
			order[s] = t
			counts[t]++
		}
	}
	r.order = order
	r.snapshot = &Snapshot{
		Order:  order,
		Scores: scoresOf(order, teamNum),
		Ranks:  ranksOf(order, 0),
	}
}

// Scores returns the points per team.
func (r *Race) Scores() []int {
	if r.snapshot != nil {
		return slices.Clone(r.snapshot.Scores)
	}
	return scoresOf(r.order, r.TeamNum())
}

// Ranks returns team 0's 1-based finishing positions.
func (r *Race) Ranks() []int {
	if r.snapshot != nil {
		return slices.Clone(r.snapshot.Ranks)
	}
	return ranksOf(r.order, 0)
}

// RanksOf returns a team's 1-based finishing positions.
func (r *Race) RanksOf(team int) []int {
	return ranksOf(r.Order(), team)
}

func scoresOf(order [12]int, teamNum int) []int {
	scores := make([]int, teamNum)
	for s, t := range order {
		if t >= 0 && t < teamNum {
			scores[t] += Points[s]
		}
	}
	return scores
}

func ranksOf(order [12]int, team int) []int {
	ranks := []int{}
	for s, t := range order {
		if t == team {
			ranks = append(ranks, s+1)
		}
	}
	return ranks
}
