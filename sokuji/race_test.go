package sokuji

import (
	"slices"
	"testing"
)

func str(s string) *string { return &s }

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestRaceAddSingleTeamFormat6(t *testing.T) {
	r := NewRace(6, nil)
	if !r.Add("1234") {
		t.Fatal("expected race to complete after one team in format 6")
	}
	if !r.Validated() {
		t.Fatal("complete race should be validated")
	}
	if got, want := r.Ranks(), []int{1, 2, 3, 4, 11, 12}; !slices.Equal(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
	if got, want := r.Scores(), []int{49, 33}; !slices.Equal(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}
	if got, want := r.RanksOf(1), []int{5, 6, 7, 8, 9, 10}; !slices.Equal(got, want) {
		t.Errorf("team 1 ranks = %v, want %v", got, want)
	}
}

func TestRaceFormat2OneTeamAtATime(t *testing.T) {
	r := NewRace(2, nil)
	for i, in := range []string{"1", "3", "5", "7"} {
		if r.Add(in) {
			t.Fatalf("race completed early after input %d", i)
		}
	}
	if !r.Add("9") {
		t.Fatal("race should complete once five of six teams are filled")
	}
	order := r.Order()
	if order[0] != 0 {
		t.Errorf("slot 1 belongs to team %d, want 0", order[0])
	}
	if got, want := r.Ranks(), []int{1, 12}; !slices.Equal(got, want) {
		t.Errorf("team 0 ranks = %v, want %v", got, want)
	}
	want := []int{16, 12, 11, 10, 12, 21}
	if got := r.Scores(); !slices.Equal(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}
	if got := sum(r.Scores()); got != TotalPoints {
		t.Errorf("total = %d, want %d", got, TotalPoints)
	}
}

func TestRaceSetEmptyStringBackFills(t *testing.T) {
	r := NewRace(4, nil)
	if r.Set([]*string{str(""), nil, nil}, false) {
		t.Fatal("one filled team of three should not complete the race")
	}
	if got, want := r.RanksOf(0), []int{9, 10, 11, 12}; !slices.Equal(got, want) {
		t.Errorf("team 0 ranks = %v, want %v", got, want)
	}
	if got, want := r.Filled(), []bool{true, false, false}; !slices.Equal(got, want) {
		t.Errorf("filled = %v, want %v", got, want)
	}
}

func TestRaceValidateIdempotent(t *testing.T) {
	r := NewRace(3, nil)
	r.Set([]*string{str("135"), str("2")}, false)

	r.Validate()
	order1, scores1, ranks1 := r.Order(), r.Scores(), r.Ranks()
	r.Validate()
	order2, scores2, ranks2 := r.Order(), r.Scores(), r.Ranks()

	if order1 != order2 || !slices.Equal(scores1, scores2) || !slices.Equal(ranks1, ranks2) {
		t.Fatalf("second Validate changed the race: %v/%v vs %v/%v", order1, scores1, order2, scores2)
	}
}

func TestRacePointsConserved(t *testing.T) {
	inputs := map[int][]*string{
		2: {str("1"), str("2-4"), nil, str("+")},
		3: {str("12"), str("5")},
		4: {str("-3"), nil, str("12")},
		6: {str("2468")},
	}
	for format, ranks := range inputs {
		r := NewRace(format, nil)
		r.Set(ranks, false)
		r.Validate()
		if got := sum(r.Scores()); got != TotalPoints {
			t.Errorf("format %d: total = %d, want %d", format, got, TotalPoints)
		}
		for team := 0; team < r.TeamNum(); team++ {
			if n := len(r.RanksOf(team)); n != format {
				t.Errorf("format %d: team %d holds %d slots, want %d", format, team, n, format)
			}
		}
	}
}

func TestRaceSetOverwrite(t *testing.T) {
	r := NewRace(6, nil)
	r.Add("123456")
	if !r.Set([]*string{nil, str("1")}, true) {
		t.Fatal("overwrite always completes the race")
	}
	if got, want := r.RanksOf(0), []int{2, 3, 4, 5, 6, 7}; !slices.Equal(got, want) {
		t.Errorf("team 0 ranks = %v, want %v", got, want)
	}
	if got, want := r.RanksOf(1), []int{1, 8, 9, 10, 11, 12}; !slices.Equal(got, want) {
		t.Errorf("team 1 ranks = %v, want %v", got, want)
	}
	if got, want := r.Scores(), []int{52, 30}; !slices.Equal(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}
}

func TestRaceClearTeam(t *testing.T) {
	r := NewRace(3, nil)
	r.Add("1")
	r.Add("2")
	r.ClearTeam(1)
	if got, want := r.Filled(), []bool{true, false, false, false}; !slices.Equal(got, want) {
		t.Errorf("filled = %v, want %v", got, want)
	}
}
