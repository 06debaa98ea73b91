package bot

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/onnwee/sokuji-bot/sokuji"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		command string
		arg     string
		ok      bool
	}{
		{"%end", "end", "", true},
		{"  %V6 A B ", "v6", "A B", true},
		{"％track 3 bcma", "track", "3 bcma", true},
		{"%race 1\n12 34", "race", "1\n12 34", true},
		{"end", "", "", false},
		{"1234", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		command, arg, ok := ParseCommand(tt.in)
		if command != tt.command || arg != tt.arg || ok != tt.ok {
			t.Errorf("ParseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.in, command, arg, ok, tt.command, tt.arg, tt.ok)
		}
	}
}

func TestIsScoreText(t *testing.T) {
	for in, want := range map[string]bool{
		"1234":      true,
		" 12 34 ":   true,
		"１２ー５":      true,
		"+3":        true,
		"back":      true,
		"undo":      true,
		"Back":      false,
		"12a":       false,
		"gg":        false,
		"":          false,
		"123456789": true,
	} {
		if got := IsScoreText(in); got != want {
			t.Errorf("IsScoreText(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseTagLines(t *testing.T) {
	got := ParseTagLines("A B\n\n  \nLongerThanTenChars\r\nx")
	want := []string{"AB", "LongerThan", "x"}
	if !slices.Equal(got, want) {
		t.Fatalf("ParseTagLines = %v, want %v", got, want)
	}
}

func TestParseRaceNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"3", intp(3)},
		{" １２ ", intp(12)},
		{"ー1", intp(-1)},
		{"", nil},
		{"x", nil},
	}
	for _, tt := range tests {
		got := ParseRaceNumber(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("ParseRaceNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func intp(n int) *int { return &n }

func TestRanksFormPlaceholder(t *testing.T) {
	tests := []struct {
		format int
		i      int
		want   string
	}{
		{6, 0, "123456"},
		{4, 1, "5678"},
		{3, 2, "789"},
		{2, 0, "12"},
		{2, 4, "910"},
	}
	for _, tt := range tests {
		if got := (RanksForm{Format: tt.format}).Placeholder(tt.i); got != tt.want {
			t.Errorf("Placeholder(format=%d, %d) = %q, want %q", tt.format, tt.i, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{nil, ErrorClassNone},
		{sokuji.NewError(sokuji.CodeInvalidFormat), ErrorClassUser},
		{fmt.Errorf("wrap: %w", sokuji.NewError(sokuji.CodeStaleMessage)), ErrorClassStale},
		{sokuji.NewError(sokuji.CodeOutdatedBoard), ErrorClassStale},
		{sokuji.NewError(sokuji.CodeSessionNotFound), ErrorClassNotFound},
		{sokuji.NewError(sokuji.CodeEmptySession), ErrorClassNotFound},
		{context.Canceled, ErrorClassCanceled},
		{fmt.Errorf("db: %w", context.DeadlineExceeded), ErrorClassCanceled},
		{fmt.Errorf("boom"), ErrorClassUnexpected},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorTextLocalizes(t *testing.T) {
	err := sokuji.NewError(sokuji.CodeRaceNotFound, 4)
	if got := ErrorText(err, false); got != "Race 4 does not exist." {
		t.Fatalf("english = %q", got)
	}
	if got := ErrorText(err, true); got == "" || got == "Race 4 does not exist." {
		t.Fatalf("japanese = %q", got)
	}
	if !IsUserFacing(err) || IsUserFacing(fmt.Errorf("boom")) {
		t.Fatal("IsUserFacing mismatch")
	}
}
