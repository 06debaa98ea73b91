package sokuji

import (
	"errors"

	"github.com/onnwee/sokuji-bot/i18n"
)

// ErrNotFound is returned by stores when a session, config or pointer does not exist.
var ErrNotFound = errors.New("sokuji: not found")

// Code identifies a user-facing failure. Codes double as i18n message keys.
type Code string

const (
	CodeSessionNotFound      Code = "session_not_found"
	CodeSessionIDNotFound    Code = "session_id_not_found"
	CodeStaleMessage         Code = "stale_message"
	CodeOutdatedBoard        Code = "outdated_board"
	CodeInvalidFormat        Code = "invalid_format"
	CodeTagCountMismatch     Code = "tag_count_mismatch"
	CodeRaceNumBelowRecorded Code = "race_num_below_recorded"
	CodeRaceNumTooSmall      Code = "race_num_too_small"
	CodeRaceNumTooLarge      Code = "race_num_too_large"
	CodeRaceNotFound         Code = "race_not_found"
	CodeTargetRaceNotFound   Code = "target_race_not_found"
	CodeNoEditableTrack      Code = "no_editable_track"
	CodeAlreadyEnded         Code = "already_ended"
	CodeSessionEnded         Code = "session_ended"
	CodeEmptySession         Code = "empty_session"
	CodeInvalidValue         Code = "invalid_value"
	CodeInvalidCharacters    Code = "invalid_characters"
	CodePenaltyPositive      Code = "penalty_positive"
	CodeBonusNegative        Code = "bonus_negative"
)

// Error is a user input, stale reference or not-found failure. It never
// wraps infrastructure errors; those travel as plain wrapped errors.
type Error struct {
	Code Code
	Args []any
}

// NewError builds an Error with positional format arguments.
func NewError(code Code, args ...any) *Error {
	return &Error{Code: code, Args: args}
}

// Error returns the English text of the code.
func (e *Error) Error() string {
	if !i18n.Has(string(e.Code)) {
		return string(e.Code)
	}
	return i18n.Sprintf(false, string(e.Code), e.Args...)
}

// Is matches another *Error with the same code, so callers can write
// errors.Is(err, sokuji.NewError(sokuji.CodeAlreadyEnded)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the Code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
