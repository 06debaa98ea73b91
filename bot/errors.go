package bot

import (
	"context"
	"errors"

	"github.com/onnwee/sokuji-bot/i18n"
	"github.com/onnwee/sokuji-bot/sokuji"
)

// ErrorClass groups handler failures for replies and metrics.
type ErrorClass int

const (
	// ErrorClassNone is the class of a nil error.
	ErrorClassNone ErrorClass = iota
	// ErrorClassUser indicates invalid input the user can fix.
	ErrorClassUser
	// ErrorClassStale indicates the user acted on a board or panel that is no
	// longer current.
	ErrorClassStale
	// ErrorClassNotFound indicates a missing session or race.
	ErrorClassNotFound
	// ErrorClassCanceled indicates the request ended before it ran.
	ErrorClassCanceled
	// ErrorClassUnexpected covers storage and transport failures.
	ErrorClassUnexpected
)

// String returns the metric label of the class.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorClassNone:
		return "ok"
	case ErrorClassUser:
		return "user"
	case ErrorClassStale:
		return "stale"
	case ErrorClassNotFound:
		return "not_found"
	case ErrorClassCanceled:
		return "canceled"
	default:
		return "unexpected"
	}
}

// Classify sorts err into an ErrorClass.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}
	code, ok := sokuji.CodeOf(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ErrorClassCanceled
		}
		return ErrorClassUnexpected
	}
	switch code {
	case sokuji.CodeStaleMessage, sokuji.CodeOutdatedBoard:
		return ErrorClassStale
	case sokuji.CodeSessionNotFound, sokuji.CodeSessionIDNotFound,
		sokuji.CodeRaceNotFound, sokuji.CodeTargetRaceNotFound,
		sokuji.CodeNoEditableTrack, sokuji.CodeEmptySession:
		return ErrorClassNotFound
	default:
		return ErrorClassUser
	}
}

// IsUserFacing reports whether err carries a message meant for the user.
func IsUserFacing(err error) bool {
	c := Classify(err)
	return c == ErrorClassUser || c == ErrorClassStale || c == ErrorClassNotFound
}

// ErrorText localizes err for a reply. Anything that is not a user-facing
// error becomes the generic notice.
func ErrorText(err error, isJa bool) string {
	var e *sokuji.Error
	if !errors.As(err, &e) {
		return i18n.Sprintf(isJa, "unexpected_error")
	}
	return i18n.Sprintf(isJa, string(e.Code), e.Args...)
}
