package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/persistence"
)

// ErrorKind classifies a scheduling rejection.
type ErrorKind string

const (
	KindMovieNotFound       ErrorKind = "movie_not_found"
	KindOverlap             ErrorKind = "overlap"
	KindInvalidTimeInput    ErrorKind = "invalid_time_input"
	KindHasFutureScreenings ErrorKind = "has_future_screenings"
)

// ErrScreeningNotFound is returned when a reschedule targets an unknown
// ID. It is the store's sentinel re-exported, so errors.Is matches one
// identity no matter which layer reported the miss.
var ErrScreeningNotFound = persistence.ErrScreeningNotFound

// ScheduleError is a business-rule rejection from the scheduling core.
// Storage faults are not ScheduleErrors; they propagate as the store's own
// error types.
type ScheduleError struct {
	Kind    ErrorKind
	Message string

	// Set for overlap rejections: the occupied interval that blocked the
	// candidate, so callers can explain the rejection to the user.
	ConflictID    int
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *ScheduleError) Error() string { return e.Message }

// IsKind reports whether err is (or wraps) a ScheduleError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ScheduleError
	return errors.As(err, &se) && se.Kind == kind
}

func movieNotFoundError(movieID int) *ScheduleError {
	return &ScheduleError{
		Kind:    KindMovieNotFound,
		Message: fmt.Sprintf("movie %d not found", movieID),
	}
}

func invalidInputError(format string, args ...any) *ScheduleError {
	return &ScheduleError{
		Kind:    KindInvalidTimeInput,
		Message: fmt.Sprintf(format, args...),
	}
}

func overlapError(existing entities.Screening, start, end time.Time) *ScheduleError {
	return &ScheduleError{
		Kind: KindOverlap,
		Message: fmt.Sprintf(
			"auditorium %d is already booked by screening %d from %s to %s",
			existing.AuditoriumID, existing.ID,
			start.Format(time.RFC3339), end.Format(time.RFC3339)),
		ConflictID:    existing.ID,
		ConflictStart: start,
		ConflictEnd:   end,
	}
}

func futureScreeningsError(auditoriumID, screeningID int, startUTC time.Time) *ScheduleError {
	return &ScheduleError{
		Kind: KindHasFutureScreenings,
		Message: fmt.Sprintf(
			"auditorium %d still has future screenings (screening %d at %s)",
			auditoriumID, screeningID, startUTC.Format(time.RFC3339)),
		ConflictID:    screeningID,
		ConflictStart: startUTC,
	}
}
