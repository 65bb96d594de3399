package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mbellini/cinema-scheduler/entities"
)

// MovieLookup resolves a movie ID to its record. The scheduler only needs
// the duration for overlap math; the boolean is false for unknown IDs.
type MovieLookup interface {
	GetByID(id int) (entities.Movie, bool, error)
}

// ScreeningStore is what the scheduler needs from persistence.
// Implementations must keep each partition sorted ascending by StartUTC
// and serialize mutations; FileScreeningStore does both.
type ScreeningStore interface {
	GetForCinemaMonth(cinemaID, year int, month time.Month) ([]entities.Screening, error)
	Get(id int) (entities.Screening, bool, error)
	Add(s *entities.Screening) error
	Update(s entities.Screening) error
	Delete(id int) error
}

// AddScreeningRequest carries everything needed to schedule one showing.
// Start may be in any location; the scheduler converts it to UTC before
// comparing or storing.
type AddScreeningRequest struct {
	CinemaID        int `validate:"gt=0"`
	AuditoriumID    int `validate:"gt=0"`
	MovieID         int `validate:"gt=0"`
	Start           time.Time
	AdsMinutes      int `validate:"gte=0"`
	CleaningMinutes int `validate:"gte=0"`
}

// Scheduler is the overlap-safe entry point for creating, moving and
// removing screenings. It is stateless. The overlap check and the store
// write are separate store calls; the store lock makes each call atomic
// but not the pair, so the no-double-booking invariant relies on
// mutations being issued one at a time through a single scheduler.
type Scheduler struct {
	store    ScreeningStore
	movies   MovieLookup
	validate *validator.Validate
	log      *zap.Logger
}

func NewScheduler(store ScreeningStore, movies MovieLookup, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		movies:   movies,
		validate: validator.New(),
		log:      log,
	}
}

// AddScreening validates the request, rejects any candidate whose
// [start, end) interval intersects an existing screening in the same
// cinema and auditorium, and commits the screening to the store, which
// assigns its ID.
func (sc *Scheduler) AddScreening(req AddScreeningRequest) (entities.Screening, error) {
	if err := sc.checkRequest(req); err != nil {
		return entities.Screening{}, err
	}
	movie, err := sc.resolveMovie(req.MovieID)
	if err != nil {
		return entities.Screening{}, err
	}

	candidate := entities.Screening{
		CinemaID:        req.CinemaID,
		AuditoriumID:    req.AuditoriumID,
		MovieID:         req.MovieID,
		StartUTC:        req.Start.UTC(),
		AdsMinutes:      req.AdsMinutes,
		CleaningMinutes: req.CleaningMinutes,
	}
	endUTC := candidate.EndUTC(movie.DurationMin)

	if err := sc.checkOverlap(candidate, endUTC, 0); err != nil {
		return entities.Screening{}, err
	}
	if err := sc.store.Add(&candidate); err != nil {
		return entities.Screening{}, fmt.Errorf("storing screening: %w", err)
	}
	sc.log.Info("screening scheduled",
		zap.Int("id", candidate.ID),
		zap.Int("cinema", candidate.CinemaID),
		zap.Int("auditorium", candidate.AuditoriumID),
		zap.Int("movie", candidate.MovieID),
		zap.Time("startUtc", candidate.StartUTC))
	return candidate, nil
}

// RescheduleScreening moves an existing screening to a new start time as a
// true in-place update: the ID is preserved and there is no window where
// the screening is deleted but not yet recreated.
func (sc *Scheduler) RescheduleScreening(id int, newStart time.Time, adsMinutes, cleaningMinutes int) (entities.Screening, error) {
	current, ok, err := sc.store.Get(id)
	if err != nil {
		return entities.Screening{}, fmt.Errorf("loading screening %d: %w", id, err)
	}
	if !ok {
		return entities.Screening{}, fmt.Errorf("rescheduling screening %d: %w", id, ErrScreeningNotFound)
	}

	req := AddScreeningRequest{
		CinemaID:        current.CinemaID,
		AuditoriumID:    current.AuditoriumID,
		MovieID:         current.MovieID,
		Start:           newStart,
		AdsMinutes:      adsMinutes,
		CleaningMinutes: cleaningMinutes,
	}
	if err := sc.checkRequest(req); err != nil {
		return entities.Screening{}, err
	}
	movie, err := sc.resolveMovie(current.MovieID)
	if err != nil {
		return entities.Screening{}, err
	}

	updated := current
	updated.StartUTC = newStart.UTC()
	updated.AdsMinutes = adsMinutes
	updated.CleaningMinutes = cleaningMinutes
	endUTC := updated.EndUTC(movie.DurationMin)

	// The screening must not conflict with anything but itself.
	if err := sc.checkOverlap(updated, endUTC, id); err != nil {
		return entities.Screening{}, err
	}
	if err := sc.store.Update(updated); err != nil {
		return entities.Screening{}, fmt.Errorf("updating screening: %w", err)
	}
	sc.log.Info("screening rescheduled",
		zap.Int("id", updated.ID),
		zap.Time("startUtc", updated.StartUTC))
	return updated, nil
}

// RemoveScreening delegates to the store; removing an unknown ID is a
// no-op.
func (sc *Scheduler) RemoveScreening(id int) error {
	if err := sc.store.Delete(id); err != nil {
		return fmt.Errorf("removing screening %d: %w", id, err)
	}
	return nil
}

// GetMonth returns the cinema's screenings for the UTC calendar month,
// ascending by StartUTC. The store already sorts on write; the re-sort
// here keeps the contract even against a store that does not.
func (sc *Scheduler) GetMonth(cinemaID, year int, month time.Month) ([]entities.Screening, error) {
	list, err := sc.store.GetForCinemaMonth(cinemaID, year, month)
	if err != nil {
		return nil, fmt.Errorf("reading screenings for cinema %d %d-%02d: %w", cinemaID, year, int(month), err)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartUTC.Before(list[j].StartUTC)
	})
	return list, nil
}

func (sc *Scheduler) checkRequest(req AddScreeningRequest) error {
	if req.Start.IsZero() {
		return invalidInputError("start time is not set")
	}
	if err := sc.validate.Struct(req); err != nil {
		return invalidInputError("invalid request: %v", err)
	}
	return nil
}

func (sc *Scheduler) resolveMovie(movieID int) (entities.Movie, error) {
	movie, ok, err := sc.movies.GetByID(movieID)
	if err != nil {
		return entities.Movie{}, fmt.Errorf("looking up movie %d: %w", movieID, err)
	}
	if !ok {
		return entities.Movie{}, movieNotFoundError(movieID)
	}
	return movie, nil
}

// checkOverlap tests the candidate against every screening in the same
// cinema and auditorium whose occupied interval could reach into the
// candidate's. Screenings live in the partition of their UTC start month,
// so a conflict can sit in the candidate's start month, in the previous
// month (a late screening spilling over the boundary), or in the end
// month when the candidate itself crosses it. excludeID skips the
// screening being rescheduled.
func (sc *Scheduler) checkOverlap(candidate entities.Screening, candidateEnd time.Time, excludeID int) error {
	durations := map[int]int{}
	for _, ym := range monthsToCheck(candidate.StartUTC, candidateEnd) {
		existing, err := sc.store.GetForCinemaMonth(candidate.CinemaID, ym.year, ym.month)
		if err != nil {
			return fmt.Errorf("reading screenings for cinema %d %d-%02d: %w",
				candidate.CinemaID, ym.year, int(ym.month), err)
		}
		for _, s := range existing {
			if s.AuditoriumID != candidate.AuditoriumID {
				continue
			}
			if excludeID != 0 && s.ID == excludeID {
				continue
			}
			dur, ok := durations[s.MovieID]
			if !ok {
				movie, found, err := sc.movies.GetByID(s.MovieID)
				if err != nil {
					return fmt.Errorf("looking up movie %d: %w", s.MovieID, err)
				}
				if !found {
					return fmt.Errorf("screening %d references missing movie %d", s.ID, s.MovieID)
				}
				dur = movie.DurationMin
				durations[s.MovieID] = dur
			}
			sEnd := s.EndUTC(dur)
			if entities.Overlaps(candidate.StartUTC, candidateEnd, s.StartUTC, sEnd) {
				return overlapError(s, s.StartUTC, sEnd)
			}
		}
	}
	return nil
}

type yearMonth struct {
	year  int
	month time.Month
}

func monthsToCheck(startUTC, endUTC time.Time) []yearMonth {
	prev := time.Date(startUTC.Year(), startUTC.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	months := []yearMonth{
		{prev.Year(), prev.Month()},
		{startUTC.Year(), startUTC.Month()},
	}
	if endUTC.Year() != startUTC.Year() || endUTC.Month() != startUTC.Month() {
		months = append(months, yearMonth{endUTC.Year(), endUTC.Month()})
	}
	return months
}
