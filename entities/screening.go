package entities

import "time"

// Screening is one scheduled showing of a movie in a specific auditorium.
// StartUTC is always stored in UTC; the caller's local zone is applied at
// the input boundary, never here. The ID is assigned by the store on first
// insert, 0 means "not persisted yet".
type Screening struct {
	ID              int       `json:"id"`
	CinemaID        int       `json:"cinemaId"`
	AuditoriumID    int       `json:"auditoriumId"`
	MovieID         int       `json:"movieId"`
	StartUTC        time.Time `json:"startUtc"`
	AdsMinutes      int       `json:"adsMinutes"`
	CleaningMinutes int       `json:"cleaningMinutes"`
}

// TotalMinutes is the full time the auditorium is occupied: the movie
// runtime plus the ads and cleaning buffers. The movie duration is passed
// in explicitly, a Screening only carries the foreign key.
func (s Screening) TotalMinutes(movieDurationMin int) int {
	return movieDurationMin + s.AdsMinutes + s.CleaningMinutes
}

// EndUTC derives the end of the occupied interval from the movie duration.
func (s Screening) EndUTC(movieDurationMin int) time.Time {
	return s.StartUTC.Add(time.Duration(s.TotalMinutes(movieDurationMin)) * time.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries (one screening ending
// exactly when the next starts) do not count as an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
