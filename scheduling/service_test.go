package scheduling

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/persistence"
)

// fixture wires a scheduler to real file-backed stores in a temp dir, the
// same collaborators the application uses.
type fixture struct {
	scheduler *Scheduler
	store     *persistence.FileScreeningStore
	movies    *persistence.MovieStore
	movieID   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	seq := persistence.NewFileSequence(filepath.Join(dir, "counter.json"))
	store := persistence.NewFileScreeningStore(dir, seq, nil)
	movies := persistence.NewMovieStore(dir)

	movie, err := movies.Create(entities.Movie{Title: "Test Film", DurationMin: 120})
	require.NoError(t, err)

	return &fixture{
		scheduler: NewScheduler(store, movies, nil),
		store:     store,
		movies:    movies,
		movieID:   movie.ID,
	}
}

func (f *fixture) request(cinemaID, auditoriumID int, start time.Time) AddScreeningRequest {
	return AddScreeningRequest{
		CinemaID:        cinemaID,
		AuditoriumID:    auditoriumID,
		MovieID:         f.movieID,
		Start:           start,
		AdsMinutes:      15,
		CleaningMinutes: 15,
	}
}

func jan15at(hour, min int) time.Time {
	return time.Date(2025, time.January, 15, hour, min, 0, 0, time.UTC)
}

func TestAddScreening_SameSlotRejected(t *testing.T) {
	// Arrange: 120 min movie + 15 + 15 occupies 19:00-21:30
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	// Act: identical cinema/auditorium/time
	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))

	// Assert
	assert.True(t, IsKind(err, KindOverlap))
}

func TestAddScreening_InsideIntervalRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(20, 30)))

	assert.True(t, IsKind(err, KindOverlap))
	var se *ScheduleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, jan15at(19, 0), se.ConflictStart)
	assert.Equal(t, jan15at(21, 30), se.ConflictEnd)
}

func TestAddScreening_BackToBackAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	// Starts exactly at the first screening's end.
	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(21, 30)))
	assert.NoError(t, err)
}

func TestAddScreening_AfterGapAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(21, 45)))
	assert.NoError(t, err)
}

func TestAddScreening_EndTouchingExistingStartAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	// Ends 19:00, exactly when the existing one starts.
	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(16, 30)))
	assert.NoError(t, err)
}

func TestAddScreening_OtherAuditoriumSameTimeAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	_, err = f.scheduler.AddScreening(f.request(1, 2, jan15at(19, 0)))
	assert.NoError(t, err)
}

func TestAddScreening_OtherCinemaSameAuditoriumIDAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	// Same auditorium number but a different cinema: independent rooms.
	_, err = f.scheduler.AddScreening(f.request(2, 1, jan15at(19, 0)))
	assert.NoError(t, err)
}

func TestAddScreening_NormalizesLocalStartToUTC(t *testing.T) {
	f := newFixture(t)
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	s, err := f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.January, 15, 19, 0, 0, 0, rome)))

	require.NoError(t, err)
	assert.Equal(t, jan15at(18, 0), s.StartUTC)
	assert.Equal(t, time.UTC, s.StartUTC.Location())
}

func TestAddScreening_ConflictAcrossZonesDetected(t *testing.T) {
	f := newFixture(t)
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(18, 0)))
	require.NoError(t, err)

	// 19:00 Rome is 18:00 UTC: the same instant in another zone.
	_, err = f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.January, 15, 19, 0, 0, 0, rome)))

	assert.True(t, IsKind(err, KindOverlap))
}

func TestAddScreening_ConflictAcrossMonthBoundaryDetected(t *testing.T) {
	f := newFixture(t)
	// Stored in the January partition, occupied until Feb 1 01:30 UTC.
	_, err := f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// February candidate inside the spillover.
	_, err = f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.February, 1, 0, 30, 0, 0, time.UTC)))

	assert.True(t, IsKind(err, KindOverlap))
}

func TestAddScreening_CandidateSpillingIntoNextMonthDetected(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.February, 1, 0, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	// Starts in January but runs past midnight into the February booking.
	_, err = f.scheduler.AddScreening(f.request(1, 1,
		time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC)))

	assert.True(t, IsKind(err, KindOverlap))
}

func TestAddScreening_UnknownMovieRejected(t *testing.T) {
	f := newFixture(t)
	req := f.request(1, 1, jan15at(19, 0))
	req.MovieID = 99

	_, err := f.scheduler.AddScreening(req)

	assert.True(t, IsKind(err, KindMovieNotFound))
}

func TestAddScreening_ZeroStartRejected(t *testing.T) {
	f := newFixture(t)
	req := f.request(1, 1, time.Time{})

	_, err := f.scheduler.AddScreening(req)

	assert.True(t, IsKind(err, KindInvalidTimeInput))
}

func TestAddScreening_NegativeExtrasRejected(t *testing.T) {
	f := newFixture(t)
	req := f.request(1, 1, jan15at(19, 0))
	req.AdsMinutes = -1

	_, err := f.scheduler.AddScreening(req)

	assert.True(t, IsKind(err, KindInvalidTimeInput))
}

func TestAddScreening_IDsAreUniqueAndIncreasing(t *testing.T) {
	f := newFixture(t)

	var ids []int
	for _, req := range []AddScreeningRequest{
		f.request(1, 1, jan15at(10, 0)),
		f.request(2, 1, jan15at(10, 0)),
		f.request(1, 2, time.Date(2025, time.March, 3, 20, 0, 0, 0, time.UTC)),
	} {
		s, err := f.scheduler.AddScreening(req)
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestGetMonth_RoundTrip(t *testing.T) {
	f := newFixture(t)
	added, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	list, err := f.scheduler.GetMonth(1, 2025, time.January)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, added, list[0])
}

func TestGetMonth_SortedAscending(t *testing.T) {
	f := newFixture(t)
	for _, hour := range []int{21, 10, 15} {
		// Spread across auditoriums so nothing overlaps.
		_, err := f.scheduler.AddScreening(f.request(1, hour, jan15at(hour, 0)))
		require.NoError(t, err)
	}

	list, err := f.scheduler.GetMonth(1, 2025, time.January)

	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].StartUTC.Before(list[i].StartUTC))
	}
}

func TestRemoveScreening_Idempotent(t *testing.T) {
	f := newFixture(t)
	s, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	require.NoError(t, f.scheduler.RemoveScreening(s.ID))
	require.NoError(t, f.scheduler.RemoveScreening(s.ID))
	require.NoError(t, f.scheduler.RemoveScreening(999))

	list, err := f.scheduler.GetMonth(1, 2025, time.January)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRescheduleScreening_KeepsID(t *testing.T) {
	f := newFixture(t)
	s, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	moved, err := f.scheduler.RescheduleScreening(s.ID, jan15at(22, 0), 15, 15)

	require.NoError(t, err)
	assert.Equal(t, s.ID, moved.ID)
	list, err := f.scheduler.GetMonth(1, 2025, time.January)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jan15at(22, 0), list[0].StartUTC)
}

func TestRescheduleScreening_DoesNotConflictWithItself(t *testing.T) {
	f := newFixture(t)
	s, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	// Shift by 30 minutes: overlaps its own old slot, which must not count.
	_, err = f.scheduler.RescheduleScreening(s.ID, jan15at(19, 30), 15, 15)
	assert.NoError(t, err)
}

func TestRescheduleScreening_ConflictWithOthersRejected(t *testing.T) {
	f := newFixture(t)
	first, err := f.scheduler.AddScreening(f.request(1, 1, jan15at(10, 0)))
	require.NoError(t, err)
	_, err = f.scheduler.AddScreening(f.request(1, 1, jan15at(19, 0)))
	require.NoError(t, err)

	_, err = f.scheduler.RescheduleScreening(first.ID, jan15at(19, 30), 15, 15)

	assert.True(t, IsKind(err, KindOverlap))
}

func TestRescheduleScreening_UnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.scheduler.RescheduleScreening(77, jan15at(19, 0), 15, 15)

	assert.ErrorIs(t, err, ErrScreeningNotFound)
	// Same identity as the store's sentinel: one errors.Is target works
	// for errors from either layer.
	assert.ErrorIs(t, err, persistence.ErrScreeningNotFound)
}

// No pair of committed screenings in the same cinema and auditorium may
// ever intersect, whatever order the attempts arrive in.
func TestNoDoubleBookingInvariant(t *testing.T) {
	f := newFixture(t)
	starts := []time.Time{
		jan15at(9, 0), jan15at(10, 0), jan15at(11, 30), jan15at(14, 0),
		jan15at(9, 30), jan15at(16, 30), jan15at(13, 0), jan15at(19, 0),
	}
	for _, start := range starts {
		_, err := f.scheduler.AddScreening(f.request(1, 1, start))
		_ = err // rejections are expected, commits must stay conflict-free
	}

	list, err := f.scheduler.GetMonth(1, 2025, time.January)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	movie, ok, err := f.movies.GetByID(f.movieID)
	require.NoError(t, err)
	require.True(t, ok)
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			assert.False(t, entities.Overlaps(
				a.StartUTC, a.EndUTC(movie.DurationMin),
				b.StartUTC, b.EndUTC(movie.DurationMin)),
				"screenings %d and %d overlap", a.ID, b.ID)
		}
	}
}
