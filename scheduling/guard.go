package scheduling

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// AuditoriumGuard refuses auditorium deletion while the auditorium still
// has future screenings. It is a read-only consumer of the screening
// store; the actual removal belongs to the cinema registry.
type AuditoriumGuard struct {
	store ScreeningStore
	clock clockwork.Clock
}

func NewAuditoriumGuard(store ScreeningStore, clock clockwork.Clock) *AuditoriumGuard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuditoriumGuard{store: store, clock: clock}
}

// CanDelete scans the next 12 UTC calendar months of the cinema's
// screenings. Any screening in the auditorium starting strictly after now
// blocks the deletion.
func (g *AuditoriumGuard) CanDelete(cinemaID, auditoriumID int) error {
	now := g.clock.Now().UTC()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		m := anchor.AddDate(0, i, 0)
		list, err := g.store.GetForCinemaMonth(cinemaID, m.Year(), m.Month())
		if err != nil {
			return fmt.Errorf("reading screenings for cinema %d %d-%02d: %w", cinemaID, m.Year(), int(m.Month()), err)
		}
		for _, s := range list {
			if s.AuditoriumID == auditoriumID && s.StartUTC.After(now) {
				return futureScreeningsError(auditoriumID, s.ID, s.StartUTC)
			}
		}
	}
	return nil
}
