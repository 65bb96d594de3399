package entities

// Auditorium IDs are allocated from a single counter across all cinemas,
// so they are unique system-wide even though every auditorium belongs to
// exactly one cinema.
type Auditorium struct {
	ID       int    `json:"id"`
	CinemaID int    `json:"cinemaId"`
	Name     string `json:"name"`
	Seats    int    `json:"seats,omitempty"`
}

type Cinema struct {
	ID          int          `json:"id"`
	Name        string       `json:"name" validate:"required"`
	City        string       `json:"city,omitempty"`
	Auditoriums []Auditorium `json:"auditoriums"`
}

// Auditorium returns the auditorium with the given ID, if the cinema has it.
func (c *Cinema) Auditorium(auditoriumID int) (Auditorium, bool) {
	for _, a := range c.Auditoriums {
		if a.ID == auditoriumID {
			return a, true
		}
	}
	return Auditorium{}, false
}
