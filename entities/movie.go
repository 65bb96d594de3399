package entities

// Movie is a catalog entry. DurationMin drives the overlap math in the
// scheduler, everything else is descriptive.
type Movie struct {
	ID          int    `json:"id"`
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug,omitempty"`
	Genre       string `json:"genre,omitempty"`
	DurationMin int    `json:"durationMin" validate:"required,gt=0"`
}
