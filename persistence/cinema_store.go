package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mbellini/cinema-scheduler/constant"
	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/utils"
)

type cinemasFile struct {
	NextCinemaID     int               `json:"nextCinemaId"`
	NextAuditoriumID int               `json:"nextAuditoriumId"`
	Cinemas          []entities.Cinema `json:"cinemas"`
}

// CinemaStore holds cinemas and their auditoriums in a single JSON file.
// Cinema IDs and auditorium IDs come from two independent counters;
// auditorium IDs are allocated globally, not per cinema.
type CinemaStore struct {
	path     string
	validate *validator.Validate
	mu       sync.Mutex
}

func NewCinemaStore(dir string) *CinemaStore {
	return &CinemaStore{
		path:     filepath.Join(dir, constant.CinemasFile),
		validate: validator.New(),
	}
}

func (cs *CinemaStore) AddCinema(c entities.Cinema) (entities.Cinema, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := cs.validate.Struct(c); err != nil {
		return entities.Cinema{}, fmt.Errorf("invalid cinema: %w", err)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	doc, err := cs.load()
	if err != nil {
		return entities.Cinema{}, err
	}
	c.ID = doc.NextCinemaID
	doc.NextCinemaID++
	if c.Auditoriums == nil {
		c.Auditoriums = []entities.Auditorium{}
	}
	doc.Cinemas = append(doc.Cinemas, c)
	if err := cs.save(doc); err != nil {
		return entities.Cinema{}, err
	}
	return c, nil
}

// AddAuditorium attaches a new auditorium to the cinema, drawing its ID
// from the global auditorium counter.
func (cs *CinemaStore) AddAuditorium(cinemaID int, name string, seats int) (entities.Auditorium, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	doc, err := cs.load()
	if err != nil {
		return entities.Auditorium{}, err
	}
	for i := range doc.Cinemas {
		if doc.Cinemas[i].ID != cinemaID {
			continue
		}
		a := entities.Auditorium{
			ID:       doc.NextAuditoriumID,
			CinemaID: cinemaID,
			Name:     strings.TrimSpace(name),
			Seats:    seats,
		}
		doc.NextAuditoriumID++
		doc.Cinemas[i].Auditoriums = append(doc.Cinemas[i].Auditoriums, a)
		if err := cs.save(doc); err != nil {
			return entities.Auditorium{}, err
		}
		return a, nil
	}
	return entities.Auditorium{}, fmt.Errorf("adding auditorium to cinema %d: %w", cinemaID, ErrCinemaNotFound)
}

func (cs *CinemaStore) GetCinema(id int) (entities.Cinema, bool, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	doc, err := cs.load()
	if err != nil {
		return entities.Cinema{}, false, err
	}
	for _, c := range doc.Cinemas {
		if c.ID == id {
			return c, true, nil
		}
	}
	return entities.Cinema{}, false, nil
}

func (cs *CinemaStore) List() ([]entities.Cinema, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	doc, err := cs.load()
	if err != nil {
		return nil, err
	}
	return doc.Cinemas, nil
}

// AuditoriumExists reports whether the cinema has the auditorium.
func (cs *CinemaStore) AuditoriumExists(cinemaID, auditoriumID int) (bool, error) {
	c, ok, err := cs.GetCinema(cinemaID)
	if err != nil || !ok {
		return false, err
	}
	_, found := c.Auditorium(auditoriumID)
	return found, nil
}

// RemoveAuditorium detaches the auditorium from its cinema. Callers are
// expected to consult the scheduling guard first; the store itself does
// not look at screenings.
func (cs *CinemaStore) RemoveAuditorium(cinemaID, auditoriumID int) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	doc, err := cs.load()
	if err != nil {
		return err
	}
	for i := range doc.Cinemas {
		if doc.Cinemas[i].ID != cinemaID {
			continue
		}
		auds := doc.Cinemas[i].Auditoriums
		for j, a := range auds {
			if a.ID == auditoriumID {
				doc.Cinemas[i].Auditoriums = append(auds[:j], auds[j+1:]...)
				return cs.save(doc)
			}
		}
		return nil
	}
	return fmt.Errorf("removing auditorium from cinema %d: %w", cinemaID, ErrCinemaNotFound)
}

func (cs *CinemaStore) load() (cinemasFile, error) {
	doc := cinemasFile{NextCinemaID: 1, NextAuditoriumID: 1}
	if err := utils.ReadJSONFile(cs.path, &doc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cinemasFile{}, storageErr("read", cs.path, err)
	}
	return doc, nil
}

func (cs *CinemaStore) save(doc cinemasFile) error {
	if err := utils.WriteJSONFile(cs.path, doc); err != nil {
		return storageErr("write", cs.path, err)
	}
	return nil
}
