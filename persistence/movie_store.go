package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"

	"github.com/mbellini/cinema-scheduler/constant"
	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/utils"
)

type moviesFile struct {
	NextID int              `json:"nextId"`
	Movies []entities.Movie `json:"movies"`
}

// MovieStore is the movie catalog, a single JSON file with its own
// auto-increment counter, independent from the screening ID sequence.
type MovieStore struct {
	path     string
	validate *validator.Validate
	mu       sync.Mutex
}

func NewMovieStore(dir string) *MovieStore {
	return &MovieStore{
		path:     filepath.Join(dir, constant.MoviesFile),
		validate: validator.New(),
	}
}

// Create validates the movie, assigns the next catalog ID and a slug
// derived from the title, and persists it.
func (ms *MovieStore) Create(m entities.Movie) (entities.Movie, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Genre = strings.TrimSpace(m.Genre)
	if err := ms.validate.Struct(m); err != nil {
		return entities.Movie{}, fmt.Errorf("invalid movie: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	doc, err := ms.load()
	if err != nil {
		return entities.Movie{}, err
	}
	m.ID = doc.NextID
	m.Slug = slug.Make(m.Title)
	doc.NextID++
	doc.Movies = append(doc.Movies, m)
	if err := ms.save(doc); err != nil {
		return entities.Movie{}, err
	}
	return m, nil
}

// GetByID resolves a movie; the second return value is false when the ID
// is unknown.
func (ms *MovieStore) GetByID(id int) (entities.Movie, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	doc, err := ms.load()
	if err != nil {
		return entities.Movie{}, false, err
	}
	for _, m := range doc.Movies {
		if m.ID == id {
			return m, true, nil
		}
	}
	return entities.Movie{}, false, nil
}

func (ms *MovieStore) List() ([]entities.Movie, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	doc, err := ms.load()
	if err != nil {
		return nil, err
	}
	return doc.Movies, nil
}

// Delete removes the movie; deleting an unknown ID is a no-op.
func (ms *MovieStore) Delete(id int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	doc, err := ms.load()
	if err != nil {
		return err
	}
	for i, m := range doc.Movies {
		if m.ID == id {
			doc.Movies = append(doc.Movies[:i], doc.Movies[i+1:]...)
			return ms.save(doc)
		}
	}
	return nil
}

func (ms *MovieStore) load() (moviesFile, error) {
	doc := moviesFile{NextID: 1}
	if err := utils.ReadJSONFile(ms.path, &doc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return moviesFile{}, storageErr("read", ms.path, err)
	}
	return doc, nil
}

func (ms *MovieStore) save(doc moviesFile) error {
	if err := utils.WriteJSONFile(ms.path, doc); err != nil {
		return storageErr("write", ms.path, err)
	}
	return nil
}
