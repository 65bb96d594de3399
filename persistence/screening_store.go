package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mbellini/cinema-scheduler/constant"
	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/utils"
)

// FileScreeningStore keeps screenings in one JSON file per
// (cinema, UTC year, UTC month) partition under dir. A screening always
// lives in the partition matching the UTC calendar month of its StartUTC;
// the scheduler queries by the same rule, so both sides agree near month
// boundaries regardless of the caller's time zone.
//
// A single mutex serializes every operation, reads included, so each call
// is atomic on disk. The lock covers one call at a time: a read followed
// by a write is two critical sections, not one. The store is built for
// one process that issues mutations sequentially; callers needing
// check-then-write atomicity must not run mutations concurrently.
type FileScreeningStore struct {
	dir string
	seq Sequence
	log *zap.Logger
	mu  sync.Mutex
}

func NewFileScreeningStore(dir string, seq Sequence, log *zap.Logger) *FileScreeningStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileScreeningStore{dir: dir, seq: seq, log: log}
}

// GetForCinemaMonth returns the whole partition sorted ascending by
// StartUTC. A missing partition file is an empty month, not an error.
func (st *FileScreeningStore) GetForCinemaMonth(cinemaID, year int, month time.Month) ([]entities.Screening, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.readPartition(st.partitionPath(cinemaID, year, month))
}

// Add persists the screening into the partition derived from its StartUTC.
// When the ID is unset it allocates the next global ID first; the input's
// ID field is mutated so the caller sees the assigned identity.
func (st *FileScreeningStore) Add(s *entities.Screening) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.ID == 0 {
		id, err := st.seq.Next()
		if err != nil {
			return fmt.Errorf("allocating screening id: %w", err)
		}
		s.ID = id
	}
	s.StartUTC = s.StartUTC.UTC()

	path := st.partitionPath(s.CinemaID, s.StartUTC.Year(), s.StartUTC.Month())
	list, err := st.readPartition(path)
	if err != nil {
		return err
	}
	list = append(list, *s)
	if err := st.writePartition(path, list); err != nil {
		return err
	}
	st.log.Debug("screening stored",
		zap.Int("id", s.ID),
		zap.Int("cinema", s.CinemaID),
		zap.Int("auditorium", s.AuditoriumID),
		zap.String("partition", filepath.Base(path)))
	return nil
}

// Get scans all partitions for the screening with the given ID.
func (st *FileScreeningStore) Get(id int) (entities.Screening, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, list, idx, err := st.locate(id)
	if err != nil {
		return entities.Screening{}, false, err
	}
	if idx < 0 {
		return entities.Screening{}, false, nil
	}
	return list[idx], true, nil
}

// Update replaces the stored record with the same ID, moving it to a new
// partition when the start month changed. The destination partition is
// written before the source is touched: a failure mid-move can leave the
// record in both partitions (which the audit reports as a duplicate) but
// never in neither.
func (st *FileScreeningStore) Update(s entities.Screening) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	oldPath, list, idx, err := st.locate(s.ID)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("updating screening %d: %w", s.ID, ErrScreeningNotFound)
	}

	s.StartUTC = s.StartUTC.UTC()
	newPath := st.partitionPath(s.CinemaID, s.StartUTC.Year(), s.StartUTC.Month())

	if newPath == oldPath {
		list[idx] = s
		return st.writePartition(oldPath, list)
	}

	dest, err := st.readPartition(newPath)
	if err != nil {
		return err
	}
	dest = append(dest, s)
	if err := st.writePartition(newPath, dest); err != nil {
		return err
	}
	list = append(list[:idx], list[idx+1:]...)
	if err := st.writePartition(oldPath, list); err != nil {
		return err
	}
	st.log.Debug("screening moved",
		zap.Int("id", s.ID),
		zap.String("from", filepath.Base(oldPath)),
		zap.String("to", filepath.Base(newPath)))
	return nil
}

// Delete scans all partitions (all cinemas, all months) and removes the
// first match; IDs are unique so the first match is the only one. Deleting
// an ID that was never assigned is a no-op, not an error.
func (st *FileScreeningStore) Delete(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	path, list, idx, err := st.locate(id)
	if err != nil {
		return err
	}
	if idx < 0 {
		return nil
	}
	list = append(list[:idx], list[idx+1:]...)
	if err := st.writePartition(path, list); err != nil {
		return err
	}
	st.log.Debug("screening deleted", zap.Int("id", id), zap.String("partition", filepath.Base(path)))
	return nil
}

// locate finds the partition holding the ID. idx is -1 when absent.
func (st *FileScreeningStore) locate(id int) (path string, list []entities.Screening, idx int, err error) {
	paths, err := filepath.Glob(filepath.Join(st.dir, constant.ScreeningFileGlob))
	if err != nil {
		return "", nil, -1, storageErr("scan", st.dir, err)
	}
	for _, p := range paths {
		list, err := st.readPartition(p)
		if err != nil {
			return "", nil, -1, err
		}
		for i, s := range list {
			if s.ID == id {
				return p, list, i, nil
			}
		}
	}
	return "", nil, -1, nil
}

func (st *FileScreeningStore) partitionPath(cinemaID, year int, month time.Month) string {
	name := fmt.Sprintf(constant.ScreeningFilePattern, cinemaID, year, int(month))
	return filepath.Join(st.dir, name)
}

func (st *FileScreeningStore) readPartition(path string) ([]entities.Screening, error) {
	var list []entities.Screening
	if err := utils.ReadJSONFile(path, &list); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, storageErr("read", path, err)
	}
	return list, nil
}

// writePartition re-sorts by StartUTC before persisting, so every
// partition on disk is always ordered.
func (st *FileScreeningStore) writePartition(path string, list []entities.Screening) error {
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartUTC.Before(list[j].StartUTC)
	})
	if err := utils.WriteJSONFile(path, list); err != nil {
		return storageErr("write", path, err)
	}
	return nil
}
