package persistence

import (
	"errors"
	"io/fs"

	"github.com/mbellini/cinema-scheduler/utils"
)

// Sequence hands out monotonically increasing integer IDs.
type Sequence interface {
	Next() (int, error)
}

type counterFile struct {
	Next int `json:"next"`
}

// FileSequence persists the next available ID in a JSON file. One counter
// is shared across all cinemas and months, so assigned IDs are unique
// system-wide. The type itself does no locking: the screening store
// serializes every allocation under its own mutex.
type FileSequence struct {
	Path string
}

func NewFileSequence(path string) *FileSequence {
	return &FileSequence{Path: path}
}

// Next reads the counter, assigns the current value and persists the
// increment before returning. A missing counter file starts the sequence
// at 1.
func (f *FileSequence) Next() (int, error) {
	c := counterFile{Next: 1}
	if err := utils.ReadJSONFile(f.Path, &c); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, storageErr("read", f.Path, err)
	}
	id := c.Next
	c.Next++
	if err := utils.WriteJSONFile(f.Path, c); err != nil {
		return 0, storageErr("write", f.Path, err)
	}
	return id, nil
}
