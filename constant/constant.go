package constant

import (
	"os"
	"path/filepath"
)

const (
	DefaultAdsMinutes      = 15
	DefaultCleaningMinutes = 15

	CounterFile = "counter.json"
	MoviesFile  = "movies.json"
	CinemasFile = "cinemas.json"

	// One file per (cinema, UTC year, UTC month) partition.
	ScreeningFilePattern = "screenings_%d_%04d_%02d.json"
	ScreeningFileGlob    = "screenings_*.json"

	StartTimeLayout = "2006-01-02 15:04"
)

var (
	FilesPath string
)

func init() {
	wd, err := os.Getwd()
	if err != nil {
		panic("cannot determine working directory: " + err.Error())
	}
	FilesPath = filepath.Join(wd, "data")
}
