// Package audit checks the screening partitions on disk for integrity:
// system-wide ID uniqueness, records filed under the partition matching
// their UTC start month, and ascending order inside each partition.
package audit

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/mbellini/cinema-scheduler/constant"
	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/team"
	"github.com/mbellini/cinema-scheduler/utils"
)

// Violation is one integrity problem found in a partition file.
type Violation struct {
	File    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.File, v.Message)
}

// Auditor reads the partition files directly, outside the store's lock.
// It is an offline check: run it while nothing else is writing.
type Auditor struct {
	dir     string
	workers int
	log     *zap.Logger
}

func New(dir string, log *zap.Logger) *Auditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{dir: dir, workers: 4, log: log}
}

type partitionReport struct {
	file       string
	ids        []int
	violations []Violation
}

// Run scans every partition concurrently and returns all violations found.
// Unreadable files surface as errors, not violations.
func (a *Auditor) Run() ([]Violation, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, constant.ScreeningFileGlob))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", a.dir, err)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	pool := team.Team[string, partitionReport]{
		WorkerCount: a.workers,
		Worker:      a.checkPartition,
	}
	reports, errs := pool.Run(paths)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	// Deterministic output regardless of worker completion order.
	sort.Slice(reports, func(i, j int) bool { return reports[i].file < reports[j].file })

	var violations []Violation
	seen := mapset.NewSet[int]()
	for _, rep := range reports {
		violations = append(violations, rep.violations...)
		for _, id := range rep.ids {
			if !seen.Add(id) {
				violations = append(violations, Violation{
					File:    rep.file,
					Message: fmt.Sprintf("screening id %d appears in more than one record", id),
				})
			}
		}
	}
	a.log.Info("audit finished",
		zap.Int("partitions", len(paths)),
		zap.Int("violations", len(violations)))
	return violations, nil
}

// checkPartition validates a single partition file against its own name:
// every record must belong to the cinema and UTC month encoded in the
// filename, and records must be sorted ascending by start.
func (a *Auditor) checkPartition(path string) (partitionReport, error) {
	rep := partitionReport{file: filepath.Base(path)}

	cinemaID, year, month, err := parsePartitionName(rep.file)
	if err != nil {
		return partitionReport{}, err
	}

	var list []entities.Screening
	if err := utils.ReadJSONFile(path, &list); err != nil {
		return partitionReport{}, fmt.Errorf("reading partition %s: %w", rep.file, err)
	}

	var prev time.Time
	for i, s := range list {
		rep.ids = append(rep.ids, s.ID)
		if s.CinemaID != cinemaID {
			rep.violations = append(rep.violations, Violation{
				File:    rep.file,
				Message: fmt.Sprintf("screening %d belongs to cinema %d", s.ID, s.CinemaID),
			})
		}
		start := s.StartUTC.UTC()
		if start.Year() != year || start.Month() != month {
			rep.violations = append(rep.violations, Violation{
				File:    rep.file,
				Message: fmt.Sprintf("screening %d starts %s, outside partition month %d-%02d", s.ID, start.Format(time.RFC3339), year, int(month)),
			})
		}
		if i > 0 && start.Before(prev) {
			rep.violations = append(rep.violations, Violation{
				File:    rep.file,
				Message: fmt.Sprintf("screening %d is out of order", s.ID),
			})
		}
		prev = start
	}
	return rep, nil
}

// parsePartitionName inverts constant.ScreeningFilePattern.
func parsePartitionName(name string) (cinemaID, year int, month time.Month, err error) {
	parts := strings.Split(strings.TrimSuffix(name, ".json"), "_")
	if len(parts) != 4 || parts[0] != "screenings" {
		return 0, 0, 0, fmt.Errorf("unrecognized partition file name %s", name)
	}
	nums := make([]int, 3)
	for i, p := range parts[1:] {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("unrecognized partition file name %s: %w", name, convErr)
		}
		nums[i] = n
	}
	return nums[0], nums[1], time.Month(nums[2]), nil
}
