package team

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeam_RunCollectsAllResults(t *testing.T) {
	// Arrange
	pool := Team[int, int]{
		WorkerCount: 3,
		Worker: func(n int) (int, error) {
			return n * 2, nil
		},
	}

	// Act
	results, errs := pool.Run([]int{1, 2, 3, 4, 5})

	// Assert
	assert.Empty(t, errs)
	sort.Ints(results)
	assert.Equal(t, []int{2, 4, 6, 8, 10}, results)
}

func TestTeam_RunSeparatesErrors(t *testing.T) {
	pool := Team[int, int]{
		WorkerCount: 2,
		Worker: func(n int) (int, error) {
			if n%2 == 0 {
				return 0, fmt.Errorf("even input %d", n)
			}
			return n, nil
		},
	}

	results, errs := pool.Run([]int{1, 2, 3, 4})

	assert.Len(t, results, 2)
	assert.Len(t, errs, 2)
}

func TestTeam_RunEmptyJobs(t *testing.T) {
	pool := Team[int, int]{WorkerCount: 2, Worker: func(n int) (int, error) { return n, nil }}

	results, errs := pool.Run(nil)

	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestTeam_WorkerCountClampedToJobs(t *testing.T) {
	pool := Team[int, int]{
		WorkerCount: 100,
		Worker:      func(n int) (int, error) { return n + 1, nil },
	}

	results, errs := pool.Run([]int{1})

	assert.Empty(t, errs)
	assert.Equal(t, []int{2}, results)
}
