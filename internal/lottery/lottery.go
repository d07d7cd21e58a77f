// Package lottery implements the uniform, without-replacement random draw
// shared by meal planning and the "surprise me" pickers.
package lottery

import (
	"errors"
	"fmt"
)

// MaxCount bounds how many items a single draw may request.
const MaxCount = 50

// ErrInvalidCount is returned when count is outside [1, MaxCount].
var ErrInvalidCount = errors.New("lottery: count out of range")

// Status tells an empty draw apart from a successful one.
type Status string

const (
	StatusOK           Status = "ok"
	StatusNoCandidates Status = "no_candidates"
)

const noCandidatesMessage = "no candidates match the given filters"

// Result is the outcome of a draw. TotalAvailable counts the eligible
// candidates after exclusions.
type Result[T any] struct {
	Items          []T    `json:"items"`
	TotalAvailable int    `json:"total_available"`
	Status         Status `json:"status"`
	Message        string `json:"message,omitempty"`
}

// Draw picks up to count distinct candidates uniformly at random. Candidates
// whose id is in exclude are removed first, as are repeated ids. When fewer
// than count remain, all of them are returned in random order. An empty
// eligible set is not an error: the result carries StatusNoCandidates.
func Draw[T any](src Source, candidates []T, idOf func(T) int64, count int, exclude []int64) (Result[T], error) {
	if count < 1 || count > MaxCount {
		return Result[T]{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, count, MaxCount)
	}

	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(candidates))
	pool := make([]T, 0, len(candidates))
	for _, c := range candidates {
		id := idOf(c)
		if _, skip := excluded[id]; skip {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, c)
	}

	if len(pool) == 0 {
		return Result[T]{
			Items:   []T{},
			Status:  StatusNoCandidates,
			Message: noCandidatesMessage,
		}, nil
	}

	n := min(count, len(pool))
	// Partial Fisher-Yates: the first n slots end up a uniform sample.
	for i := 0; i < n; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	items := make([]T, n)
	copy(items, pool[:n])
	return Result[T]{
		Items:          items,
		TotalAvailable: len(pool),
		Status:         StatusOK,
	}, nil
}

// Pick draws a single candidate; it behaves like Draw with count 1 and no
// exclusions. ok is false when candidates is empty.
func Pick[T any](src Source, candidates []T) (item T, ok bool) {
	if len(candidates) == 0 {
		return item, false
	}
	return candidates[src.IntN(len(candidates))], true
}

// Coin reports true with probability p.
func Coin(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
