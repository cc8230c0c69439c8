package service

import (
	"math/rand"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// ShuffleFunc permutes n elements through swap, with the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// pickUnseen returns a random question from pool whose ID is not in previous,
// or nil when every question has been asked. The pool itself is left untouched.
func pickUnseen(pool []*domain.Question, previous []int, shuffle ShuffleFunc) *domain.Question {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	asked := make(map[int]struct{}, len(previous))
	for _, id := range previous {
		asked[id] = struct{}{}
	}

	indices := make([]int, len(pool))
	for i := range indices {
		indices[i] = i
	}
	shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	for _, i := range indices {
		if _, ok := asked[pool[i].ID]; !ok {
			return pool[i]
		}
	}
	return nil
}
