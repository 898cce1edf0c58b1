package app

import (
	"math/rand"
	"sync"
	"time"
)

// Permuter produces random permutations of 0..n-1.
type Permuter interface {
	Perm(n int) []int
}

// Shuffler is a Fisher-Yates shuffler safe for use by several engines.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler seeds from src, or from the clock when src is nil.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Shuffler{rnd: rand.New(src)}
}

func (s *Shuffler) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// Perm returns a shuffled identity permutation of length n.
func (s *Shuffler) Perm(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Shuffle(s, idx)
}

// Shuffle returns a shuffled copy of src; src itself is left untouched.
func Shuffle[T any](s *Shuffler, src []T) []T {
	shuffled := make([]T, len(src))
	copy(shuffled, src)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
