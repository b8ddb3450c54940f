package utils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const idLength = 10

// maxIDAttempts bounds the retry loop in UniqueID. Random ids collide so
// rarely that hitting it means the allocator is broken.
const maxIDAttempts = 64

// IDAllocator hands out identifiers for tournaments, players and matches.
type IDAllocator interface {
	NewID() string
}

// RandomIDs allocates short random ids cut from a v4 UUID.
type RandomIDs struct{}

func (RandomIDs) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// SequentialIDs allocates prefix-1, prefix-2, ... and is safe for concurrent
// use. Tests use it to get stable ids.
type SequentialIDs struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{Prefix: prefix}
}

func (s *SequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if s.Prefix == "" {
		return fmt.Sprintf("%d", s.next)
	}
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}

// UniqueID draws ids from alloc until taken reports the id as free.
func UniqueID(alloc IDAllocator, taken func(string) bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := alloc.NewID()
		if id != "" && !taken(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free id after %d attempts", maxIDAttempts)
}
