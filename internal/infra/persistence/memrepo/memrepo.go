// Package memrepo holds in-memory repository implementations. They back the
// unit tests of the command, bridge, dispatch and review packages; the MySQL
// implementations under the sibling packages are the production ones.
package memrepo

import (
	"context"
	"sync"
	"time"
)

// store carries the shared bookkeeping of all in-memory repos.
type store struct {
	mu     sync.Mutex
	nextID uint64
}

func (s *store) id() uint64 {
	s.nextID++
	return s.nextID
}

// Execute runs fn directly. The in-memory repos have no transaction
// isolation; tests that need rollback semantics use the MySQL repos.
func (s *store) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *store) touch() time.Time {
	return time.Now()
}
