package inject

import (
	"io"
	"sync"

	"github.com/junioryono/inject/internal/metrics"
)

// singletonScope keeps one instance per Binding for the lifetime of the
// binder. Each slot has its own lock so that check-then-create is atomic
// per binding without serializing unrelated constructions.
type singletonScope struct {
	mu      sync.Mutex
	slots   map[Binding]*slot
	created []any
	metrics *metrics.Collector
}

type slot struct {
	mu    sync.Mutex
	done  bool
	value any
}

func newSingletonScope(m *metrics.Collector) *singletonScope {
	return &singletonScope{
		slots:   make(map[Binding]*slot),
		metrics: m,
	}
}

func (s *singletonScope) Obtain(b Binding, create func() (any, error)) (any, error) {
	s.mu.Lock()
	sl, ok := s.slots[b]
	if !ok {
		sl = &slot{}
		s.slots[b] = sl
	}
	s.mu.Unlock()

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.done {
		s.metrics.ObserveScope(scopeSingleton.String(), true)
		return sl.value, nil
	}

	s.metrics.ObserveScope(scopeSingleton.String(), false)

	value, err := create()
	if err != nil {
		return nil, err
	}

	sl.value = value
	sl.done = true

	s.mu.Lock()
	s.created = append(s.created, value)
	s.mu.Unlock()

	return value, nil
}

// len returns the number of cached instances.
func (s *singletonScope) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

// close closes cached instances implementing io.Closer in reverse creation
// order and empties the cache.
func (s *singletonScope) close() error {
	s.mu.Lock()
	created := s.created
	s.created = nil
	s.slots = make(map[Binding]*slot)
	s.mu.Unlock()

	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		closer, ok := created[i].(io.Closer)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return DisposalError{Errors: errs}
	}

	return nil
}
