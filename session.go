package inject

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/junioryono/inject/internal/metrics"
)

// Session is an external store for session scoped instances. Operations
// are expected to be atomic per key.
type Session interface {
	Has(key string) bool
	Get(key string) any
	Put(key string, value any)
}

// MapSession is an in-memory Session.
type MapSession struct {
	id     string
	mu     sync.RWMutex
	values map[string]any
}

var _ Session = (*MapSession)(nil)

// NewMapSession creates an empty session with a random ID.
func NewMapSession() *MapSession {
	return &MapSession{
		id:     uuid.NewString(),
		values: make(map[string]any),
	}
}

// ID returns the session ID.
func (s *MapSession) ID() string {
	return s.id
}

func (s *MapSession) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

func (s *MapSession) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MapSession) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Len returns the number of stored values.
func (s *MapSession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// sessionScope is the default SessionScope. Instances are stored in the
// attached session under the ID of the binding's key.
type sessionScope struct {
	mu      sync.RWMutex
	session Session
	locks   sync.Map // string -> *sync.Mutex
	metrics *metrics.Collector
}

var _ SessionScope = (*sessionScope)(nil)

// NewSessionScope creates a SessionScope with no session attached.
func NewSessionScope() SessionScope {
	return &sessionScope{}
}

func newSessionScope(m *metrics.Collector) *sessionScope {
	return &sessionScope{metrics: m}
}

func (s *sessionScope) SetSession(session Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

func (s *sessionScope) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *sessionScope) Obtain(b Binding, create func() (any, error)) (any, error) {
	session := s.Session()
	if session == nil {
		return nil, SessionError{Key: b.Key()}
	}

	bkey := b.Key()
	key := bkey.ID()

	lock, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if session.Has(key) {
		s.metrics.ObserveScope(scopeSession.String(), true)

		value := session.Get(key)
		if bkey.typed() && !assignable(value, bkey.Type) {
			return nil, BindingError{
				Key:   bkey,
				Cause: fmt.Errorf("%w: session holds %T, expected %s", ErrTypeMismatch, value, formatType(bkey.Type)),
			}
		}
		return value, nil
	}

	s.metrics.ObserveScope(scopeSession.String(), false)

	value, err := create()
	if err != nil {
		return nil, err
	}

	session.Put(key, value)
	return value, nil
}
