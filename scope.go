package inject

// Scope governs the lifetime of instances produced through a ClassBinding.
//
// Obtain returns the instance cached for b, or calls create and caches its
// result. create performs the full construction, including dependency
// resolution, and must be called at most once per cache slot. A failed
// create must not be cached.
type Scope interface {
	Obtain(b Binding, create func() (any, error)) (any, error)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(b Binding, create func() (any, error)) (any, error)

// Obtain calls f(b, create).
func (f ScopeFunc) Obtain(b Binding, create func() (any, error)) (any, error) {
	return f(b, create)
}

// Prototype creates a new instance on every resolution. It is the default
// scope of class bindings.
var Prototype Scope = prototypeScope{}

type prototypeScope struct{}

func (prototypeScope) Obtain(_ Binding, create func() (any, error)) (any, error) {
	return create()
}

// SessionScope caches instances in an externally supplied Session. The
// session is attached after the bindings are declared, usually once per
// request or user session.
type SessionScope interface {
	Scope

	// SetSession attaches s. A nil session detaches the current one.
	SetSession(s Session)

	// Session returns the attached session, or nil.
	Session() Session
}

// scopeKind records which scope a class binding asked for. Singleton and
// session scopes are owned by the binder and looked up at resolution time.
type scopeKind int

const (
	scopeDefault scopeKind = iota
	scopePrototype
	scopeSingleton
	scopeSession
	scopeCustom
)

func (k scopeKind) String() string {
	switch k {
	case scopeDefault, scopePrototype:
		return "prototype"
	case scopeSingleton:
		return "singleton"
	case scopeSession:
		return "session"
	default:
		return "custom"
	}
}
