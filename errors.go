package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are wrapped in the typed errors below when returned.

var (
	// Resolution errors.
	ErrBindingNotFound       = errors.New("no binding found")
	ErrNoEnvironmentFallback = errors.New("no implementation for the active environment")
	ErrInvalidProvider       = errors.New("invalid provider")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrNotConstructible      = errors.New("type is not constructible")
	ErrSessionNotAttached    = errors.New("no session attached")
	ErrInjectorClosed        = errors.New("injector has been closed")

	// Configuration errors.
	ErrNilType        = errors.New("type cannot be nil")
	ErrNilTarget      = errors.New("target cannot be nil")
	ErrNotAssignable  = errors.New("target is not assignable to the bound type")
	ErrInvalidClosure = errors.New("invalid closure")
	ErrNilScope       = errors.New("scope cannot be nil")
	ErrNilModule      = errors.New("module cannot be nil")
	ErrNoRegistrar    = errors.New("metadata provider does not accept constructor registration")
)

var (
	_ error = BindingError{}
	_ error = ConfigurationError{}
	_ error = SessionError{}
	_ error = ConstructorError{}
	_ error = ModuleError{}
	_ error = DisposalError{}
	_ error = CircularDependencyError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// BindingError reports that a request could not be resolved.
type BindingError struct {
	Key   Key
	Param string // the parameter or property being resolved, if any
	Cause error
}

func (e BindingError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("cannot resolve %s for %s: %v", e.Key, e.Param, e.Cause)
	}
	return fmt.Sprintf("cannot resolve %s: %v", e.Key, e.Cause)
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// ConfigurationError reports an unusable binding configuration. It is
// recorded on the binding and returned by Binder.Injector.
type ConfigurationError struct {
	Key       Key
	Operation string // "to", "to-instance", "to-closure", "in", ...
	Cause     error
}

func (e ConfigurationError) Error() string {
	if e.Key.Type == nil {
		return fmt.Sprintf("invalid configuration (%s): %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("invalid configuration of %s (%s): %v", e.Key, e.Operation, e.Cause)
}

func (e ConfigurationError) Unwrap() error {
	return e.Cause
}

// SessionError reports a session scoped binding resolved while no session
// is attached.
type SessionError struct {
	Key Key
}

func (e SessionError) Error() string {
	return fmt.Sprintf("cannot resolve session scoped %s: %v (call Injector.SetSession first)", e.Key, ErrSessionNotAttached)
}

func (e SessionError) Unwrap() error {
	return ErrSessionNotAttached
}

// CircularDependencyError reports a cycle on a resolution path.
type CircularDependencyError = graph.CircularDependencyError

// ConstructorError wraps an error returned by a constructor, closure or provider.
type ConstructorError struct {
	Type  reflect.Type
	Cause error
}

func (e ConstructorError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("producing value: %v", e.Cause)
	}
	return fmt.Sprintf("constructing %s: %v", formatType(e.Type), e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// ModuleError wraps errors from module installation.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// DisposalError aggregates errors from closing singleton instances.
type DisposalError struct {
	Errors []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("disposal failed: %v", e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("disposal failed with %d errors:", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// IsNotFound reports whether err means that no binding or usable
// convention exists for a request.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBindingNotFound) || errors.Is(err, ErrNoEnvironmentFallback)
}

// IsConfigurationError reports whether err contains a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cerr ConfigurationError
	return errors.As(err, &cerr)
}

// IsSessionNotAttached reports whether err was caused by resolving a
// session scoped binding without a session.
func IsSessionNotAttached(err error) bool {
	return errors.Is(err, ErrSessionNotAttached)
}

// IsCircular reports whether err contains a CircularDependencyError.
func IsCircular(err error) bool {
	var cerr CircularDependencyError
	return errors.As(err, &cerr)
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
