package metadata

import (
	"fmt"
	"reflect"
)

var _ error = Error{}

// Error reports invalid metadata: a constructor that cannot be analyzed,
// a bad option, or an inconsistent convention.
type Error struct {
	Type      reflect.Type
	Operation string // "analyze", "register", "configure", "properties", "implemented-by", ...
	Cause     error
}

func (e Error) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("metadata %s failed for %s: %v", e.Operation, e.Type, e.Cause)
	}
	return fmt.Sprintf("metadata %s failed: %v", e.Operation, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}
