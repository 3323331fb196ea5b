package inject

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// Key identifies a dependency request: a type, optionally qualified by a
// name. An unnamed key and a key named "" are different keys.
type Key struct {
	Type  reflect.Type
	Name  string
	Named bool

	// elem is the element type of a typed list or map key.
	elem reflect.Type
}

// KeyOf returns the key for t, qualified by name when one is given.
func KeyOf(t reflect.Type, name ...string) Key {
	if len(name) > 0 {
		return Key{Type: t, Name: name[0], Named: true}
	}
	return Key{Type: t}
}

// TypeOf returns the reflect.Type of T. Unlike reflect.TypeOf it works for
// interface types.
//
//	inject.TypeOf[Tire]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Constants, lists and maps live in their own namespaces. Their keys use
// these marker types with the label as name.
type (
	constantNamespace struct{}
	listNamespace     struct{}
	mapNamespace      struct{}
)

var (
	constantNamespaceType = reflect.TypeOf(constantNamespace{})
	listNamespaceType     = reflect.TypeOf(listNamespace{})
	mapNamespaceType      = reflect.TypeOf(mapNamespace{})
)

func constantKey(name string) Key { return Key{Type: constantNamespaceType, Name: name, Named: true} }
func listKey(label string) Key    { return Key{Type: listNamespaceType, Name: label, Named: true} }
func mapKey(label string) Key     { return Key{Type: mapNamespaceType, Name: label, Named: true} }

// Typed lists and maps are keyed by their element type, apart from the
// labeled ones.
func listKeyOf(elem reflect.Type) Key { return Key{Type: listNamespaceType, elem: elem} }
func mapKeyOf(elem reflect.Type) Key  { return Key{Type: mapNamespaceType, elem: elem} }

// typed reports whether k requests an instance of k.Type, as opposed to a
// constant, list or map.
func (k Key) typed() bool {
	switch k.Type {
	case nil, constantNamespaceType, listNamespaceType, mapNamespaceType:
		return false
	}
	return true
}

// String describes the key. Distinct types may print the same, so it is
// not an identity; see ID.
func (k Key) String() string {
	switch k.Type {
	case constantNamespaceType:
		return fmt.Sprintf("constant(%q)", k.Name)
	case listNamespaceType:
		if k.elem != nil {
			return fmt.Sprintf("list(%s)", k.elem)
		}
		return fmt.Sprintf("list(%q)", k.Name)
	case mapNamespaceType:
		if k.elem != nil {
			return fmt.Sprintf("map(%s)", k.elem)
		}
		return fmt.Sprintf("map(%q)", k.Name)
	}

	if k.Type == nil {
		return "<nil>"
	}

	if k.Named {
		return fmt.Sprintf("%s[name=%q]", k.Type, k.Name)
	}
	return k.Type.String()
}

// ID returns a string that identifies the key within the process: two keys
// have the same ID only when they are equal. Session scopes store instances
// under it.
func (k Key) ID() string {
	if !k.typed() {
		if k.elem != nil {
			return fmt.Sprintf("%s(%s)", k.namespace(), typeID(k.elem))
		}
		return fmt.Sprintf("%s(%q)", k.namespace(), k.Name)
	}

	if k.Named {
		return fmt.Sprintf("%s[name=%q]", typeID(k.Type), k.Name)
	}
	return typeID(k.Type)
}

func (k Key) namespace() string {
	switch k.Type {
	case constantNamespaceType:
		return "constant"
	case listNamespaceType:
		return "list"
	case mapNamespaceType:
		return "map"
	}
	return "<nil>"
}

// typeIDs assigns every type a process-unique name: its package qualified
// name, suffixed with a sequence number when another type already took it.
// Function-local types of one package share a qualified name.
var typeIDs = struct {
	sync.RWMutex
	byType map[reflect.Type]string
	taken  map[string]struct{}
}{
	byType: make(map[reflect.Type]string),
	taken:  make(map[string]struct{}),
}

func typeID(t reflect.Type) string {
	typeIDs.RLock()
	id, ok := typeIDs.byType[t]
	typeIDs.RUnlock()
	if ok {
		return id
	}

	typeIDs.Lock()
	defer typeIDs.Unlock()

	if id, ok := typeIDs.byType[t]; ok {
		return id
	}

	base := qualifiedName(t)
	id = base
	for n := 2; ; n++ {
		if _, taken := typeIDs.taken[id]; !taken {
			break
		}
		id = base + "#" + strconv.Itoa(n)
	}

	typeIDs.byType[t] = id
	typeIDs.taken[id] = struct{}{}
	return id
}

// qualifiedName spells t with full package paths.
func qualifiedName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + qualifiedName(t.Elem())
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + qualifiedName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + qualifiedName(t.Elem())
		}
		return "chan " + qualifiedName(t.Elem())
	default:
		return t.String()
	}
}
