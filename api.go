package inject

import (
	"fmt"
	"iter"
	"reflect"

	typetostring "github.com/samber/go-type-to-string"
)

// Type identifies a Go type to the builder and the container. For
// registration it must name a struct type; for lookup it may name a
// struct, a pointer to a struct, or an interface.
type Type struct {
	t    reflect.Type
	name string
}

// Of returns the Type handle for T.
func Of[T any]() Type {
	return Type{t: elem[T](), name: typetostring.GetType[T]()}
}

func typeOf(t reflect.Type) Type {
	return Type{t: t, name: typeName(t)}
}

// Name returns the canonical name of the type.
func (t Type) Name() string { return t.name }

func (t Type) String() string { return t.name }

// Bundle enumerates a group of component types to register together.
type Bundle interface {
	Injectables() []Type
}

// Get retrieves the first instance assignable to T, newest registration
// first. The second return reports whether one was found.
func Get[T any](c *Container) (T, bool) {
	v, ok := c.Get(Of[T]())
	if !ok {
		return empty[T](), false
	}
	return v.(T), true
}

// Resolve is like Get but fails with ErrMissingImplementation when no
// assignable instance exists.
func Resolve[T any](c *Container) (T, error) {
	v, err := c.find(elem[T](), true)
	if err != nil {
		return empty[T](), err
	}
	casted, ok := v.Interface().(T)
	if !ok {
		return empty[T](), fmt.Errorf("%w of %s", ErrMissingImplementation, elem[T]())
	}
	return casted, nil
}

// MustResolve is like Resolve but panics if an error occurs.
func MustResolve[T any](c *Container) T {
	return must(Resolve[T](c))
}

// Stream yields every instance assignable to T, newest registration
// first.
func Stream[T any](c *Container) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range c.Stream(Of[T]()) {
			if !yield(v.(T)) {
				return
			}
		}
	}
}
