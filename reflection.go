package inject

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	typetostring "github.com/samber/go-type-to-string"
)

// The reflection adapter. Everything the rest of the package knows about
// a component type is collected here once, at build time: its injection
// points, its configuration points, its embedded ancestors and how to
// construct and populate an instance of it.

var keyedType = elem[Keyed]()

// injectionPoint is a field the container populates with another component.
type injectionPoint struct {
	index    []int
	typ      reflect.Type
	minState State
	required bool // a with-state tag makes the dependency mandatory
	name     string
}

// configPoint is a field populated from the configuration binder.
type configPoint struct {
	index    []int
	typ      reflect.Type
	name     string
	fallback string
}

// componentType is the reflected description of a registered component.
type componentType struct {
	rtype   reflect.Type // the struct type
	name    string
	injects []injectionPoint
	configs []configPoint
}

// describe builds the descriptor for a component struct type. Fields of
// embedded structs are included, so points declared by ancestors are
// inherited.
func describe(rtype reflect.Type) (*componentType, error) {
	if rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}
	if rtype.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct type", ErrNotInstantiable, rtype)
	}

	ct := &componentType{rtype: rtype, name: typeName(rtype)}
	if err := ct.scan(rtype, nil); err != nil {
		return nil, err
	}
	return ct, nil
}

func (ct *componentType) scan(t reflect.Type, prefix []int) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(slices.Clone(prefix), i)

		if tag, ok := field.Tag.Lookup("inject"); ok {
			point := injectionPoint{index: index, typ: field.Type, minState: Created, name: field.Name}
			if tag != "" {
				state, err := ParseState(tag)
				if err != nil {
					return fmt.Errorf("field %s of %s: %w", field.Name, ct.name, err)
				}
				point.minState = state
				point.required = true
			}
			ct.injects = append(ct.injects, point)
			continue
		}

		if name, ok := field.Tag.Lookup("config"); ok {
			if name == "" {
				return fmt.Errorf("%w: field %s of %s has an empty config name", ErrInvalidTag, field.Name, ct.name)
			}
			ct.configs = append(ct.configs, configPoint{
				index:    index,
				typ:      field.Type,
				name:     name,
				fallback: field.Tag.Get("default"),
			})
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := ct.scan(field.Type, index); err != nil {
				return err
			}
		}
	}
	return nil
}

// newInstance constructs a fresh zero instance, returned as a pointer.
func (ct *componentType) newInstance() reflect.Value {
	return reflect.New(ct.rtype)
}

// declaredKeys collects the canonical keys declared by t or by any of its
// embedded ancestors, deduplicated in declaration order. Declarations
// must be readable from a zero instance.
func declaredKeys(t reflect.Type) []Key {
	var out []Key
	seen := map[Key]bool{}
	for _, ancestor := range ancestors(t) {
		if !reflect.PointerTo(ancestor).Implements(keyedType) {
			continue
		}
		for _, k := range reflect.New(ancestor).Interface().(Keyed).InjectKeys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// ancestors returns t followed by every struct it transitively embeds,
// depth-first in field order.
func ancestors(t reflect.Type) []reflect.Type {
	out := []reflect.Type{t}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous || field.Type.Kind() != reflect.Struct {
			continue
		}
		out = append(out, ancestors(field.Type)...)
	}
	return out
}

// embedPath returns the field index path from struct s down to the
// embedded ancestor a, if any.
func embedPath(s, a reflect.Type) ([]int, bool) {
	for i := 0; i < s.NumField(); i++ {
		field := s.Field(i)
		if !field.Anonymous || field.Type.Kind() != reflect.Struct {
			continue
		}
		if field.Type == a {
			return []int{i}, true
		}
		if rest, ok := embedPath(field.Type, a); ok {
			return append([]int{i}, rest...), true
		}
	}
	return nil, false
}

// assignableTo reports whether an instance of the concrete struct type
// satisfies a lookup of target. Interfaces go through the method set of
// the pointer type; struct and pointer-to-struct targets match the
// concrete type itself or any embedded ancestor.
func assignableTo(concrete, target reflect.Type) bool {
	switch target.Kind() {
	case reflect.Interface:
		return reflect.PointerTo(concrete).Implements(target)
	case reflect.Pointer:
		if target.Elem().Kind() != reflect.Struct {
			return false
		}
		if concrete == target.Elem() {
			return true
		}
		_, ok := embedPath(concrete, target.Elem())
		return ok
	case reflect.Struct:
		if concrete == target {
			return true
		}
		_, ok := embedPath(concrete, target)
		return ok
	default:
		return false
	}
}

// view returns the instance (a pointer value) seen as target: the pointer
// itself for interfaces and exact pointer matches, the address of the
// embedded ancestor for ancestor lookups.
func view(instance reflect.Value, target reflect.Type) (reflect.Value, bool) {
	concrete := instance.Type().Elem()
	switch target.Kind() {
	case reflect.Interface:
		if instance.Type().Implements(target) {
			return instance, true
		}
	case reflect.Pointer:
		if target.Elem().Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		if concrete == target.Elem() {
			return instance, true
		}
		if path, ok := embedPath(concrete, target.Elem()); ok {
			return settable(instance, path).Addr(), true
		}
	case reflect.Struct:
		if concrete == target {
			return instance.Elem(), true
		}
		if path, ok := embedPath(concrete, target); ok {
			return settable(instance, path), true
		}
	}
	return reflect.Value{}, false
}

// settable returns a writable value for the field at index, bypassing
// the unexported-field restriction when necessary.
func settable(ptr reflect.Value, index []int) reflect.Value {
	field := ptr.Elem().FieldByIndex(index)
	if !field.CanSet() {
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	return field
}

func typeName(t reflect.Type) string {
	return typetostring.GetReflectType(t)
}
