package inject

import (
	"reflect"
	"slices"
)

// registry accumulates type registrations as ordered candidate lists per
// key. A touched key moves to the back of the iteration order. The lists
// only decide which types are instantiated and in what order; lookups do
// not consult them.
type registry struct {
	order []string
	lists map[string][]reflect.Type
}

func newRegistry() *registry {
	return &registry{lists: map[string][]reflect.Type{}}
}

// append files t under key. With overwrite the incumbent candidates are
// cleared first; without it they remain resolvable behind the newcomer.
func (r *registry) append(key string, t reflect.Type, overwrite bool) {
	if _, seen := r.lists[key]; seen {
		i := slices.Index(r.order, key)
		r.order = slices.Delete(r.order, i, i+1)
	}
	list := r.lists[key]
	if overwrite {
		list = nil
	}
	r.lists[key] = append(list, t)
	r.order = append(r.order, key)
}

// finalize flattens the candidate lists into the deduplicated set of
// types to instantiate, preserving first-seen order.
func (r *registry) finalize() []reflect.Type {
	seen := map[reflect.Type]bool{}
	var out []reflect.Type
	for _, key := range r.order {
		for _, t := range r.lists[key] {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
