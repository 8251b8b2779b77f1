package inject

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// node is one instantiated component: its description, its instance and
// how far through the lifecycle it has come.
type node struct {
	ct    *componentType
	value reflect.Value // pointer to the instance
	state State
	hooks []Hook
	edges []edge
}

// Container owns every component it created and answers lookups over
// them. It is immutable after Build: the only mutating operation is
// Stop, which must not run concurrently with lookups.
type Container struct {
	injectables []reflect.Type
	nodes       []*node // creation order
	lookup      []*node // newest-created first; lookups scan this
	graph       *graph
	logger      *slog.Logger
}

var (
	containerType = reflect.TypeOf((*Container)(nil))
	injectorType  = elem[Injector]()
)

// find returns the first instance assignable to target. The container
// itself answers lookups of *Container and Injector. When required, a
// miss is an ErrMissingImplementation; otherwise it is a zero value.
func (c *Container) find(target reflect.Type, required bool) (reflect.Value, error) {
	if target == containerType || target == injectorType {
		return reflect.ValueOf(c), nil
	}
	for _, n := range c.lookup {
		if v, ok := view(n.value, target); ok {
			return v, nil
		}
	}
	if required {
		return reflect.Value{}, fmt.Errorf("%w of %s", ErrMissingImplementation, target)
	}
	return reflect.Value{}, nil
}

// nodeFor resolves the node a dependency edge points at: the first node
// whose type is assignable to target. Container lookups have no node.
func (c *Container) nodeFor(target reflect.Type) *node {
	if target == containerType || target == injectorType {
		return nil
	}
	for _, n := range c.lookup {
		if assignableTo(n.ct.rtype, target) {
			return n
		}
	}
	return nil
}

// Get retrieves the first instance assignable to t, newest registration
// first.
func (c *Container) Get(t Type) (any, bool) {
	v, err := c.find(t.t, false)
	if err != nil || !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// Stream yields every instance assignable to t, newest registration
// first. A lookup of the container type yields the container alone.
func (c *Container) Stream(t Type) iter.Seq[any] {
	return func(yield func(any) bool) {
		if t.t == containerType || t.t == injectorType {
			yield(c)
			return
		}
		for _, n := range c.lookup {
			if v, ok := view(n.value, t.t); ok {
				if !yield(v.Interface()) {
					return
				}
			}
		}
	}
}

// Injectables yields the registered component types in registration
// order.
func (c *Container) Injectables() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, t := range c.injectables {
			if !yield(typeOf(t)) {
				return
			}
		}
	}
}

// InjectInto populates the inject-tagged fields of a caller-owned struct
// with the container's instances. The target must be a non-nil pointer
// to a struct.
func (c *Container) InjectInto(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil pointer to a struct, got %T", ErrNotInstantiable, target)
	}
	ct, err := describe(v.Type().Elem())
	if err != nil {
		return err
	}
	return c.wireInstance(v, ct)
}

// wire assigns every injection field on every instance. All instances
// exist before the first field is set, so mutual references are legal.
func (c *Container) wire() error {
	for _, n := range c.nodes {
		if err := c.wireInstance(n.value, n.ct); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) wireInstance(ptr reflect.Value, ct *componentType) error {
	for _, point := range ct.injects {
		value, err := c.find(point.typ, point.required)
		if err != nil {
			return fmt.Errorf("field %s of %s: %w", point.name, ct.name, err)
		}
		if !value.IsValid() {
			continue
		}
		settable(ptr, point.index).Set(value)
	}
	return nil
}

// HealthCheck asks every component implementing HealthChecker to verify
// its health. Checks run concurrently; the first failure is returned.
func (c *Container) HealthCheck(ctx context.Context) error {
	var group errgroup.Group
	for _, n := range c.nodes {
		checker, ok := n.value.Interface().(HealthChecker)
		if !ok {
			continue
		}
		name := n.ct.name
		group.Go(func() error {
			if err := checker.HealthCheck(ctx); err != nil {
				c.logger.Warn("health check failed", "component", name, "error", err)
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// Stop drives every component to Stopped, visiting them in reverse
// creation order; inject-tagged field dependencies do not affect that
// order. Already-stopped components stay stopped.
func (c *Container) Stop(ctx context.Context) error {
	engine := &engine{container: c, graph: c.graph, logger: c.logger}
	return engine.stop(ctx)
}
