package inject

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// engine drives the container's nodes through the lifecycle states. Both
// walks are passes over the node set with a no-progress check: if a full
// pass moves nothing while work remains, the graph is stuck and the walk
// fails, listing the laggards.
type engine struct {
	container *Container
	graph     *graph
	logger    *slog.Logger
}

// start advances every node from Created to Started, one state at a
// time. Within a pass, nodes advance in creation order.
func (e *engine) start(ctx context.Context) error {
	for target := Initialized; target <= Started; target++ {
		for {
			var unfinished []*node
			for _, n := range e.graph.nodes {
				if n.state < target {
					unfinished = append(unfinished, n)
				}
			}
			if len(unfinished) == 0 {
				break
			}

			progressed := false
			for _, n := range unfinished {
				next, _ := n.state.Next()
				if !e.graph.ready(n, next) {
					continue
				}
				if err := e.runHooks(ctx, n, next); err != nil {
					return err
				}
				n.state = next
				progressed = true
				e.logger.Debug("state transition", "component", n.ct.name, "state", next.String())
			}

			if !progressed {
				return e.stuck(unfinished)
			}
		}
	}
	return nil
}

// stop advances every node straight from its current state to Stopped.
// Nodes are visited in reverse creation order. Only the edges of Stopped
// hooks can hold a node back; field edges are not consulted.
func (e *engine) stop(ctx context.Context) error {
	for {
		var unfinished []*node
		for i := len(e.graph.nodes) - 1; i >= 0; i-- {
			if n := e.graph.nodes[i]; n.state != Stopped {
				unfinished = append(unfinished, n)
			}
		}
		if len(unfinished) == 0 {
			return nil
		}

		progressed := false
		for _, n := range unfinished {
			if !e.graph.readyToStop(n) {
				continue
			}
			if err := e.runHooks(ctx, n, Stopped); err != nil {
				return err
			}
			n.state = Stopped
			progressed = true
			e.logger.Debug("state transition", "component", n.ct.name, "state", Stopped.String())
		}

		if !progressed {
			return e.stuck(unfinished)
		}
	}
}

// runHooks invokes every hook on n targeting state, in declaration order.
func (e *engine) runHooks(ctx context.Context, n *node, state State) error {
	for _, h := range n.hooks {
		if h.state != state {
			continue
		}
		if err := e.invoke(ctx, n, h); err != nil {
			return err
		}
	}
	return nil
}

// invoke resolves the hook's parameters at the moment of invocation and
// calls it. Parameters with a declared state are mandatory; the rest
// fall back to their zero value when unresolvable.
func (e *engine) invoke(ctx context.Context, n *node, h Hook) error {
	params, hasCtx, err := h.signature()
	if err != nil {
		return fmt.Errorf("%s: %w", n.ct.name, err)
	}

	args := make([]reflect.Value, 0, len(params)+1)
	if hasCtx {
		args = append(args, reflect.ValueOf(ctx))
	}
	for i, paramType := range params {
		_, declared := h.paramStates[i]
		value, err := e.container.find(paramType, declared)
		if err != nil {
			return fmt.Errorf("hook %s on %s: %w", h.name(), n.ct.name, err)
		}
		if !value.IsValid() {
			value = reflect.Zero(paramType)
		}
		args = append(args, value)
	}

	e.logger.Debug("invoking hook", "component", n.ct.name, "state", h.state.String(), "hook", h.name())

	out := h.fn.Call(args)
	if len(out) == 1 && !out[0].IsNil() {
		return fmt.Errorf("%w: %s entering %s: %w",
			ErrHookInvocation, n.ct.name, h.state, out[0].Interface().(error))
	}
	return nil
}

// stuck builds the terminal no-progress error: the laggards with their
// current states, and the cause when it can be pinned on a cycle.
func (e *engine) stuck(stalled []*node) error {
	parts := make([]string, 0, len(stalled))
	for _, n := range stalled {
		parts = append(parts, fmt.Sprintf("%s (%s)", n.ct.name, n.state))
	}
	slices.Sort(parts)

	err := fmt.Errorf("%w; stalled components: %s", ErrStuckGraph, strings.Join(parts, ", "))
	if cycles := attributeCycles(stalled); len(cycles) > 0 {
		err = fmt.Errorf("%w; %w: %s", err, ErrCyclicReference, strings.Join(cycles, "; "))
	}
	return err
}
