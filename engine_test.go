package inject_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenrik/inject"
)

func TestEngine_HookOrderOnOneComponent(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[Recorder](), inject.Of[Tracked]())

	recorder := inject.MustResolve[*Recorder](c)
	assert.Equal(t,
		[]string{"tracked:initialized", "tracked:resolved", "tracked:started"},
		recorder.Events(),
	)

	require.NoError(t, c.Stop(t.Context()))
	events := recorder.Events()
	assert.Equal(t, "tracked:stopped", events[len(events)-1])
}

// gatedFollower refuses to advance at all until leader has been
// initialized, even though it was registered (and thus created) first.
type gatedFollower struct {
	Recorder *Recorder `inject:""`
	Leader   *leader   `inject:"initialized"`
}

func (g *gatedFollower) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Initialized, func() error { g.Recorder.Add("follower:initialized"); return nil }),
	}
}

type leader struct {
	Recorder *Recorder `inject:""`
}

func (l *leader) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Initialized, func() error { l.Recorder.Add("leader:initialized"); return nil }),
	}
}

func TestEngine_WithStateOrdersTransitions(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[Recorder](), inject.Of[gatedFollower](), inject.Of[leader]())

	recorder := inject.MustResolve[*Recorder](c)
	assert.Equal(t, []string{"leader:initialized", "follower:initialized"}, recorder.Events())
}

func TestEngine_StuckGraph(t *testing.T) {
	t.Parallel()

	_, err := buildContainer(inject.Of[deadlockLeft](), inject.Of[deadlockRight]())

	require.ErrorIs(t, err, inject.ErrStuckGraph)
	require.ErrorIs(t, err, inject.ErrCyclicReference)
	assert.Contains(t, err.Error(), "deadlockLeft")
	assert.Contains(t, err.Error(), "deadlockRight")
}

// overdemanding wants its dependency Started before its own Initialized
// hook may run, which the staged walk can never deliver.
type overdemanding struct{}

func (o *overdemanding) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Initialized, func(*leader) error { return nil }).WithState(0, inject.Started),
	}
}

func TestEngine_UnsatisfiableHookDemand(t *testing.T) {
	t.Parallel()

	_, err := buildContainer(inject.Of[Recorder](), inject.Of[overdemanding](), inject.Of[leader]())

	require.ErrorIs(t, err, inject.ErrStuckGraph)
	assert.Contains(t, err.Error(), "overdemanding")
}

type failingHook struct{}

func (f *failingHook) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Resolved, func() error { return errTest }),
	}
}

func TestEngine_HookFailureAbortsBuild(t *testing.T) {
	t.Parallel()

	_, err := buildContainer(inject.Of[failingHook]())

	require.ErrorIs(t, err, inject.ErrHookInvocation)
	assert.ErrorIs(t, err, errTest)
}

type invalidHook struct{}

func (i *invalidHook) LifecycleHooks() []inject.Hook {
	return []inject.Hook{inject.NewHook(inject.Started, func() string { return "" })}
}

func TestEngine_InvalidHookRejected(t *testing.T) {
	t.Parallel()

	_, err := buildContainer(inject.Of[invalidHook]())
	require.ErrorIs(t, err, inject.ErrInvalidHook)
}

// stopFirst and stopSecond record their shutdown order; the engine stops
// components in reverse creation order.
type stopFirst struct {
	Recorder *Recorder `inject:""`
}

func (s *stopFirst) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Stopped, func() error { s.Recorder.Add("first:stopped"); return nil }),
	}
}

type stopSecond struct {
	Recorder *Recorder `inject:""`
}

func (s *stopSecond) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Stopped, func() error { s.Recorder.Add("second:stopped"); return nil }),
	}
}

func TestEngine_StopReversesCreationOrder(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[Recorder](), inject.Of[stopFirst](), inject.Of[stopSecond]())
	require.NoError(t, c.Stop(t.Context()))

	recorder := inject.MustResolve[*Recorder](c)
	assert.Equal(t, []string{"second:stopped", "first:stopped"}, recorder.Events())
}

func TestEngine_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[Recorder](), inject.Of[stopFirst]())
	require.NoError(t, c.Stop(t.Context()))
	require.NoError(t, c.Stop(t.Context()))

	recorder := inject.MustResolve[*Recorder](c)
	assert.Equal(t, []string{"first:stopped"}, recorder.Events())
}

// ctxHook proves hooks may take a leading context.
type ctxHook struct {
	Recorder *Recorder `inject:""`
}

func (c *ctxHook) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Started, func(ctx context.Context) error {
			if ctx == nil {
				return errTest
			}
			c.Recorder.Add("ctx:ok")
			return nil
		}),
	}
}

func TestEngine_ContextPassedToHooks(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[Recorder](), inject.Of[ctxHook]())

	recorder := inject.MustResolve[*Recorder](c)
	assert.Equal(t, []string{"ctx:ok"}, recorder.Events())
}

func TestEngine_HookParameterInjection(t *testing.T) {
	t.Parallel()

	c := mustBuild(inject.Of[StringIdentityMapper](), inject.Of[TypeMapperComponent]())

	component := inject.MustResolve[*TypeMapperComponent](c)
	mapper := inject.MustResolve[*StringIdentityMapper](c)
	require.Len(t, component.DatabaseTypeMappers(), 1)
	assert.Same(t, mapper, component.DatabaseTypeMappers()[mapper.DatabaseType()])
}
