package inject_test

import (
	"errors"
	"reflect"
	"sync"

	"github.com/fenrik/inject"
)

var errTest = errors.New("test error")

// TypeMapper is the lookup contract of the mapper fixtures.
type TypeMapper interface {
	DatabaseType() reflect.Type
}

// StringIdentityMapper maps strings onto themselves.
type StringIdentityMapper struct{}

func (*StringIdentityMapper) DatabaseType() reflect.Type { return reflect.TypeOf("") }

// TypeMapperComponent indexes the installed mappers by database type.
type TypeMapperComponent struct {
	Identity *StringIdentityMapper `inject:""`

	mappers map[reflect.Type]TypeMapper
}

func (c *TypeMapperComponent) LifecycleHooks() []inject.Hook {
	return []inject.Hook{inject.NewHook(inject.Initialized, c.install)}
}

func (c *TypeMapperComponent) install(mapper *StringIdentityMapper) error {
	c.mappers = map[reflect.Type]TypeMapper{mapper.DatabaseType(): mapper}
	return nil
}

func (c *TypeMapperComponent) DatabaseTypeMappers() map[reflect.Type]TypeMapper {
	return c.mappers
}

// CycleA, CycleB and CycleC reference each other pairwise; the container
// must wire all six references without stalling.
type CycleA struct {
	B *CycleB `inject:""`
	C *CycleC `inject:""`
}

type CycleB struct {
	A *CycleA `inject:""`
	C *CycleC `inject:""`
}

type CycleC struct {
	A *CycleA `inject:""`
	B *CycleB `inject:""`
}

// ParentType and ChildType model lookup through an embedded ancestor.
type ParentType struct {
	A *CycleA `inject:""`
}

type ChildType struct {
	ParentType

	B *CycleB `inject:""`
}

// Foo is a lookup contract with a canonical key, declared once in
// fooKeyed and inherited by everything that embeds it.
type Foo interface {
	Foo() string
}

type fooKeyed struct{}

func (fooKeyed) InjectKeys() []inject.Key {
	return []inject.Key{inject.KeyFor[Foo]()}
}

type Bar struct{ fooKeyed }

func (*Bar) Foo() string { return "bar" }

type Baz struct{ fooKeyed }

func (*Baz) Foo() string { return "baz" }

// FooNoOverwrite declares the Foo key without clearing the incumbents.
type FooNoOverwrite struct{}

func (*FooNoOverwrite) Foo() string { return "fallback" }

func (FooNoOverwrite) InjectKeys() []inject.Key {
	return []inject.Key{inject.KeyFor[Foo]().NoOverwrite()}
}

// deadlockLeft and deadlockRight each demand the other to be Started
// before advancing at all; the engine must report the stall.
type deadlockLeft struct {
	Right *deadlockRight `inject:"started"`
}

type deadlockRight struct {
	Left *deadlockLeft `inject:"started"`
}

// Recorder collects lifecycle events from the fixtures that inject it.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Tracked reports every state transition it goes through to the
// Recorder, tagged with a label from configuration.
type Tracked struct {
	Recorder *Recorder `inject:""`
	Label    string    `config:"label" default:"tracked"`
}

func (t *Tracked) LifecycleHooks() []inject.Hook {
	return []inject.Hook{
		inject.NewHook(inject.Initialized, func() error { t.Recorder.Add(t.Label + ":initialized"); return nil }),
		inject.NewHook(inject.Resolved, func() error { t.Recorder.Add(t.Label + ":resolved"); return nil }),
		inject.NewHook(inject.Started, func() error { t.Recorder.Add(t.Label + ":started"); return nil }),
		inject.NewHook(inject.Stopped, func() error { t.Recorder.Add(t.Label + ":stopped"); return nil }),
	}
}

func buildContainer(types ...inject.Type) (*inject.Container, error) {
	builder := inject.NewBuilder()
	for _, t := range types {
		builder.Put(t)
	}
	return builder.Build()
}

func mustBuild(types ...inject.Type) *inject.Container {
	c, err := buildContainer(types...)
	if err != nil {
		panic(err)
	}
	return c
}
