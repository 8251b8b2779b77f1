package inject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// DefaultConfigFile is where the builder looks for properties unless
// WithConfigFileLocation changes it.
const DefaultConfigFile = "settings.properties"

var settingsValidator = validator.New()

// settings is validated before a build starts.
type settings struct {
	ConfigFile string `validate:"required"`
}

// Builder collects registrations, configuration sources and overrides,
// and materializes an immutable Container on Build. Any failure during
// construction, binding, wiring or startup aborts the build; no
// partially-started container is ever returned.
type Builder struct {
	reg     *registry
	params  map[string]string
	sources []Source
	cfg     settings
	logger  *slog.Logger
	errs    []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		reg:    newRegistry(),
		params: map[string]string{},
		cfg:    settings{ConfigFile: DefaultConfigFile},
		logger: slog.Default(),
	}
}

// Put registers a component type. It is filed under its own name, under
// every embedded ancestor that declares keys, and under each declared
// key with that key's overwrite policy. Registering the same type twice
// is idempotent.
func (b *Builder) Put(t Type) *Builder {
	concrete := t.t
	if concrete.Kind() == reflect.Pointer {
		concrete = concrete.Elem()
	}
	if concrete.Kind() != reflect.Struct {
		b.errs = append(b.errs, fmt.Errorf("%w: %s is not a struct type", ErrNotInstantiable, t))
		return b
	}

	appended := map[Key]bool{}
	for _, ancestor := range ancestors(concrete) {
		keys := declaredKeys(ancestor)
		if ancestor != concrete && len(keys) == 0 {
			continue
		}
		b.reg.append(typeName(ancestor), concrete, true)
		for _, key := range keys {
			if appended[key] {
				continue
			}
			appended[key] = true
			b.reg.append(key.name, concrete, key.overwrite)
		}
	}
	return b
}

// PutKey registers a component type under an explicit key only,
// replacing that key's candidates.
func (b *Builder) PutKey(key string, t Type) *Builder {
	concrete := t.t
	if concrete.Kind() == reflect.Pointer {
		concrete = concrete.Elem()
	}
	if concrete.Kind() != reflect.Struct {
		b.errs = append(b.errs, fmt.Errorf("%w: %s is not a struct type", ErrNotInstantiable, t))
		return b
	}
	b.reg.append(key, concrete, true)
	return b
}

// PutBundle registers every type the bundle enumerates, as by Put.
func (b *Builder) PutBundle(bundle Bundle) *Builder {
	for _, t := range bundle.Injectables() {
		b.Put(t)
	}
	return b
}

// PutParam records a configuration override that beats every source.
func (b *Builder) PutParam(key, value string) *Builder {
	b.params[key] = value
	return b
}

// WithConfigFileLocation sets the properties file path.
func (b *Builder) WithConfigFileLocation(path string) *Builder {
	b.cfg.ConfigFile = path
	return b
}

// WithConfigSource appends a configuration source. Sources load in the
// order they were added, after the properties file; later sources win.
func (b *Builder) WithConfigSource(source Source) *Builder {
	b.sources = append(b.sources, source)
	return b
}

// WithLogger sets the logger the container and its engine trace to.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build materializes the container: instantiates every registered type,
// binds configuration, wires references and drives every component to
// Started.
func (b *Builder) Build() (*Container, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := settingsValidator.Struct(&b.cfg); err != nil {
		return nil, err
	}

	sources := append([]Source{PropertiesSource{Path: b.cfg.ConfigFile}}, b.sources...)
	binder, err := newBinder(sources, b.params, b.logger)
	if err != nil {
		return nil, err
	}

	types := b.reg.finalize()
	b.logger.Debug("creating injectable instances", "count", len(types))

	c := &Container{logger: b.logger}
	for _, rtype := range types {
		ct, err := describe(rtype)
		if err != nil {
			return nil, err
		}

		instance := ct.newInstance()
		if err := binder.bind(instance, ct); err != nil {
			return nil, err
		}
		b.logger.Debug("instance created", "component", ct.name)

		n := &node{ct: ct, value: instance, state: Created}
		if provider, ok := instance.Interface().(HookProvider); ok {
			n.hooks = provider.LifecycleHooks()
		}

		c.nodes = append(c.nodes, n)
		c.lookup = append([]*node{n}, c.lookup...)
		c.injectables = append(c.injectables, rtype)
	}

	if err := c.wire(); err != nil {
		return nil, err
	}

	c.graph, err = newGraph(c)
	if err != nil {
		return nil, err
	}

	engine := &engine{container: c, graph: c.graph, logger: b.logger}
	if err := engine.start(context.Background()); err != nil {
		return nil, err
	}

	b.logger.Debug("all components configured", "count", len(c.nodes))
	return c, nil
}
