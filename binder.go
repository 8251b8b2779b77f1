package inject

import (
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Char is a single-character configuration value.
type Char rune

// Path is a filesystem path configuration value, taken literally.
type Path string

var (
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf((*url.URL)(nil))
	charType     = reflect.TypeOf(Char(0))
	pathType     = reflect.TypeOf(Path(""))
)

// binder resolves configuration values and assigns them to configuration
// points. Precedence, highest first: programmatic params, then sources
// with later-added ones beating earlier ones (the properties file is
// always added first, so it ranks lowest), then the field's declared
// default.
type binder struct {
	values map[string]string
	logger *slog.Logger
}

func newBinder(sources []Source, params map[string]string, logger *slog.Logger) (*binder, error) {
	values := map[string]string{}
	for _, source := range sources {
		m, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigSource, err)
		}
		maps.Copy(values, m)
	}
	maps.Copy(values, params)
	return &binder{values: values, logger: logger}, nil
}

// bind coerces and assigns every configuration point on a freshly
// created instance. Runs during creation, before any lifecycle hook.
func (b *binder) bind(ptr reflect.Value, ct *componentType) error {
	for _, point := range ct.configs {
		raw, ok := b.values[point.name]
		if !ok {
			raw = point.fallback
		}
		value, err := coerce(raw, point.typ)
		if err != nil {
			return fmt.Errorf("parameter %q of %s: %w", point.name, ct.name, err)
		}
		settable(ptr, point.index).Set(value)
		b.logger.Debug("configuration bound", "component", ct.name, "name", point.name, "value", raw)
	}
	return nil
}

// coerce parses raw into the declared type of a configuration point.
func coerce(raw string, t reflect.Type) (reflect.Value, error) {
	switch t {
	case durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q is not a duration", ErrConfigCoercion, raw)
		}
		return reflect.ValueOf(d), nil

	case urlType:
		u, err := url.Parse(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: URL %q is malformed", ErrConfigCoercion, raw)
		}
		return reflect.ValueOf(u), nil

	case charType:
		runes := []rune(raw)
		if len(runes) != 1 {
			return reflect.Value{}, fmt.Errorf("%w: %q is not exactly one character", ErrConfigCoercion, raw)
		}
		return reflect.ValueOf(Char(runes[0])), nil

	case pathType:
		return reflect.ValueOf(Path(raw)), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		// Permissive on purpose: anything but "true" is false.
		return reflect.ValueOf(strings.EqualFold(raw, "true")).Convert(t), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrConfigCoercion, raw, t.Kind())
		}
		return reflect.ValueOf(n).Convert(t), nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrConfigCoercion, raw, t.Kind())
		}
		return reflect.ValueOf(f).Convert(t), nil

	case reflect.String:
		return reflect.ValueOf(raw).Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: unsupported configuration type %s", ErrConfigCoercion, t)
}
