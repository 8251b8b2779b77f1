package inject

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// Source supplies configuration key/value pairs. Sources are loaded once
// at build; later sources win over earlier ones.
type Source interface {
	Load() (map[string]string, error)
}

// PropertiesSource reads a text properties file: UTF-8, one key=value
// per line, '#' comments. A missing file is not an error; it is logged
// and skipped.
type PropertiesSource struct {
	Path string
}

func (s PropertiesSource) Load() (map[string]string, error) {
	if skipMissing(s.Path) {
		return nil, nil
	}
	p, err := properties.LoadFile(s.Path, properties.UTF8)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

// YAMLSource reads a YAML file and flattens nested mappings into dotted
// keys, so `server: {port: 80}` becomes `server.port=80`. A missing file
// is logged and skipped.
type YAMLSource struct {
	Path string
}

func (s YAMLSource) Load() (map[string]string, error) {
	if skipMissing(s.Path) {
		return nil, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := map[string]string{}
	flattenYAML("", doc, out)
	return out, nil
}

func flattenYAML(prefix string, doc map[string]any, out map[string]string) {
	for key, value := range doc {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenYAML(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(value)
	}
}

// DotenvSource reads a .env file. A missing file is logged and skipped.
type DotenvSource struct {
	Path string
}

func (s DotenvSource) Load() (map[string]string, error) {
	if skipMissing(s.Path) {
		return nil, nil
	}
	return godotenv.Read(s.Path)
}

// EnvSource reads process environment variables. Only variables with the
// given prefix are taken; the prefix is stripped and the remainder is
// lowercased with underscores mapped to dots, so with prefix "APP_" the
// variable APP_SERVER_PORT supplies the key "server.port".
type EnvSource struct {
	Prefix string
}

func (s EnvSource) Load() (map[string]string, error) {
	out := map[string]string{}
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || (s.Prefix != "" && !strings.HasPrefix(key, s.Prefix)) {
			continue
		}
		key = strings.TrimPrefix(key, s.Prefix)
		key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
		out[key] = value
	}
	return out, nil
}

func skipMissing(path string) bool {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Info("no configuration file found", "path", path)
		return true
	}
	return false
}
