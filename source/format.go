package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown catalogue format")

// Format turns bytes into a generic document and back.
type Format struct {
	Name       string
	Extensions []string
	Unmarshal  func([]byte) (any, error)
	Marshal    func(any) ([]byte, error)
}

var cborDec = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

var formats = map[string]Format{
	"json": {
		Name:       "json",
		Extensions: []string{".json"},
		Unmarshal:  unmarshalJSON,
		Marshal:    marshalJSON,
	},
	"jsonc": {
		Name:       "jsonc",
		Extensions: []string{".jsonc", ".json5"},
		Unmarshal: func(b []byte) (any, error) {
			return unmarshalJSON(jsonc.ToJSON(b))
		},
		Marshal: marshalJSON,
	},
	"yaml": {
		Name:       "yaml",
		Extensions: []string{".yaml", ".yml"},
		Unmarshal: func(b []byte) (any, error) {
			var v any
			err := yaml.Unmarshal(b, &v)
			return v, err
		},
		Marshal: yaml.Marshal,
	},
	"toml": {
		Name:       "toml",
		Extensions: []string{".toml"},
		Unmarshal: func(b []byte) (any, error) {
			var v map[string]any
			err := toml.Unmarshal(b, &v)
			return v, err
		},
		Marshal: toml.Marshal,
	},
	"cbor": {
		Name:       "cbor",
		Extensions: []string{".cbor"},
		Unmarshal: func(b []byte) (any, error) {
			var v any
			err := cborDec.Unmarshal(b, &v)
			return v, err
		},
		Marshal: cbor.Marshal,
	},
	"msgpack": {
		Name:       "msgpack",
		Extensions: []string{".msgpack", ".mpk"},
		Unmarshal: func(b []byte) (any, error) {
			var v any
			err := msgpack.Unmarshal(b, &v)
			return v, err
		},
		Marshal: msgpack.Marshal,
	},
}

func unmarshalJSON(b []byte) (any, error) {
	var v any
	err := json.Unmarshal(b, &v)
	return v, err
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// FormatFor picks a format by file extension.
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		if slices.Contains(f.Extensions, ext) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// Resolve returns the named format, or the one matching path when name is
// empty.
func Resolve(name, path string) (Format, error) {
	if name != "" {
		return Lookup(name)
	}
	return FormatFor(path)
}

// Formats lists the registered format names in order.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
