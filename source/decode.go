// Package source reads and writes catalogue trees in several document
// formats and keeps a catalogue.Store in sync with a file on disk.
//
// Every format carries the same shape: a leaf is {"Item": <payload>} and a
// group is {"List": {"data": <payload>, "list": [<node>, ...]}}. Variant and
// field keys are matched case-insensitively.
package source

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/zggff/shopbot/catalogue"
)

const (
	keyItem = "Item"
	keyList = "List"
	keyData = "data"
	keyKids = "list"
)

var ErrMalformedNode = errors.New("malformed catalogue node")

// DecodeError reports the first record that could not be decoded.
type DecodeError struct {
	Path catalogue.Address
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("node %s: %s", e.Path, e.Msg)
}

func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedNode
}

// Decode builds a tree from a generic document as produced by any of the
// registered formats.
func Decode[T, U any](raw any) (catalogue.Node[T, U], error) {
	return decodeNode[T, U](raw, catalogue.Root())
}

func decodeNode[T, U any](raw any, at catalogue.Address) (catalogue.Node[T, U], error) {
	var zero catalogue.Node[T, U]

	m, ok := asMap(raw)
	if !ok || len(m) != 1 {
		return zero, &DecodeError{Path: at, Msg: fmt.Sprintf("expected an object with a single %q or %q key", keyItem, keyList)}
	}

	for k, v := range m {
		switch {
		case strings.EqualFold(k, keyItem):
			var item T
			if err := decodePayload(v, &item); err != nil {
				return zero, &DecodeError{Path: at, Msg: "item payload", Err: err}
			}
			return catalogue.Leaf[T, U](item), nil

		case strings.EqualFold(k, keyList):
			body, ok := asMap(v)
			if !ok {
				return zero, &DecodeError{Path: at, Msg: "group body is not an object"}
			}
			var data U
			if raw, ok := lookup(body, keyData); ok {
				if err := decodePayload(raw, &data); err != nil {
					return zero, &DecodeError{Path: at, Msg: "group payload", Err: err}
				}
			}
			var items []any
			if raw, ok := lookup(body, keyKids); ok && raw != nil {
				if items, ok = raw.([]any); !ok {
					return zero, &DecodeError{Path: at, Msg: "group children are not a list"}
				}
			}
			children := make([]catalogue.Node[T, U], 0, len(items))
			for i, item := range items {
				child, err := decodeNode[T, U](item, at.Join(uint(i)))
				if err != nil {
					return zero, err
				}
				children = append(children, child)
			}
			return catalogue.Group(data, children...), nil

		default:
			return zero, &DecodeError{Path: at, Msg: fmt.Sprintf("unknown variant %q", k)}
		}
	}
	return zero, nil
}

func decodePayload(raw, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: mapstructure.DecodeHookFuncType(integralFloat),
	})
	if err != nil {
		return err
	}
	return dec.Decode(normalize(raw))
}

// integralFloat lets whole floats into integer fields and rejects the rest.
// JSON numbers always arrive as float64.
func integralFloat(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", data)
	}
	return data, nil
}

// Encode is the inverse of Decode. Struct payloads become maps keyed by
// their json tags.
func Encode[T, U any](n *catalogue.Node[T, U]) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrMalformedNode)
	}
	if item, ok := n.Item(); ok {
		p, err := encodePayload(item)
		if err != nil {
			return nil, err
		}
		return map[string]any{keyItem: p}, nil
	}

	data, _ := n.Data()
	p, err := encodePayload(data)
	if err != nil {
		return nil, err
	}
	kids := make([]any, 0, n.Len())
	for i := 0; i < n.Len(); i++ {
		child, _ := n.Child(uint(i))
		c, err := Encode(child)
		if err != nil {
			return nil, err
		}
		kids = append(kids, c)
	}
	return map[string]any{keyList: map[string]any{keyData: p, keyKids: kids}}, nil
}

func encodePayload(v any) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return v, nil
	}
	out := map[string]any{}
	if err := decodePayload(rv.Interface(), &out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// asMap accepts the map shapes the format decoders produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func lookup(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// normalize rewrites map[any]any into map[string]any so mapstructure can
// match struct fields.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m, ok := asMap(t)
		if !ok {
			return v
		}
		return normalize(m)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
