package source

import (
	"fmt"
	"os"

	"github.com/zggff/shopbot/catalogue"
)

// Parse decodes data in format f into a tree.
func Parse[T, U any](data []byte, f Format) (catalogue.Node[T, U], error) {
	raw, err := f.Unmarshal(data)
	if err != nil {
		return catalogue.Node[T, U]{}, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return Decode[T, U](raw)
}

// Render encodes n in format f.
func Render[T, U any](n *catalogue.Node[T, U], f Format) ([]byte, error) {
	raw, err := Encode(n)
	if err != nil {
		return nil, err
	}
	data, err := f.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f.Name, err)
	}
	return data, nil
}

// LoadFile reads a tree from path. An empty format is guessed from the
// extension.
func LoadFile[T, U any](path, format string) (catalogue.Node[T, U], error) {
	f, err := Resolve(format, path)
	if err != nil {
		return catalogue.Node[T, U]{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return catalogue.Node[T, U]{}, fmt.Errorf("load %s: %w", path, err)
	}
	n, err := Parse[T, U](data, f)
	if err != nil {
		return catalogue.Node[T, U]{}, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

// SaveFile writes n to path.
func SaveFile[T, U any](path, format string, n *catalogue.Node[T, U]) error {
	f, err := Resolve(format, path)
	if err != nil {
		return err
	}
	data, err := Render(n, f)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Convert rewrites the catalogue at src into dst, possibly changing the
// format. Payloads are carried through untyped; the tree shape is checked.
func Convert(src, srcFormat, dst, dstFormat string) error {
	n, err := LoadFile[any, any](src, srcFormat)
	if err != nil {
		return err
	}
	return SaveFile(dst, dstFormat, &n)
}
