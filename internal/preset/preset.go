// Package preset resolves export presets against the host encoder's registry.
//
// The registry is exposed by the host as a count plus an indexed name lookup.
// All walks it lazily in index order; Resolve stops at the first exact,
// case-sensitive match, so duplicates always resolve to the lowest index.
package preset

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// ErrNotFound is returned by Resolve when no preset carries the requested name.
var ErrNotFound = errors.New("preset: not found")

// Registry is the host's enumerable, indexable preset registry.
type Registry interface {
	PresetCount(ctx context.Context) (int, error)
	PresetName(ctx context.Context, index int) (string, error)
}

// Descriptor identifies one registry entry.
type Descriptor struct {
	Index int
	Name  string
}

// All yields every preset in index order. The count is read once per walk and
// names are fetched one at a time, so stopping early avoids further host calls.
// A host error is yielded once and ends the walk.
func All(ctx context.Context, reg Registry) iter.Seq2[Descriptor, error] {
	return func(yield func(Descriptor, error) bool) {
		n, err := reg.PresetCount(ctx)
		if err != nil {
			yield(Descriptor{}, fmt.Errorf("preset: count: %w", err))
			return
		}
		for i := 0; i < n; i++ {
			name, err := reg.PresetName(ctx, i)
			if err != nil {
				yield(Descriptor{Index: i}, fmt.Errorf("preset: name at %d: %w", i, err))
				return
			}
			if !yield(Descriptor{Index: i, Name: name}, nil) {
				return
			}
		}
	}
}

// Resolve returns the first preset whose name equals name exactly.
func Resolve(ctx context.Context, reg Registry, name string) (Descriptor, error) {
	for d, err := range All(ctx, reg) {
		if err != nil {
			return Descriptor{}, err
		}
		if d.Name == name {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Exists reports whether name is present in the registry.
func Exists(ctx context.Context, reg Registry, name string) (bool, error) {
	_, err := Resolve(ctx, reg, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List collects the whole registry.
func List(ctx context.Context, reg Registry) ([]Descriptor, error) {
	var out []Descriptor
	for d, err := range All(ctx, reg) {
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
