// Package dialog seeds dynamically created dialog instances with named,
// typed inputs.
package dialog

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	ErrNotFound     = errors.New("parameter not found")
	ErrTypeMismatch = errors.New("parameter type mismatch")
)

// entry keeps the value together with its dynamic type as seen at Add time.
type entry struct {
	value any
	typ   reflect.Type
}

// Parameters is a name → value bag. The zero value is ready to use.
type Parameters struct {
	entries map[string]entry
}

func NewParameters() *Parameters {
	return &Parameters{entries: make(map[string]entry)}
}

// Add stores value under name. Last write wins.
func (p *Parameters) Add(name string, value any) *Parameters {
	if p.entries == nil {
		p.entries = make(map[string]entry)
	}
	p.entries[name] = entry{value: value, typ: reflect.TypeOf(value)}
	return p
}

func (p *Parameters) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.entries[name]
	return ok
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Names returns the stored names in sorted order.
func (p *Parameters) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.entries))
	for k := range p.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns a shallow copy; stored values are shared.
func (p *Parameters) Clone() *Parameters {
	c := NewParameters()
	if p == nil {
		return c
	}
	for k, v := range p.entries {
		c.entries[k] = v
	}
	return c
}

// Get returns the value stored under name as T. A missing name yields
// ErrNotFound; a value that is not a T yields ErrTypeMismatch.
func Get[T any](p *Parameters, name string) (T, error) {
	var zero T
	e, ok := lookup(p, name)
	if !ok {
		return zero, fmt.Errorf("%q does not exist in dialog parameters: %w", name, ErrNotFound)
	}
	return cast[T](name, e)
}

// TryGet is Get with a missing name mapped to T's zero value. A stored
// value of the wrong type is still an error.
func TryGet[T any](p *Parameters, name string) (T, error) {
	var zero T
	e, ok := lookup(p, name)
	if !ok {
		return zero, nil
	}
	return cast[T](name, e)
}

// MustGet panics where Get would fail.
func MustGet[T any](p *Parameters, name string) T {
	v, err := Get[T](p, name)
	if err != nil {
		panic(err)
	}
	return v
}

func lookup(p *Parameters, name string) (entry, bool) {
	if p == nil {
		return entry{}, false
	}
	e, ok := p.entries[name]
	return e, ok
}

func cast[T any](name string, e entry) (T, error) {
	var zero T
	if v, ok := e.value.(T); ok {
		return v, nil
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	if e.value == nil && nilable(want) {
		return zero, nil
	}
	stored := "nil"
	if e.typ != nil {
		stored = e.typ.String()
	}
	return zero, fmt.Errorf("%q holds %s, not %s: %w", name, stored, want, ErrTypeMismatch)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
