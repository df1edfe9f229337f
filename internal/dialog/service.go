package dialog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownKind   = errors.New("unknown dialog kind")
	ErrUnknownDialog = errors.New("unknown dialog")
)

// Factory constructs a dialog instance from its parameters.
type Factory func(params *Parameters) (any, error)

// Reference is the handle of one shown dialog.
type Reference struct {
	ID     string
	Kind   string
	Title  string
	Dialog any
	Params *Parameters

	closed bool
	result any
}

// Result returns the value passed to Close and whether the dialog is closed.
func (r *Reference) Result() (any, bool) {
	return r.result, r.closed
}

// As returns the dialog instance behind r as T.
func As[T any](r *Reference) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("nil reference: %w", ErrUnknownDialog)
	}
	v, ok := r.Dialog.(T)
	if !ok {
		return zero, fmt.Errorf("dialog %s is %T: %w", r.ID, r.Dialog, ErrTypeMismatch)
	}
	return v, nil
}

// Service instantiates registered dialog kinds and tracks the open ones.
// It is not safe for concurrent use.
type Service struct {
	factories map[string]Factory
	open      map[string]*Reference
	order     []string
}

func NewService() *Service {
	return &Service{
		factories: make(map[string]Factory),
		open:      make(map[string]*Reference),
	}
}

// Register binds kind to f, replacing any earlier factory.
func (s *Service) Register(kind string, f Factory) {
	s.factories[kind] = f
}

// Show builds a new dialog of the given kind. The factory receives a copy
// of params, so later changes by the caller do not leak into the instance.
func (s *Service) Show(kind, title string, params *Parameters) (*Reference, error) {
	f, ok := s.factories[kind]
	if !ok {
		return nil, fmt.Errorf("show %q: %w", kind, ErrUnknownKind)
	}
	own := params.Clone()
	d, err := f(own)
	if err != nil {
		return nil, fmt.Errorf("show %q: %w", kind, err)
	}
	ref := &Reference{
		ID:     uuid.NewString(),
		Kind:   kind,
		Title:  title,
		Dialog: d,
		Params: own,
	}
	s.open[ref.ID] = ref
	s.order = append(s.order, ref.ID)
	return ref, nil
}

func (s *Service) Get(id string) (*Reference, bool) {
	ref, ok := s.open[id]
	return ref, ok
}

// Close removes the dialog and records result on its reference.
func (s *Service) Close(id string, result any) (*Reference, error) {
	ref, ok := s.open[id]
	if !ok {
		return nil, fmt.Errorf("close %s: %w", id, ErrUnknownDialog)
	}
	ref.closed = true
	ref.result = result
	delete(s.open, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return ref, nil
}

// Open lists the open dialogs in the order they were shown.
func (s *Service) Open() []*Reference {
	out := make([]*Reference, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.open[id])
	}
	return out
}
