package dialog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Name  string
	Times int
}

func greetingFactory(p *Parameters) (any, error) {
	name, err := Get[string](p, "name")
	if err != nil {
		return nil, err
	}
	times, err := TryGet[int](p, "times")
	if err != nil {
		return nil, err
	}
	if times == 0 {
		times = 1
	}
	return &greeting{Name: name, Times: times}, nil
}

func TestServiceShowSeedsDialog(t *testing.T) {
	s := NewService()
	s.Register("greeting", greetingFactory)

	params := NewParameters().Add("name", "Ada")
	ref, err := s.Show("greeting", "Hello", params)
	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, "Hello", ref.Title)

	g, err := As[*greeting](ref)
	require.NoError(t, err)
	assert.Equal(t, "Ada", g.Name)
	assert.Equal(t, 1, g.Times)

	// The shown dialog keeps its own copy.
	params.Add("name", "Grace")
	v, err := Get[string](ref.Params, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	_, err = As[string](ref)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestServiceErrors(t *testing.T) {
	s := NewService()
	s.Register("greeting", greetingFactory)

	_, err := s.Show("nope", "", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = s.Show("greeting", "", NewParameters())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Show("greeting", "", NewParameters().Add("name", "x").Add("times", "2"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = s.Close("missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownDialog))

	_, err = As[*greeting](nil)
	assert.ErrorIs(t, err, ErrUnknownDialog)
}

func TestServiceOpenAndClose(t *testing.T) {
	s := NewService()
	s.Register("greeting", greetingFactory)

	a, err := s.Show("greeting", "a", NewParameters().Add("name", "a"))
	require.NoError(t, err)
	b, err := s.Show("greeting", "b", NewParameters().Add("name", "b"))
	require.NoError(t, err)

	open := s.Open()
	require.Len(t, open, 2)
	assert.Equal(t, a.ID, open[0].ID)
	assert.Equal(t, b.ID, open[1].ID)

	got, ok := s.Get(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)

	closed, err := s.Close(a.ID, "ok")
	require.NoError(t, err)
	res, done := closed.Result()
	assert.True(t, done)
	assert.Equal(t, "ok", res)

	open = s.Open()
	require.Len(t, open, 1)
	assert.Equal(t, b.ID, open[0].ID)

	_, ok = s.Get(a.ID)
	assert.False(t, ok)
}
