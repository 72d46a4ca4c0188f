package media

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	s := NewStore(1024)
	clip, err := s.Save([]byte("audio-bytes"), "audio/webm", 2500)
	require.NoError(t, err)
	assert.NotEmpty(t, clip.Ref)
	assert.Equal(t, 2500, clip.DurationMs)

	got, err := s.Get(clip.Ref)
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", got.Mime)
	assert.True(t, bytes.Equal([]byte("audio-bytes"), got.Data))
}

func TestSaveRejectsEmpty(t *testing.T) {
	s := NewStore(1024)
	_, err := s.Save(nil, "audio/webm", 0)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveRejectsOversized(t *testing.T) {
	s := NewStore(8)
	_, err := s.Save(make([]byte, 9), "audio/webm", 1000)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestGetUnknownRef(t *testing.T) {
	s := NewStore(0)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := NewStore(1024)
	clip, err := s.Save([]byte("x"), "audio/webm", 100)
	require.NoError(t, err)

	s.Delete(clip.Ref)
	_, err = s.Get(clip.Ref)
	assert.ErrorIs(t, err, ErrNotFound)

	s.Delete("already-gone")
}

func TestRefsAreUnique(t *testing.T) {
	s := NewStore(1024)
	a, err := s.Save([]byte("a"), "audio/webm", 1)
	require.NoError(t, err)
	b, err := s.Save([]byte("b"), "audio/webm", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Ref, b.Ref)
}
