package media

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("audio clip not found")
	ErrEmpty    = errors.New("audio clip is empty")
	ErrTooLarge = errors.New("audio clip exceeds size limit")
)

// Clip is one stored audio blob. The game engine only ever sees the Ref and
// DurationMs; the bytes stay here until the process exits.
type Clip struct {
	Ref        string
	Mime       string
	DurationMs int
	Data       []byte
	SavedAt    time.Time
}

// Store keeps audio blobs in memory, keyed by an opaque reference.
type Store struct {
	mu       sync.RWMutex
	clips    map[string]*Clip
	maxBytes int
}

func NewStore(maxBytes int) *Store {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &Store{clips: make(map[string]*Clip), maxBytes: maxBytes}
}

// Save stores the blob and returns its reference plus the duration that was
// measured client-side. The engine treats the pair as already resolved.
func (s *Store) Save(data []byte, mime string, durationMs int) (*Clip, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > s.maxBytes {
		return nil, ErrTooLarge
	}
	clip := &Clip{
		Ref:        uuid.NewString(),
		Mime:       mime,
		DurationMs: durationMs,
		Data:       data,
		SavedAt:    time.Now().UTC(),
	}
	s.mu.Lock()
	s.clips[clip.Ref] = clip
	s.mu.Unlock()
	return clip, nil
}

func (s *Store) Get(ref string) (*Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clip, ok := s.clips[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return clip, nil
}

// Delete drops a clip; missing refs are fine.
func (s *Store) Delete(ref string) {
	s.mu.Lock()
	delete(s.clips, ref)
	s.mu.Unlock()
}
