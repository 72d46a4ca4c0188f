package game

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/shinramenisbae/mashed/internal/common/clock"
)

// Deps carries the collaborators a room needs. The manager is constructed
// with them and hands them to every room it creates; nothing here is a
// package-level singleton.
type Deps struct {
	Emitter    Emitter
	Clock      clock.Clock
	ExportFile string
	// Seed pins every room's RNG for deterministic tests; 0 means
	// time-seeded.
	Seed int64
}

// Manager is the room registry: a concurrent map of room code to room. It
// owns room creation and destruction; everything inside a room is the
// room's own business.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	deps  Deps
}

func NewManager(deps Deps) *Manager {
	if deps.Emitter == nil {
		deps.Emitter = NopEmitter{}
	}
	if deps.Clock == nil {
		deps.Clock = &clock.DefaultClock{}
	}
	return &Manager{rooms: make(map[string]*Room), deps: deps}
}

// CreateRoom makes a room with a fresh code and joins the host into it.
func (m *Manager) CreateRoom(hostName, avatar string, settings Settings) (*Room, *Player, string, error) {
	m.mu.Lock()
	code := randomCode(5)
	for m.rooms[code] != nil {
		code = randomCode(5)
	}
	room := newRoom(code, settings.Normalized(), m.deps)
	m.rooms[code] = room
	m.mu.Unlock()

	host, token, err := room.AddPlayer(hostName, avatar)
	if err != nil {
		m.mu.Lock()
		delete(m.rooms, code)
		m.mu.Unlock()
		return nil, nil, "", err
	}
	log.Info().Str("room", code).Str("host", host.ID).Msg("room created")
	return room, host, token, nil
}

func (m *Manager) Get(code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room := m.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomCount reports how many rooms are live.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// HandleLeave removes the player from their room and destroys the room when
// it empties out.
func (m *Manager) HandleLeave(code, playerID string) error {
	room, err := m.Get(code)
	if err != nil {
		return err
	}
	empty, err := room.RemovePlayer(playerID)
	if err != nil {
		return err
	}
	if empty {
		m.mu.Lock()
		delete(m.rooms, code)
		m.mu.Unlock()
		log.Info().Str("room", code).Msg("room destroyed")
	}
	return nil
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
