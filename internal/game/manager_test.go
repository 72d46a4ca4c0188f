package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(Deps{Seed: 42})
}

func TestCreateRoom(t *testing.T) {
	m := newTestManager()
	room, host, token, err := m.CreateRoom("Alice", "🦊", DefaultSettings())
	require.NoError(t, err)

	assert.Len(t, room.Code, 5)
	assert.NotEmpty(t, token)
	assert.True(t, host.IsHost)
	assert.Equal(t, "Alice", host.Name)
	assert.Equal(t, host.ID, room.HostID)
	assert.Equal(t, PhaseWaiting, room.Phase())
	assert.Equal(t, 1, m.RoomCount())

	got, err := m.Get(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, got)
}

func TestCreateRoomEmptyHostName(t *testing.T) {
	m := newTestManager()
	_, _, _, err := m.CreateRoom("", "", DefaultSettings())
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Zero(t, m.RoomCount(), "failed creation must not leak a room")
}

func TestCreateRoomNormalizesSettings(t *testing.T) {
	m := newTestManager()
	bad := Settings{TotalRounds: -1, VotingTime: -time.Second}
	room, _, _, err := m.CreateRoom("Alice", "", bad)
	require.NoError(t, err)

	def := DefaultSettings()
	assert.Equal(t, def.TotalRounds, room.Settings.TotalRounds)
	assert.Equal(t, def.RecordingTime, room.Settings.RecordingTime)
	assert.Equal(t, def.VotingTime, room.Settings.VotingTime)
	assert.Equal(t, def.MaxCaptionLength, room.Settings.MaxCaptionLength)

	// Legitimate short durations survive untouched.
	short := def
	short.RecordingTime = 40 * time.Millisecond
	room2, _, _, err := m.CreateRoom("Bob", "", short)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, room2.Settings.RecordingTime)
}

func TestGetUnknownRoom(t *testing.T) {
	m := newTestManager()
	_, err := m.Get("ZZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPlayerJoinAndTokens(t *testing.T) {
	m := newTestManager()
	room, host, hostToken, err := m.CreateRoom("Alice", "", DefaultSettings())
	require.NoError(t, err)

	bob, bobToken, err := room.AddPlayer("Bob", "🐸")
	require.NoError(t, err)
	assert.False(t, bob.IsHost)
	assert.NotEqual(t, host.ID, bob.ID)
	assert.NotEqual(t, hostToken, bobToken)

	assert.Equal(t, host.ID, room.PlayerIDByToken(hostToken))
	assert.Equal(t, bob.ID, room.PlayerIDByToken(bobToken))
	assert.Empty(t, room.PlayerIDByToken("bogus"))

	players := room.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name, "join order preserved")
	assert.Equal(t, "Bob", players[1].Name)
}

func TestHandleLeaveDestroysEmptyRoom(t *testing.T) {
	m := newTestManager()
	room, host, _, err := m.CreateRoom("Alice", "", DefaultSettings())
	require.NoError(t, err)

	require.NoError(t, m.HandleLeave(room.Code, host.ID))
	assert.Zero(t, m.RoomCount())
	_, err = m.Get(room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHandleLeaveHostMigration(t *testing.T) {
	m := newTestManager()
	room, host, _, err := m.CreateRoom("Alice", "", DefaultSettings())
	require.NoError(t, err)
	bob, _, err := room.AddPlayer("Bob", "")
	require.NoError(t, err)

	require.NoError(t, m.HandleLeave(room.Code, host.ID))
	assert.Equal(t, 1, m.RoomCount(), "room survives with a player left")
	assert.Equal(t, bob.ID, room.HostID)
	players := room.Players()
	require.Len(t, players, 1)
	assert.True(t, players[0].IsHost)
}

func TestHandleLeaveUnknownPlayer(t *testing.T) {
	m := newTestManager()
	room, _, _, err := m.CreateRoom("Alice", "", DefaultSettings())
	require.NoError(t, err)
	assert.ErrorIs(t, m.HandleLeave(room.Code, "nobody"), ErrPlayerNotFound)
	assert.ErrorIs(t, m.HandleLeave("ZZZZZ", "nobody"), ErrRoomNotFound)
}

func TestJoinFinishedRoomRejected(t *testing.T) {
	m := newTestManager()
	room, _, _, err := m.CreateRoom("Alice", "", DefaultSettings())
	require.NoError(t, err)

	room.mu.Lock()
	room.phase = PhaseFinished
	room.mu.Unlock()

	_, _, err = room.AddPlayer("Latecomer", "")
	assert.ErrorIs(t, err, ErrGameAlreadyOver)
}

func TestRandomCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := randomCode(5)
		require.Len(t, code, 5)
		for _, c := range code {
			assert.Contains(t, "ABCDEFGHJKLMNPQRSTUVWXYZ23456789", string(c))
		}
	}
}
