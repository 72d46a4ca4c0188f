package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/shinramenisbae/mashed/internal/config"
	"github.com/shinramenisbae/mashed/internal/game"
	"github.com/shinramenisbae/mashed/internal/gif"
	"github.com/shinramenisbae/mashed/internal/media"
)

// ConnCtx is what we know about one socket connection.
type ConnCtx struct {
	Code     string
	Token    string
	PlayerID string
}

// Server maps socket events to engine calls and engine events back to
// connections. It implements game.Emitter.
type Server struct {
	manager *game.Manager
	media   *media.Store
	config  config.Config

	mu      sync.RWMutex
	members map[string]map[string]socketio.Conn // roomCode -> socketID -> Conn
	players map[string]socketio.Conn            // playerID -> Conn
}

func New(cfg config.Config, store *media.Store) *Server {
	return &Server{
		media:   store,
		config:  cfg,
		members: make(map[string]map[string]socketio.Conn),
		players: make(map[string]socketio.Conn),
	}
}

// SetManager wires the room registry in. Called once during startup; the
// manager needs the server as its emitter, hence the two-step wiring.
func (srv *Server) SetManager(m *game.Manager) { srv.manager = m }

// ToRoom implements game.Emitter.
func (srv *Server) ToRoom(roomCode, event string, payload any) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for _, c := range srv.members[roomCode] {
		c.Emit(event, payload)
	}
}

// ToPlayer implements game.Emitter.
func (srv *Server) ToPlayer(playerID, event string, payload any) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	if c := srv.players[playerID]; c != nil {
		c.Emit(event, payload)
	}
}

func (srv *Server) attach(c socketio.Conn, code, token, playerID string) {
	c.SetContext(&ConnCtx{Code: code, Token: token, PlayerID: playerID})
	c.Join(code)
	srv.mu.Lock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
	srv.players[playerID] = c
	srv.mu.Unlock()
}

func (srv *Server) detach(c socketio.Conn, ctx *ConnCtx) {
	srv.mu.Lock()
	if m := srv.members[ctx.Code]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, ctx.Code)
		}
	}
	if srv.players[ctx.PlayerID] == c {
		delete(srv.players, ctx.PlayerID)
	}
	srv.mu.Unlock()
}

func connCtx(c socketio.Conn) *ConnCtx {
	if ctx, ok := c.Context().(*ConnCtx); ok {
		return ctx
	}
	return &ConnCtx{}
}

// room resolves the caller's room, or emits an error.
func (srv *Server) room(s socketio.Conn) (*game.Room, *ConnCtx, map[string]any) {
	ctx := connCtx(s)
	room, err := srv.manager.Get(ctx.Code)
	if err != nil {
		return nil, ctx, srv.err(s, "room_not_found", "Room not found")
	}
	return room, ctx, nil
}

// Mount attaches the Socket.IO server with all game handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "room:create", func(s socketio.Conn, payload struct {
		Name     string         `json:"name"`
		Avatar   string         `json:"avatar"`
		Settings *game.Settings `json:"settings"`
	}) map[string]any {
		settings := srv.config.Defaults
		if payload.Settings != nil {
			settings = *payload.Settings
		}
		room, host, token, err := srv.manager.CreateRoom(payload.Name, payload.Avatar, settings)
		if err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		srv.attach(s, room.Code, token, host.ID)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Msg("room:create")
		s.Emit("room:state", room.StateFor(host.ID))
		return map[string]any{"roomCode": room.Code, "playerToken": token, "playerId": host.ID}
	})

	io.OnEvent("/", "room:join", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
		Name     string `json:"name"`
		Avatar   string `json:"avatar"`
	}) map[string]any {
		room, err := srv.manager.Get(payload.RoomCode)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		player, token, err := room.AddPlayer(payload.Name, payload.Avatar)
		if err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		srv.attach(s, room.Code, token, player.ID)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Str("playerId", player.ID).Msg("room:join")
		srv.broadcastState(room)
		return map[string]any{"playerToken": token, "playerId": player.ID}
	})

	io.OnEvent("/", "room:resume", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
		Token    string `json:"token"`
	}) map[string]any {
		room, err := srv.manager.Get(payload.RoomCode)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		playerID := room.PlayerIDByToken(payload.Token)
		if playerID == "" {
			return srv.err(s, "unauthorized", "Invalid player token")
		}
		srv.attach(s, room.Code, payload.Token, playerID)
		_ = room.SetConnected(playerID, true)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Str("playerId", playerID).Msg("room:resume")
		s.Emit("room:state", room.StateFor(playerID))
		srv.broadcastState(room)
		return map[string]any{"ok": true, "playerId": playerID}
	})

	io.OnEvent("/", "room:leave", func(s socketio.Conn) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := srv.manager.HandleLeave(ctx.Code, ctx.PlayerID); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		srv.detach(s, ctx)
		s.Leave(ctx.Code)
		s.SetContext(&ConnCtx{})
		if existing, err := srv.manager.Get(room.Code); err == nil {
			srv.broadcastState(existing)
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "room:ready", func(s socketio.Conn, payload struct {
		Ready bool `json:"ready"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := room.SetReady(ctx.PlayerID, payload.Ready); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		srv.broadcastState(room)
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:start", func(s socketio.Conn) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := room.Start(ctx.PlayerID); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:start")
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:submitAudio", func(s socketio.Conn, payload struct {
		AudioRef string `json:"audioRef"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		// Resolve the blob before entering the engine; the engine never
		// waits on storage.
		clip, err := srv.media.Get(payload.AudioRef)
		if err != nil {
			return srv.err(s, "audio_not_found", "Audio clip not found")
		}
		track := game.AudioTrack{Present: true, Ref: clip.Ref, DurationMs: clip.DurationMs}
		if err := room.SubmitAudio(ctx.PlayerID, track); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:selectGif", func(s socketio.Conn, payload struct {
		AssignmentID string     `json:"assignmentId"`
		Gif          gif.Result `json:"gif"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		img := game.GifImage{Present: true, Ref: payload.Gif.Ref, PreviewRef: payload.Gif.PreviewRef, Title: payload.Gif.Title}
		if err := room.SelectGif(ctx.PlayerID, payload.AssignmentID, img); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:setCaption", func(s socketio.Conn, payload struct {
		AssignmentID string `json:"assignmentId"`
		Text         string `json:"text"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := room.SetCaption(ctx.PlayerID, payload.AssignmentID, payload.Text); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:finalize", func(s socketio.Conn, payload struct {
		AssignmentID string `json:"assignmentId"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := room.FinalizeSubmission(ctx.PlayerID, payload.AssignmentID); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:vote", func(s socketio.Conn, payload struct {
		SubmissionID string `json:"submissionId"`
		Category     string `json:"category"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		category := payload.Category
		if category == "" {
			category = game.CategoryStandard
		}
		if err := room.CastVote(ctx.PlayerID, payload.SubmissionID, category); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "game:react", func(s socketio.Conn, payload struct {
		SubmissionID string `json:"submissionId"`
		Emoji        string `json:"emoji"`
	}) map[string]any {
		room, ctx, errResp := srv.room(s)
		if errResp != nil {
			return errResp
		}
		if err := room.AddReaction(ctx.PlayerID, payload.SubmissionID, payload.Emoji); err != nil {
			return srv.err(s, errCode(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		ctx := connCtx(s)
		if ctx.Code != "" {
			srv.detach(s, ctx)
			if room, err := srv.manager.Get(ctx.Code); err == nil {
				_ = room.SetConnected(ctx.PlayerID, false)
				srv.broadcastState(room)
			}
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// broadcastState sends each member their own personalized snapshot.
func (srv *Server) broadcastState(room *game.Room) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for _, c := range srv.members[room.Code] {
		ctx := connCtx(c)
		c.Emit("room:state", room.StateFor(ctx.PlayerID))
	}
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message, "code": code}
}

// errCode maps engine errors to stable wire codes.
func errCode(err error) string {
	switch err {
	case game.ErrRoomNotFound:
		return "room_not_found"
	case game.ErrPlayerNotFound:
		return "player_not_found"
	case game.ErrNotHost:
		return "not_host"
	case game.ErrGameAlreadyOver:
		return "game_over"
	case game.ErrNotEnoughPlayers:
		return "not_enough_players"
	case game.ErrInvalidPhase, game.ErrNoActiveRound:
		return "invalid_phase"
	case game.ErrNotSoundMaker, game.ErrNotGifSelector:
		return "wrong_role"
	case game.ErrUnknownAssignment, game.ErrUnknownSubmission:
		return "not_found"
	case game.ErrAlreadyFinalized:
		return "already_finalized"
	case game.ErrSelfVote:
		return "self_vote"
	case game.ErrInvalidCategory:
		return "invalid_category"
	case game.ErrEmptyName:
		return "invalid_name"
	}
	return "bad_request"
}
