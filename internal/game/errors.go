package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNotHost           = errors.New("not host")
	ErrGameAlreadyOver   = errors.New("game already over")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrInvalidPhase      = errors.New("invalid phase for action")
	ErrNoActiveRound     = errors.New("no active round")
	ErrNotSoundMaker     = errors.New("player is not a sound-maker for this round")
	ErrNotGifSelector    = errors.New("player is not the gif-selector for this assignment")
	ErrUnknownAssignment = errors.New("assignment not found")
	ErrAlreadyFinalized  = errors.New("submission already finalized")
	ErrUnknownSubmission = errors.New("submission not found")
	ErrSelfVote          = errors.New("cannot vote for own submission")
	ErrInvalidCategory   = errors.New("invalid vote category")
	ErrEmptyName         = errors.New("name must not be empty")
)
