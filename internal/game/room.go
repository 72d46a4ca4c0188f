package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shinramenisbae/mashed/internal/common/clock"
)

// Emitter delivers the engine's outbound events. The ws package implements
// it on top of socket.io; tests use recorders or NopEmitter.
type Emitter interface {
	ToRoom(roomCode string, event string, payload any)
	ToPlayer(playerID string, event string, payload any)
}

// NopEmitter drops all events.
type NopEmitter struct{}

func (NopEmitter) ToRoom(string, string, any)   {}
func (NopEmitter) ToPlayer(string, string, any) {}

// Room owns one game's full lifecycle. All mutations and timer callbacks
// are serialized behind its mutex; different rooms run independently.
type Room struct {
	Code      string
	HostID    string
	Settings  Settings
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	mu           sync.Mutex
	phase        Phase
	currentRound int
	players      []*Player // join order
	playersByID  map[string]*Player
	tokens       map[string]string // playerToken -> playerID
	rounds       []*Round

	timer      PhaseTimer
	emitter    Emitter
	clock      clock.Clock
	rng        *rand.Rand
	usedPairs  map[PairKey]bool
	lastDeltas map[string]int
	exportFile string
}

func newRoom(code string, settings Settings, deps Deps) *Room {
	seed := deps.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Room{
		Code:        code,
		Settings:    settings,
		CreatedAt:   deps.Clock.Now(),
		phase:       PhaseWaiting,
		playersByID: make(map[string]*Player),
		tokens:      make(map[string]string),
		emitter:     deps.Emitter,
		clock:       deps.Clock,
		rng:         rand.New(rand.NewSource(seed)),
		usedPairs:   make(map[PairKey]bool),
		exportFile:  deps.ExportFile,
	}
}

// Phase returns the room's current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// CurrentRoundNumber returns the number of the active or just-completed
// round, 0 before the first round starts.
func (r *Room) CurrentRoundNumber() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentRound
}

// Rounds returns the historical round log, including the active round.
func (r *Room) Rounds() []*Round {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Round(nil), r.rounds...)
}

// Players returns public copies of all players in join order.
func (r *Room) Players() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// PlayerIDByToken resolves a player token, returning "" when unknown.
func (r *Room) PlayerIDByToken(token string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[token]
}

// AddPlayer registers a new player and returns it with its auth token. The
// first player to join becomes the host.
func (r *Room) AddPlayer(name, avatar string) (*Player, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		return nil, "", ErrEmptyName
	}
	if r.phase == PhaseFinished {
		return nil, "", ErrGameAlreadyOver
	}
	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Avatar:    avatar,
		IsHost:    len(r.players) == 0,
		Connected: true,
		JoinedAt:  r.clock.Now(),
	}
	if p.IsHost {
		r.HostID = p.ID
	}
	token := uuid.NewString()
	r.players = append(r.players, p)
	r.playersByID[p.ID] = p
	r.tokens[token] = p.ID
	cp := *p
	return &cp, token, nil
}

// RemovePlayer drops a player entirely. Reports whether the room is now
// empty and should be destroyed. If the host leaves, the earliest remaining
// player inherits the role.
func (r *Room) RemovePlayer(playerID string) (empty bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playersByID[playerID]
	if p == nil {
		return false, ErrPlayerNotFound
	}
	delete(r.playersByID, playerID)
	for i, q := range r.players {
		if q.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	for tok, id := range r.tokens {
		if id == playerID {
			delete(r.tokens, tok)
		}
	}
	if p.IsHost && len(r.players) > 0 {
		r.players[0].IsHost = true
		r.HostID = r.players[0].ID
	}
	if len(r.players) == 0 {
		r.timer.Cancel()
		return true, nil
	}
	return false, nil
}

// SetConnected flips a player's connection flag. Disconnected players keep
// their score and seat; they simply stop being counted for assignments and
// vote tallies.
func (r *Room) SetConnected(playerID string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playersByID[playerID]
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Connected = connected
	return nil
}

// SetReady flips a player's lobby ready flag.
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	p := r.playersByID[playerID]
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Ready = ready
	return nil
}

// Start begins the game. Host only, lobby only, needs at least two
// connected players.
func (r *Room) Start(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if playerID != r.HostID {
		return ErrNotHost
	}
	if len(r.connectedIDsLocked()) < 2 {
		return ErrNotEnoughPlayers
	}
	r.StartedAt = r.clock.Now()
	r.startRecordingLocked()
	return nil
}

func (r *Room) connectedIDsLocked() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Room) currentLocked() *Round {
	if len(r.rounds) == 0 {
		return nil
	}
	return r.rounds[len(r.rounds)-1]
}

// transitionLocked moves the state machine to target. An illegal transition
// here means two triggers fired for the same phase despite the
// serialization guards, which is a programming error we refuse to limp past.
func (r *Room) transitionLocked(target Phase) {
	if !r.phase.CanTransitionTo(target) {
		panic(fmt.Sprintf("game: illegal phase transition %s -> %s in room %s", r.phase, target, r.Code))
	}
	from := r.phase
	r.phase = target
	log.Info().Str("room", r.Code).Str("from", string(from)).Str("to", string(target)).Int("round", r.currentRound).Msg("phase transition")
	r.emitter.ToRoom(r.Code, "phase:changed", map[string]any{
		"phase": string(target),
		"round": r.currentRound,
	})
}

// handleDeadline is the timer callback. A deadline armed for an already
// exited phase, or for an earlier round that happens to share the current
// phase, is stale and ignored; this is what makes the timer/early-completion
// race safe.
func (r *Room) handleDeadline(phase Phase, round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != phase || r.currentRound != round {
		log.Debug().Str("room", r.Code).Str("deadline", string(phase)).Str("phase", string(r.phase)).Int("round", r.currentRound).Msg("stale deadline ignored")
		return
	}
	switch phase {
	case PhaseRecording:
		r.startCaptioningLocked()
	case PhaseCaptioning:
		r.startResultsLocked()
	case PhaseResults:
		r.startVotingLocked()
	case PhaseVoting:
		r.startScoringLocked()
	case PhaseScoring:
		r.nextOrFinishLocked()
	}
}

func (r *Room) armLocked(phase Phase, d time.Duration) {
	r.timer.Arm(phase, r.currentRound, d, r.handleDeadline)
}

func (r *Room) startRecordingLocked() {
	r.transitionLocked(PhaseRecording)
	r.currentRound++

	part := GenerateAssignments(r.connectedIDsLocked(), r.usedPairs, r.rng)
	for _, a := range part.Assignments {
		r.usedPairs[NewPairKey(a.SoundMakerID, a.GifSelectorID)] = true
	}

	now := r.clock.Now()
	round := &Round{
		ID:           uuid.NewString(),
		Number:       r.currentRound,
		Status:       RoundRecording,
		SoundMakers:  part.SoundMakers,
		GifSelectors: part.GifSelectors,
		Assignments:  part.Assignments,
		StartedAt:    now,
	}
	for _, a := range part.Assignments {
		round.Submissions = append(round.Submissions, &Submission{
			ID:            uuid.NewString(),
			AssignmentID:  a.ID,
			SoundMakerID:  a.SoundMakerID,
			GifSelectorID: a.GifSelectorID,
		})
	}
	r.rounds = append(r.rounds, round)
	r.armLocked(PhaseRecording, r.Settings.RecordingTime)

	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		payload := map[string]any{
			"round": round.Number,
			"role":  r.roleOfLocked(round, p.ID),
		}
		if a := assignmentFor(round, p.ID); a != nil {
			payload["assignment"] = a
		}
		r.emitter.ToPlayer(p.ID, "round:started", payload)
	}
}

func (r *Room) roleOfLocked(round *Round, playerID string) string {
	for _, id := range round.SoundMakers {
		if id == playerID {
			return "soundMaker"
		}
	}
	for _, id := range round.GifSelectors {
		if id == playerID {
			return "gifSelector"
		}
	}
	return "observer"
}

func assignmentFor(round *Round, playerID string) *Assignment {
	for _, a := range round.Assignments {
		if a.SoundMakerID == playerID || a.GifSelectorID == playerID {
			return a
		}
	}
	return nil
}

func (r *Room) startCaptioningLocked() {
	round := r.currentLocked()
	r.transitionLocked(PhaseCaptioning)
	round.Status = RoundCaptioning
	now := r.clock.Now()
	round.CaptioningStartedAt = &now

	// Sound-makers who never submitted get a silent placeholder so the
	// selector side always has something to caption.
	for _, sub := range round.Submissions {
		if !sub.Audio.Present {
			sub.Audio = AudioTrack{Present: true, Ref: "", DurationMs: DefaultAudioDurationMs}
		}
	}
	r.armLocked(PhaseCaptioning, r.Settings.CaptioningTime)

	for _, sub := range round.Submissions {
		r.emitter.ToPlayer(sub.GifSelectorID, "audio:available", map[string]any{
			"assignmentId": sub.AssignmentID,
			"audio":        sub.Audio,
		})
	}
}

func (r *Room) startResultsLocked() {
	round := r.currentLocked()
	r.transitionLocked(PhaseResults)

	// Fill whatever is still missing and finalize whatever is still open;
	// a submission is never dropped for lack of input.
	now := r.clock.Now()
	for _, sub := range round.Submissions {
		if !sub.Gif.Present {
			sub.Gif = GifImage{Present: true, Ref: PlaceholderGifRef, PreviewRef: PlaceholderGifRef, Title: "mystery mashup"}
		}
		if sub.Caption == "" {
			sub.Caption = DefaultCaption
		}
		if !sub.Finalized() {
			ts := now
			sub.SubmittedAt = &ts
		}
	}
	r.armLocked(PhaseResults, r.Settings.RevealPause)
}

func (r *Room) startVotingLocked() {
	round := r.currentLocked()
	r.transitionLocked(PhaseVoting)
	round.Status = RoundVoting
	now := r.clock.Now()
	round.VotingStartedAt = &now
	r.armLocked(PhaseVoting, r.Settings.VotingTime)

	// Randomized display order, anonymized labels. Creators are only
	// revealed with the scoring broadcast.
	order := r.rng.Perm(len(round.Submissions))
	list := make([]map[string]any, 0, len(order))
	for i, ix := range order {
		sub := round.Submissions[ix]
		list = append(list, map[string]any{
			"submissionId": sub.ID,
			"label":        fmt.Sprintf("Mashup #%d", i+1),
			"audio":        sub.Audio,
			"gif":          sub.Gif,
			"caption":      sub.Caption,
		})
	}
	r.emitter.ToRoom(r.Code, "voting:started", map[string]any{
		"round":           round.Number,
		"submissions":     list,
		"bonusCategories": r.Settings.BonusCategories,
	})
}

func (r *Room) startScoringLocked() {
	round := r.currentLocked()
	r.transitionLocked(PhaseScoring)
	round.Status = RoundCompleted
	now := r.clock.Now()
	round.CompletedAt = &now

	res := ScoreRound(round, r.Settings)
	for _, sub := range round.Submissions {
		sub.Score = res.SubmissionScores[sub.ID]
	}
	for id, delta := range res.ScoreDeltas {
		if p := r.playersByID[id]; p != nil {
			p.Score += delta
		}
	}
	for id, d := range res.Stats {
		p := r.playersByID[id]
		if p == nil {
			continue
		}
		p.Stats.SoundsCreated += d.SoundsCreated
		p.Stats.CaptionsWritten += d.CaptionsWritten
		p.Stats.RoundsWon += d.RoundsWon
		p.Stats.SoundVotesReceived += d.SoundVotesReceived
		for cat, n := range d.VotesReceived {
			p.Stats.addVotes(cat, n)
		}
	}
	r.lastDeltas = res.ScoreDeltas

	reveal := make([]map[string]any, 0, len(round.Submissions))
	for _, sub := range round.Submissions {
		reveal = append(reveal, map[string]any{
			"submissionId":  sub.ID,
			"soundMakerId":  sub.SoundMakerID,
			"gifSelectorId": sub.GifSelectorID,
			"score":         sub.Score,
			"votes":         len(sub.Votes),
		})
	}
	r.emitter.ToRoom(r.Code, "score:update", map[string]any{
		"round":       round.Number,
		"leaderboard": BuildLeaderboard(r.players, res.ScoreDeltas),
		"winners":     res.WinningSubmissions,
		"submissions": reveal,
	})
	r.armLocked(PhaseScoring, r.Settings.InterRoundPause)
}

func (r *Room) nextOrFinishLocked() {
	if r.currentRound < r.Settings.TotalRounds {
		r.startRecordingLocked()
		return
	}
	r.finishLocked()
}

func (r *Room) finishLocked() {
	r.transitionLocked(PhaseFinished)
	r.timer.Cancel()
	r.EndedAt = r.clock.Now()

	awards := ComputeAwards(r.players)
	standings := BuildLeaderboard(r.players, r.lastDeltas)
	r.emitter.ToRoom(r.Code, "game:ended", map[string]any{
		"awards":    awards,
		"standings": standings,
	})
	if r.exportFile != "" {
		report := buildExportReport(r.Code, r.EndedAt, standings, awards, r.rounds)
		go func(path, report string) {
			if err := appendExport(path, report); err != nil {
				log.Error().Err(err).Str("room", r.Code).Msg("failed to export results")
			}
		}(r.exportFile, report)
	}
}

// SubmitAudio records (or re-records) the caller's sound for the current
// round and tells the paired selector it is there.
func (r *Room) SubmitAudio(playerID string, audio AudioTrack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRecording {
		return ErrInvalidPhase
	}
	round := r.currentLocked()
	if round == nil || round.Status != RoundRecording {
		return ErrNoActiveRound
	}
	var sub *Submission
	for _, s := range round.Submissions {
		if s.SoundMakerID == playerID {
			sub = s
			break
		}
	}
	if sub == nil {
		return ErrNotSoundMaker
	}
	audio.Present = true
	sub.Audio = audio
	r.emitter.ToPlayer(sub.GifSelectorID, "audio:available", map[string]any{
		"assignmentId": sub.AssignmentID,
		"audio":        sub.Audio,
	})
	return nil
}

func (r *Room) captioningSubmissionLocked(playerID, assignmentID string) (*Submission, error) {
	if r.phase != PhaseCaptioning {
		return nil, ErrInvalidPhase
	}
	round := r.currentLocked()
	if round == nil || round.Status != RoundCaptioning {
		return nil, ErrNoActiveRound
	}
	sub := round.submissionForAssignment(assignmentID)
	if sub == nil {
		return nil, ErrUnknownAssignment
	}
	if sub.GifSelectorID != playerID {
		return nil, ErrNotGifSelector
	}
	if sub.Finalized() {
		return nil, ErrAlreadyFinalized
	}
	return sub, nil
}

// SelectGif sets (or replaces) the GIF on the caller's assignment.
func (r *Room) SelectGif(playerID, assignmentID string, gif GifImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, err := r.captioningSubmissionLocked(playerID, assignmentID)
	if err != nil {
		return err
	}
	gif.Present = true
	sub.Gif = gif
	return nil
}

// SetCaption sets (or replaces) the caption, truncated to the configured
// maximum length.
func (r *Room) SetCaption(playerID, assignmentID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, err := r.captioningSubmissionLocked(playerID, assignmentID)
	if err != nil {
		return err
	}
	if max := r.Settings.MaxCaptionLength; max > 0 {
		if runes := []rune(text); len(runes) > max {
			text = string(runes[:max])
		}
	}
	sub.Caption = text
	return nil
}

// FinalizeSubmission locks the caller's submission in. Finalizing twice is a
// no-op. When every submission of the round is finalized the captioning
// phase ends early.
func (r *Room) FinalizeSubmission(playerID, assignmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, err := r.captioningSubmissionLocked(playerID, assignmentID)
	if err != nil {
		if err == ErrAlreadyFinalized {
			return nil
		}
		return err
	}
	now := r.clock.Now()
	sub.SubmittedAt = &now
	round := r.currentLocked()
	if round.allFinalized() {
		r.startResultsLocked()
	}
	return nil
}

// CastVote casts a vote in the given category. A second vote by the same
// player in the same category retracts the first. When every connected
// player has cast their standard vote the voting phase ends early.
func (r *Room) CastVote(playerID, submissionID, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseVoting {
		return ErrInvalidPhase
	}
	round := r.currentLocked()
	if round == nil || round.Status != RoundVoting {
		return ErrNoActiveRound
	}
	if r.playersByID[playerID] == nil {
		return ErrPlayerNotFound
	}
	if !r.Settings.IsValidCategory(category) {
		return ErrInvalidCategory
	}
	sub := round.submission(submissionID)
	if sub == nil {
		return ErrUnknownSubmission
	}
	if sub.SoundMakerID == playerID || sub.GifSelectorID == playerID {
		return ErrSelfVote
	}

	for _, s := range round.Submissions {
		kept := s.Votes[:0]
		for _, v := range s.Votes {
			if !(v.VoterID == playerID && v.Category == category) {
				kept = append(kept, v)
			}
		}
		s.Votes = kept
	}

	points := r.Settings.PointsPerVote
	if category != CategoryStandard {
		points = r.Settings.BonusVotePoints
	}
	sub.Votes = append(sub.Votes, Vote{
		ID:           uuid.NewString(),
		VoterID:      playerID,
		SubmissionID: submissionID,
		Category:     category,
		Points:       points,
		CastAt:       r.clock.Now(),
	})

	if category == CategoryStandard {
		tally := round.standardVoteCount()
		r.emitter.ToRoom(r.Code, "vote:count", map[string]any{"count": tally})
		if tally >= len(r.connectedIDsLocked()) {
			r.startScoringLocked()
		}
	}
	return nil
}

// AddReaction puts an emoji on a submission, replacing the caller's prior
// reaction on it. Purely cosmetic; allowed in any phase once the round
// exists.
func (r *Room) AddReaction(playerID, submissionID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playersByID[playerID] == nil {
		return ErrPlayerNotFound
	}
	var sub *Submission
	for _, round := range r.rounds {
		if s := round.submission(submissionID); s != nil {
			sub = s
			break
		}
	}
	if sub == nil {
		return ErrUnknownSubmission
	}
	for i, re := range sub.Reactions {
		if re.PlayerID == playerID {
			sub.Reactions = append(sub.Reactions[:i], sub.Reactions[i+1:]...)
			break
		}
	}
	sub.Reactions = append(sub.Reactions, Reaction{PlayerID: playerID, Emoji: emoji, At: r.clock.Now()})
	r.emitter.ToRoom(r.Code, "reaction:added", map[string]any{
		"submissionId": submissionID,
		"playerId":     playerID,
		"emoji":        emoji,
	})
	return nil
}

// StateFor builds a personalized snapshot for one player, used on join and
// reconnect.
func (r *Room) StateFor(playerID string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := map[string]any{
		"roomCode": r.Code,
		"phase":    string(r.phase),
		"round":    r.currentRound,
		"settings": r.Settings,
		"players":  r.playersLocked(),
	}
	round := r.currentLocked()
	if round == nil {
		return state
	}
	state["role"] = r.roleOfLocked(round, playerID)
	if a := assignmentFor(round, playerID); a != nil {
		state["assignment"] = a
		if sub := round.submissionForAssignment(a.ID); sub != nil {
			state["submission"] = map[string]any{
				"id":        sub.ID,
				"audio":     sub.Audio,
				"gif":       sub.Gif,
				"caption":   sub.Caption,
				"finalized": sub.Finalized(),
			}
		}
	}
	if phase, remaining := r.timer.Pending(); phase != "" {
		state["deadlineMs"] = remaining.Milliseconds()
	}
	return state
}
