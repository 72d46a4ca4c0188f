package game

import (
	"time"
)

type Phase string

const (
	PhaseWaiting    Phase = "Waiting"
	PhaseRecording  Phase = "Recording"
	PhaseCaptioning Phase = "Captioning"
	PhaseResults    Phase = "Results"
	PhaseVoting     Phase = "Voting"
	PhaseScoring    Phase = "Scoring"
	PhaseFinished   Phase = "Finished"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether the state machine permits moving from p to
// target. Transitions outside this table indicate a programming error.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseWaiting:    {PhaseRecording},
		PhaseRecording:  {PhaseCaptioning},
		PhaseCaptioning: {PhaseResults},
		PhaseResults:    {PhaseVoting},
		PhaseVoting:     {PhaseScoring},
		PhaseScoring:    {PhaseRecording, PhaseFinished},
	}
	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

type RoundStatus string

const (
	RoundRecording  RoundStatus = "recording"
	RoundCaptioning RoundStatus = "captioning"
	RoundVoting     RoundStatus = "voting"
	RoundCompleted  RoundStatus = "completed"
)

// CategoryStandard is the one-per-player primary vote category. Bonus
// categories come from Settings.BonusCategories.
const CategoryStandard = "standard"

// DefaultAudioDurationMs is the duration assigned to placeholder audio when
// a sound-maker never submitted before the recording deadline.
const DefaultAudioDurationMs = 3000

// DefaultCaption fills submissions that were never captioned.
const DefaultCaption = "..."

// PlaceholderGifRef is the stock GIF used for submissions whose selector
// never picked one.
const PlaceholderGifRef = "https://media.giphy.com/media/3o7aCSPqXE5C6T8tBC/giphy.gif"

type Settings struct {
	TotalRounds      int           `json:"totalRounds"`
	RecordingTime    time.Duration `json:"recordingTime"`
	CaptioningTime   time.Duration `json:"captioningTime"`
	VotingTime       time.Duration `json:"votingTime"`
	RevealPause      time.Duration `json:"revealPause"`
	InterRoundPause  time.Duration `json:"interRoundPause"`
	PointsPerVote    int           `json:"pointsPerVote"`
	BonusVotePoints  int           `json:"bonusVotePoints"`
	Participation    int           `json:"participationPoints"`
	RoundWinnerBonus int           `json:"roundWinnerBonus"`
	SoundMakerPoints int           `json:"soundMakerPoints"`
	MaxCaptionLength int           `json:"maxCaptionLength"`
	BonusCategories  []string      `json:"bonusCategories"`
}

func DefaultSettings() Settings {
	return Settings{
		TotalRounds:      3,
		RecordingTime:    30 * time.Second,
		CaptioningTime:   45 * time.Second,
		VotingTime:       30 * time.Second,
		RevealPause:      6 * time.Second,
		InterRoundPause:  8 * time.Second,
		PointsPerVote:    100,
		BonusVotePoints:  25,
		Participation:    10,
		RoundWinnerBonus: 150,
		SoundMakerPoints: 50,
		MaxCaptionLength: 120,
		BonusCategories:  nil,
	}
}

// Normalized replaces a non-positive round count, phase durations and
// caption limit with their defaults. Client-supplied settings pass through
// here so a malformed payload cannot produce a zero-round game or
// instant-firing deadlines.
func (s Settings) Normalized() Settings {
	d := DefaultSettings()
	if s.TotalRounds < 1 {
		s.TotalRounds = d.TotalRounds
	}
	if s.RecordingTime <= 0 {
		s.RecordingTime = d.RecordingTime
	}
	if s.CaptioningTime <= 0 {
		s.CaptioningTime = d.CaptioningTime
	}
	if s.VotingTime <= 0 {
		s.VotingTime = d.VotingTime
	}
	if s.RevealPause <= 0 {
		s.RevealPause = d.RevealPause
	}
	if s.InterRoundPause <= 0 {
		s.InterRoundPause = d.InterRoundPause
	}
	if s.MaxCaptionLength < 1 {
		s.MaxCaptionLength = d.MaxCaptionLength
	}
	return s
}

// IsValidCategory reports whether cat is the standard category or one of the
// configured bonus categories.
func (s Settings) IsValidCategory(cat string) bool {
	if cat == CategoryStandard {
		return true
	}
	for _, c := range s.BonusCategories {
		if c == cat {
			return true
		}
	}
	return false
}

type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar"`
	IsHost    bool        `json:"isHost"`
	Connected bool        `json:"connected"`
	Ready     bool        `json:"ready"`
	JoinedAt  time.Time   `json:"joinedAt"`
	Score     int         `json:"score"`
	Stats     PlayerStats `json:"stats"`
}

type PlayerStats struct {
	SoundsCreated      int            `json:"soundsCreated"`
	CaptionsWritten    int            `json:"captionsWritten"`
	RoundsWon          int            `json:"roundsWon"`
	SoundVotesReceived int            `json:"soundVotesReceived"`
	VotesReceived      map[string]int `json:"votesReceived"` // category -> count
}

func (ps *PlayerStats) addVotes(category string, n int) {
	if n == 0 {
		return
	}
	if ps.VotesReceived == nil {
		ps.VotesReceived = make(map[string]int)
	}
	ps.VotesReceived[category] += n
}

// AudioTrack is the engine's view of a recorded sound. Present is false
// until the sound-maker submits; the captioning entry action replaces any
// still-pending track with a silent placeholder so later phases never see
// a pending one.
type AudioTrack struct {
	Present    bool   `json:"present"`
	Ref        string `json:"ref"`
	DurationMs int    `json:"durationMs"`
}

// GifImage mirrors AudioTrack for the selector's side of a submission.
type GifImage struct {
	Present    bool   `json:"present"`
	Ref        string `json:"ref"`
	PreviewRef string `json:"previewRef"`
	Title      string `json:"title"`
}

// Assignment pairs one sound-maker with one GIF-selector for a round.
type Assignment struct {
	ID            string `json:"id"`
	SoundMakerID  string `json:"soundMakerId"`
	GifSelectorID string `json:"gifSelectorId"`
}

type Submission struct {
	ID            string     `json:"id"`
	AssignmentID  string     `json:"assignmentId"`
	SoundMakerID  string     `json:"soundMakerId"`
	GifSelectorID string     `json:"gifSelectorId"`
	Audio         AudioTrack `json:"audio"`
	Gif           GifImage   `json:"gif"`
	Caption       string     `json:"caption"`
	Votes         []Vote     `json:"votes"`
	Reactions     []Reaction `json:"reactions"`
	Score         int        `json:"score"`
	SubmittedAt   *time.Time `json:"submittedAt"` // nil until finalized, set at most once
}

// Finalized reports whether the submission has been locked in, either by
// its selector or by the results-phase default fill.
func (s *Submission) Finalized() bool {
	return s.SubmittedAt != nil
}

func (s *Submission) votesIn(category string) int {
	n := 0
	for _, v := range s.Votes {
		if v.Category == category {
			n++
		}
	}
	return n
}

type Vote struct {
	ID           string    `json:"id"`
	VoterID      string    `json:"voterId"`
	SubmissionID string    `json:"submissionId"`
	Category     string    `json:"category"`
	Points       int       `json:"points"`
	CastAt       time.Time `json:"castAt"`
}

type Reaction struct {
	PlayerID string    `json:"playerId"`
	Emoji    string    `json:"emoji"`
	At       time.Time `json:"at"`
}

type Round struct {
	ID           string        `json:"id"`
	Number       int           `json:"number"`
	Status       RoundStatus   `json:"status"`
	SoundMakers  []string      `json:"soundMakers"`
	GifSelectors []string      `json:"gifSelectors"`
	Assignments  []*Assignment `json:"assignments"`
	Submissions  []*Submission `json:"submissions"`

	StartedAt           time.Time  `json:"startedAt"`
	CaptioningStartedAt *time.Time `json:"captioningStartedAt"`
	VotingStartedAt     *time.Time `json:"votingStartedAt"`
	CompletedAt         *time.Time `json:"completedAt"`
}

func (r *Round) submission(id string) *Submission {
	for _, s := range r.Submissions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *Round) submissionForAssignment(assignmentID string) *Submission {
	for _, s := range r.Submissions {
		if s.AssignmentID == assignmentID {
			return s
		}
	}
	return nil
}

// standardVoteCount tallies standard-category votes across all submissions.
func (r *Round) standardVoteCount() int {
	n := 0
	for _, s := range r.Submissions {
		n += s.votesIn(CategoryStandard)
	}
	return n
}

// allFinalized reports whether every submission carries a finalize timestamp.
func (r *Round) allFinalized() bool {
	for _, s := range r.Submissions {
		if !s.Finalized() {
			return false
		}
	}
	return len(r.Submissions) > 0
}

// LeaderboardEntry is derived per broadcast, never stored.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Delta    int    `json:"delta"`
}

// Awards is computed once when the game finishes. BestActorID and
// MostCreativeID are empty when nobody earned the corresponding stat.
type Awards struct {
	ChampionID     string `json:"championId"`
	BestActorID    string `json:"bestActorId,omitempty"`
	MostCreativeID string `json:"mostCreativeId,omitempty"`
}
