package game

// StatDelta collects the per-player stat increments produced by one round.
type StatDelta struct {
	SoundsCreated      int
	CaptionsWritten    int
	RoundsWon          int
	SoundVotesReceived int
	VotesReceived      map[string]int
}

// RoundResult is the Scoring Engine's output. Submission scores are keyed by
// submission id, deltas and stats by player id.
type RoundResult struct {
	SubmissionScores   map[string]int
	ScoreDeltas        map[string]int
	Stats              map[string]*StatDelta
	WinningSubmissions []string
}

// ScoreRound computes scores for a completed round. It is a pure function:
// the same round and settings always produce the same result, and the round
// itself is not mutated.
//
// Each submission earns the points stamped on its votes at cast time
// (pointsPerVote for standard, bonusVotePoints for bonus categories) plus
// flat participation points. Every submission tied for the most standard
// votes (when that maximum is positive) earns the full round-winner bonus,
// its selector a round win and its sound-maker the sound-maker bonus.
// Submission scores are credited to the gif-selector; the sound-maker bonus
// is a separate delta.
func ScoreRound(round *Round, settings Settings) *RoundResult {
	res := &RoundResult{
		SubmissionScores: make(map[string]int),
		ScoreDeltas:      make(map[string]int),
		Stats:            make(map[string]*StatDelta),
	}

	stat := func(playerID string) *StatDelta {
		if s, ok := res.Stats[playerID]; ok {
			return s
		}
		s := &StatDelta{VotesReceived: make(map[string]int)}
		res.Stats[playerID] = s
		return s
	}

	maxVotes := 0
	for _, sub := range round.Submissions {
		if n := sub.votesIn(CategoryStandard); n > maxVotes {
			maxVotes = n
		}
	}

	for _, sub := range round.Submissions {
		standard := sub.votesIn(CategoryStandard)
		score := settings.Participation
		for _, v := range sub.Votes {
			score += v.Points
		}

		maker := stat(sub.SoundMakerID)
		maker.SoundsCreated++
		maker.SoundVotesReceived += standard

		selector := stat(sub.GifSelectorID)
		selector.CaptionsWritten++
		for _, v := range sub.Votes {
			selector.VotesReceived[v.Category]++
		}

		if standard == maxVotes && maxVotes > 0 {
			score += settings.RoundWinnerBonus
			selector.RoundsWon++
			res.ScoreDeltas[sub.SoundMakerID] += settings.SoundMakerPoints
			res.WinningSubmissions = append(res.WinningSubmissions, sub.ID)
		}

		res.SubmissionScores[sub.ID] = score
		res.ScoreDeltas[sub.GifSelectorID] += score
	}

	return res
}
