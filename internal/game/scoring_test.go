package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.PointsPerVote = 100
	s.BonusVotePoints = 25
	s.Participation = 10
	s.RoundWinnerBonus = 150
	s.SoundMakerPoints = 50
	return s
}

// makeRound builds a completed two-submission round:
//
//	sub1: maker m1, selector s1
//	sub2: maker m2, selector s2
func makeRound(votes1, votes2 []Vote) *Round {
	return &Round{
		Number:       1,
		Status:       RoundCompleted,
		SoundMakers:  []string{"m1", "m2"},
		GifSelectors: []string{"s1", "s2"},
		Submissions: []*Submission{
			{ID: "sub1", SoundMakerID: "m1", GifSelectorID: "s1", Votes: votes1},
			{ID: "sub2", SoundMakerID: "m2", GifSelectorID: "s2", Votes: votes2},
		},
	}
}

func stdVote(voter, sub string) Vote {
	return Vote{VoterID: voter, SubmissionID: sub, Category: CategoryStandard, Points: 100}
}

func TestScoreRoundBasic(t *testing.T) {
	round := makeRound(
		[]Vote{stdVote("v1", "sub1"), stdVote("v2", "sub1")},
		[]Vote{stdVote("v3", "sub2")},
	)
	res := ScoreRound(round, testSettings())

	// sub1: 2 votes * 100 + 10 participation + 150 winner bonus
	assert.Equal(t, 360, res.SubmissionScores["sub1"])
	// sub2: 1 vote * 100 + 10 participation, no bonus
	assert.Equal(t, 110, res.SubmissionScores["sub2"])

	assert.Equal(t, 360, res.ScoreDeltas["s1"])
	assert.Equal(t, 110, res.ScoreDeltas["s2"])
	assert.Equal(t, 50, res.ScoreDeltas["m1"], "winning sound-maker bonus is credited separately")
	assert.Zero(t, res.ScoreDeltas["m2"])

	assert.Equal(t, []string{"sub1"}, res.WinningSubmissions)
}

func TestScoreRoundIsDeterministic(t *testing.T) {
	round := makeRound(
		[]Vote{stdVote("v1", "sub1")},
		[]Vote{stdVote("v2", "sub2"), stdVote("v3", "sub2")},
	)
	first := ScoreRound(round, testSettings())
	second := ScoreRound(round, testSettings())
	assert.Equal(t, first.SubmissionScores, second.SubmissionScores)
	assert.Equal(t, first.ScoreDeltas, second.ScoreDeltas)
}

func TestScoreRoundTiedWinnersBothGetFullBonus(t *testing.T) {
	round := makeRound(
		[]Vote{stdVote("v1", "sub1")},
		[]Vote{stdVote("v2", "sub2")},
	)
	res := ScoreRound(round, testSettings())

	// 1 vote * 100 + 10 + full 150 bonus each, not split.
	assert.Equal(t, 260, res.SubmissionScores["sub1"])
	assert.Equal(t, 260, res.SubmissionScores["sub2"])
	assert.Len(t, res.WinningSubmissions, 2)
	assert.Equal(t, 50, res.ScoreDeltas["m1"])
	assert.Equal(t, 50, res.ScoreDeltas["m2"])
	assert.Equal(t, 1, res.Stats["s1"].RoundsWon)
	assert.Equal(t, 1, res.Stats["s2"].RoundsWon)
}

func TestScoreRoundNoVotesNoWinner(t *testing.T) {
	round := makeRound(nil, nil)
	res := ScoreRound(round, testSettings())

	assert.Equal(t, 10, res.SubmissionScores["sub1"], "participation only")
	assert.Equal(t, 10, res.SubmissionScores["sub2"])
	assert.Empty(t, res.WinningSubmissions, "maxVotes == 0 means no round winner")
	assert.Zero(t, res.ScoreDeltas["m1"])
	assert.Zero(t, res.Stats["s1"].RoundsWon)
}

func TestScoreRoundBonusVotes(t *testing.T) {
	settings := testSettings()
	settings.BonusCategories = []string{"funniest"}
	round := makeRound(
		[]Vote{
			stdVote("v1", "sub1"),
			{VoterID: "v2", SubmissionID: "sub1", Category: "funniest", Points: 25},
		},
		nil,
	)
	res := ScoreRound(round, settings)

	// 1 standard * 100 + 1 bonus * 25 + 10 participation + 150 winner bonus
	assert.Equal(t, 285, res.SubmissionScores["sub1"])
	assert.Equal(t, 1, res.Stats["s1"].VotesReceived[CategoryStandard])
	assert.Equal(t, 1, res.Stats["s1"].VotesReceived["funniest"])
	// The bonus vote does not count toward the winner tally.
	assert.Equal(t, 1, res.Stats["m1"].SoundVotesReceived)
}

func TestScoreRoundUsesStoredVotePoints(t *testing.T) {
	// Votes carry their weight from cast time; a later settings change must
	// not rewrite history.
	round := makeRound(
		[]Vote{{VoterID: "v1", SubmissionID: "sub1", Category: CategoryStandard, Points: 70}},
		nil,
	)
	res := ScoreRound(round, testSettings())

	// 70 stored + 10 participation + 150 winner bonus
	assert.Equal(t, 230, res.SubmissionScores["sub1"])
}

func TestScoreRoundStats(t *testing.T) {
	round := makeRound(
		[]Vote{stdVote("v1", "sub1"), stdVote("v2", "sub1")},
		nil,
	)
	res := ScoreRound(round, testSettings())

	require.NotNil(t, res.Stats["m1"])
	assert.Equal(t, 1, res.Stats["m1"].SoundsCreated)
	assert.Equal(t, 2, res.Stats["m1"].SoundVotesReceived)
	assert.Equal(t, 1, res.Stats["m2"].SoundsCreated)
	assert.Zero(t, res.Stats["m2"].SoundVotesReceived)

	assert.Equal(t, 1, res.Stats["s1"].CaptionsWritten)
	assert.Equal(t, 2, res.Stats["s1"].VotesReceived[CategoryStandard])
	assert.Equal(t, 1, res.Stats["s1"].RoundsWon)
	assert.Zero(t, res.Stats["s2"].RoundsWon)
}

func TestScoreRoundDoesNotMutateRound(t *testing.T) {
	round := makeRound([]Vote{stdVote("v1", "sub1")}, nil)
	_ = ScoreRound(round, testSettings())
	assert.Zero(t, round.Submissions[0].Score, "scoring engine must not write back")
	assert.Len(t, round.Submissions[0].Votes, 1)
}
