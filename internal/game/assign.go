package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// PairKey identifies an unordered sound-maker/selector pairing. Used to
// avoid handing the same two players to each other round after round.
type PairKey struct {
	A, B string
}

func NewPairKey(x, y string) PairKey {
	if x > y {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// RolePartition is the Assignment Generator's output for one round.
type RolePartition struct {
	SoundMakers  []string
	GifSelectors []string
	Assignments  []*Assignment
}

// GenerateAssignments splits the connected players of a round into
// ⌈n/2⌉ sound-makers and the remaining gif-selectors, then pairs each
// sound-maker with a distinct selector. When n is odd one sound-maker ends
// the round without an assignment and just votes.
//
// usedPairs is the set of pairings already issued this game. A selector
// whose pairing with the current sound-maker would repeat is only drawn
// when every remaining selector would repeat.
func GenerateAssignments(playerIDs []string, usedPairs map[PairKey]bool, rng *rand.Rand) RolePartition {
	ids := append([]string(nil), playerIDs...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	makerCount := (len(ids) + 1) / 2
	part := RolePartition{
		SoundMakers:  ids[:makerCount],
		GifSelectors: ids[makerCount:],
	}

	unclaimed := append([]string(nil), part.GifSelectors...)
	for _, maker := range part.SoundMakers {
		if len(unclaimed) == 0 {
			break
		}
		fresh := make([]int, 0, len(unclaimed))
		for i, sel := range unclaimed {
			if !usedPairs[NewPairKey(maker, sel)] {
				fresh = append(fresh, i)
			}
		}
		var pick int
		if len(fresh) > 0 {
			pick = fresh[rng.Intn(len(fresh))]
		} else {
			pick = rng.Intn(len(unclaimed))
		}
		selector := unclaimed[pick]
		unclaimed = append(unclaimed[:pick], unclaimed[pick+1:]...)
		part.Assignments = append(part.Assignments, &Assignment{
			ID:            uuid.NewString(),
			SoundMakerID:  maker,
			GifSelectorID: selector,
		})
	}
	return part
}
