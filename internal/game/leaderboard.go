package game

import "sort"

// BuildLeaderboard ranks the given players by cumulative score using
// standard competition ranking: tied scores share a rank and the next
// distinct score resumes at its list position + 1. deltas carries the score
// gained in the just-completed round and may be nil.
//
// Only connected players are ranked. Ties are ordered by join time then id
// so the listing is stable across broadcasts.
func BuildLeaderboard(players []*Player, deltas map[string]int) []LeaderboardEntry {
	ranked := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Connected {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})

	entries := make([]LeaderboardEntry, 0, len(ranked))
	rank := 0
	for i, p := range ranked {
		if i == 0 || p.Score != ranked[i-1].Score {
			rank = i + 1
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     rank,
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Delta:    deltas[p.ID],
		})
	}
	return entries
}

// ComputeAwards picks the end-of-game awards over the connected players.
// Best actor and most creative are omitted (empty id) when the winning stat
// is zero. Ties go to the earliest-joined player, then the lower id.
func ComputeAwards(players []*Player) Awards {
	connected := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Connected {
			connected = append(connected, p)
		}
	}
	sort.SliceStable(connected, func(i, j int) bool {
		if !connected[i].JoinedAt.Equal(connected[j].JoinedAt) {
			return connected[i].JoinedAt.Before(connected[j].JoinedAt)
		}
		return connected[i].ID < connected[j].ID
	})

	var aw Awards
	best := func(stat func(*Player) int) (string, int) {
		id, top := "", 0
		for _, p := range connected {
			if v := stat(p); v > top {
				id, top = p.ID, v
			}
		}
		return id, top
	}

	champion, topScore := "", -1
	for _, p := range connected {
		if p.Score > topScore {
			champion, topScore = p.ID, p.Score
		}
	}
	aw.ChampionID = champion
	aw.BestActorID, _ = best(func(p *Player) int { return p.Stats.SoundVotesReceived })
	aw.MostCreativeID, _ = best(func(p *Player) int { return p.Stats.RoundsWon })
	return aw
}
