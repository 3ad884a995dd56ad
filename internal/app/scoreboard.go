package app

import (
	"sort"

	"festquiz/internal/domain"
)

// Scoreboard is the end-of-round view for room sessions.
type Scoreboard struct {
	RoomCode string
	Records  []domain.AnsweredRecord
	Results  []domain.FinalResult
	Entries  []domain.ScoreEntry
}

// RankPlayers orders players by score, highest first. Equal scores keep the
// order the room endpoint listed the players in.
func RankPlayers(players domain.PlayerList) []domain.ScoreEntry {
	entries := make([]domain.ScoreEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, domain.ScoreEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
