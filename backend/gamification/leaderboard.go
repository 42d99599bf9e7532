package gamification

import "sort"

// LeaderboardLimit caps how many learners RankLeaderboard returns.
const LeaderboardLimit = 50

type LeaderboardEntry struct {
	Rank               int    `json:"rank"`
	UserID             uint   `json:"user_id"`
	Name               string `json:"name"`
	ImageURL           string `json:"image_url,omitempty"`
	TotalXP            int    `json:"total_xp"`
	Level              int    `json:"level"`
	CompletedLessons   int    `json:"completed_lessons"`
	CertificatesEarned int    `json:"certificates_earned"`
	BadgesEarned       int    `json:"badges_earned"`
}

// RankLeaderboard drops learners without XP, orders the rest by XP descending
// (lower user id first on ties) and keeps the top LeaderboardLimit. The input
// is not modified.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.TotalXP > 0 {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalXP != ranked[j].TotalXP {
			return ranked[i].TotalXP > ranked[j].TotalXP
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	if len(ranked) > LeaderboardLimit {
		ranked = ranked[:LeaderboardLimit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
