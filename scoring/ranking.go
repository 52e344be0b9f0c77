package scoring

import (
	"sort"

	"github.com/Dosada05/prediction-pool/models"
)

func sameScore(a, b models.ParticipantTotals) bool {
	return a.TotalPoints == b.TotalPoints && a.ExactCount == b.ExactCount && a.CorrectCount == b.CorrectCount
}

// BuildStanding orders participants by points, exact hits and correct hits
// (all descending), then display name and user id, and assigns competition
// ranks: tied rows share a rank and the next group starts at its position.
func BuildStanding(totals []models.ParticipantTotals) []models.LeaderboardEntry {
	sorted := make([]models.ParticipantTotals, len(totals))
	copy(sorted, totals)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.ExactCount != b.ExactCount {
			return a.ExactCount > b.ExactCount
		}
		if a.CorrectCount != b.CorrectCount {
			return a.CorrectCount > b.CorrectCount
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.UserID < b.UserID
	})

	standing := make([]models.LeaderboardEntry, len(sorted))
	rank := 1
	for i, t := range sorted {
		if i > 0 && !sameScore(t, sorted[i-1]) {
			rank = i + 1
		}
		standing[i] = models.LeaderboardEntry{
			Rank:         rank,
			UserID:       t.UserID,
			DisplayName:  t.DisplayName,
			TotalPoints:  t.TotalPoints,
			ExactCount:   t.ExactCount,
			CorrectCount: t.CorrectCount,
		}
	}
	return standing
}

// EntryFor finds a user's row in a standing.
func EntryFor(standing []models.LeaderboardEntry, userID int) (*models.LeaderboardEntry, bool) {
	for i := range standing {
		if standing[i].UserID == userID {
			return &standing[i], true
		}
	}
	return nil, false
}
