package scoring

import (
	"math"

	"github.com/Dosada05/prediction-pool/models"
)

// DefaultPrizePerPerson is the buy-in of every active participant.
const DefaultPrizePerPerson = 104.0

// prizeSplit is the share of the jackpot paid to places 1..10.
var prizeSplit = []float64{0.30, 0.20, 0.15, 0.10, 0.08, 0.06, 0.04, 0.03, 0.02, 0.02}

// PrizeBreakdown splits the jackpot of participantCount buy-ins. Amounts are
// rounded to cents.
func PrizeBreakdown(participantCount int, perPerson float64) models.PrizePool {
	total := float64(participantCount) * perPerson
	breakdown := make([]models.PrizeShare, len(prizeSplit))
	for i, pct := range prizeSplit {
		breakdown[i] = models.PrizeShare{
			Place:      i + 1,
			Percentage: math.Round(pct*100*100) / 100,
			Amount:     math.Round(total*pct*100) / 100,
		}
	}
	return models.PrizePool{
		ParticipantCount: participantCount,
		TotalJackpot:     total,
		PrizePerPerson:   perPerson,
		Breakdown:        breakdown,
	}
}
