package scoring

import (
	"errors"

	"github.com/Dosada05/prediction-pool/models"
)

var ErrMatchNotCompleted = errors.New("match is not completed")

type outcome int

const (
	homeWin outcome = iota
	awayWin
	draw
)

func outcomeOf(home, away int) outcome {
	switch {
	case home > away:
		return homeWin
	case home < away:
		return awayWin
	default:
		return draw
	}
}

// ScorePrediction grades one guess against an actual score.
func ScorePrediction(actualHome, actualAway, predHome, predAway int, rule models.StageRule) (int, models.ScoringOutcome) {
	if predHome == actualHome && predAway == actualAway {
		return rule.ExactScore, models.OutcomeExact
	}
	if outcomeOf(predHome, predAway) == outcomeOf(actualHome, actualAway) {
		return rule.CorrectOutcome, models.OutcomeCorrect
	}
	return 0, models.OutcomeNone
}

// ScoreMatch grades every prediction of a completed match. The result is a
// full replacement for the derived fields, so running it again yields the same
// values.
func ScoreMatch(m *models.Match, rule models.StageRule, preds []models.Prediction) ([]models.ScoredPrediction, error) {
	if m == nil || !m.HasResult() {
		return nil, ErrMatchNotCompleted
	}
	scored := make([]models.ScoredPrediction, 0, len(preds))
	for _, p := range preds {
		points, out := ScorePrediction(*m.HomeScore, *m.AwayScore, p.PredictedHomeScore, p.PredictedAwayScore, rule)
		scored = append(scored, models.ScoredPrediction{
			PredictionID: p.ID,
			UserID:       p.UserID,
			Points:       points,
			Outcome:      out,
		})
	}
	return scored, nil
}
