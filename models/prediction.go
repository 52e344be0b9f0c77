package models

import "time"

type ScoringOutcome string

const (
	OutcomeExact   ScoringOutcome = "exact"
	OutcomeCorrect ScoringOutcome = "correct"
	OutcomeNone    ScoringOutcome = "none"
)

// Prediction is one user's guess for one match. PointsEarned and
// ScoringOutcome are derived and only written by scoring.
type Prediction struct {
	ID                 int            `json:"prediction_id" db:"id"`
	UserID             int            `json:"user_id" db:"user_id"`
	MatchID            int            `json:"match_id" db:"match_id"`
	PredictedHomeScore int            `json:"predicted_home_score" db:"predicted_home_score"`
	PredictedAwayScore int            `json:"predicted_away_score" db:"predicted_away_score"`
	PointsEarned       int            `json:"points_earned" db:"points_earned"`
	ScoringOutcome     ScoringOutcome `json:"scoring_type" db:"scoring_outcome"`
	SubmittedAt        time.Time      `json:"submitted_at" db:"submitted_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// PredictionInput is one item of a submission batch. Scores are pointers so a
// missing field can be told apart from a zero.
type PredictionInput struct {
	MatchID            int  `json:"match_id"`
	PredictedHomeScore *int `json:"predicted_home_score"`
	PredictedAwayScore *int `json:"predicted_away_score"`
}

// ScoredPrediction is the scoring result for a single prediction.
type ScoredPrediction struct {
	PredictionID int            `json:"prediction_id"`
	UserID       int            `json:"user_id"`
	Points       int            `json:"points_earned"`
	Outcome      ScoringOutcome `json:"scoring_type"`
}

// PredictionView is a prediction joined with its match, teams and author.
type PredictionView struct {
	Prediction
	DisplayName     *string     `json:"display_name,omitempty" db:"display_name"`
	MatchNumber     *int        `json:"match_number,omitempty" db:"match_number"`
	Stage           string      `json:"stage" db:"stage"`
	GroupLetter     *string     `json:"group_letter,omitempty" db:"group_letter"`
	MatchTime       time.Time   `json:"match_datetime" db:"match_time"`
	Venue           *string     `json:"venue,omitempty" db:"venue"`
	HomeScore       *int        `json:"home_score" db:"home_score"`
	AwayScore       *int        `json:"away_score" db:"away_score"`
	Status          MatchStatus `json:"status" db:"status"`
	PlaceholderHome *string     `json:"placeholder_home,omitempty" db:"placeholder_home"`
	PlaceholderAway *string     `json:"placeholder_away,omitempty" db:"placeholder_away"`
	HomeTeamName    *string     `json:"home_team_name,omitempty" db:"home_team_name"`
	HomeTeamFlag    *string     `json:"home_team_flag,omitempty" db:"home_team_flag"`
	AwayTeamName    *string     `json:"away_team_name,omitempty" db:"away_team_name"`
	AwayTeamFlag    *string     `json:"away_team_flag,omitempty" db:"away_team_flag"`
}
