package models

import "time"

// ParticipantTotals is the per-user aggregate of persisted prediction points.
// Users without predictions appear with zeros.
type ParticipantTotals struct {
	UserID       int    `json:"user_id" db:"user_id"`
	DisplayName  string `json:"display_name" db:"display_name"`
	TotalPoints  int    `json:"total_points" db:"total_points"`
	ExactCount   int    `json:"exact_count" db:"exact_count"`
	CorrectCount int    `json:"correct_count" db:"correct_count"`
}

// LeaderboardEntry is one row of the derived standing. It is never persisted.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int    `json:"user_id"`
	DisplayName  string `json:"display_name"`
	TotalPoints  int    `json:"total_points"`
	ExactCount   int    `json:"exact_count"`
	CorrectCount int    `json:"correct_count"`
}

// UserSummary is the public profile of a participant.
type UserSummary struct {
	UserID      int               `json:"user_id"`
	DisplayName string            `json:"display_name"`
	Standing    *LeaderboardEntry `json:"standing,omitempty"`
	Predictions []PredictionView  `json:"predictions"`
}

// MatchScoreSummary describes one match scoring pass.
type MatchScoreSummary struct {
	MatchID            int                `json:"match_id"`
	Stage              string             `json:"stage"`
	HomeScore          int                `json:"home_score"`
	AwayScore          int                `json:"away_score"`
	PredictionsUpdated int                `json:"predictions_updated"`
	Scored             []ScoredPrediction `json:"-"`
}

type MatchFailure struct {
	MatchID int    `json:"match_id"`
	Error   string `json:"error"`
}

// RecalculationReport is the outcome of a full sweep. Failures for single
// matches are collected here instead of failing the sweep.
type RecalculationReport struct {
	MatchesScored      int            `json:"matches_scored"`
	PredictionsUpdated int            `json:"predictions_updated"`
	Failures           []MatchFailure `json:"failures"`
	StartedAt          time.Time      `json:"started_at"`
	Duration           time.Duration  `json:"duration_ns"`
}
