package models

// DashboardStats is the admin overview of the pool.
type DashboardStats struct {
	ParticipantsTotal int      `json:"participants_total"`
	PredictionsTotal  int      `json:"predictions_total"`
	MatchesTotal      int      `json:"matches_total"`
	MatchesCompleted  int      `json:"matches_completed"`
	MatchesUpcoming   int      `json:"matches_upcoming"`
	OpenStages        []string `json:"open_stages"`
	LockedStages      []string `json:"locked_stages"`
}
