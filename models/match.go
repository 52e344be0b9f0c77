package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming   MatchStatus = "upcoming"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Match is a single fixture of the tournament. Team references are nil for
// bracket slots that are not resolved yet; PlaceholderHome/PlaceholderAway
// carry the label shown instead (e.g. "Winner Group A").
type Match struct {
	ID              int         `json:"match_id" db:"id"`
	MatchNumber     *int        `json:"match_number,omitempty" db:"match_number"`
	Stage           string      `json:"stage" db:"stage"`
	GroupLetter     *string     `json:"group_letter,omitempty" db:"group_letter"`
	HomeTeamID      *int        `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID      *int        `json:"away_team_id,omitempty" db:"away_team_id"`
	MatchTime       time.Time   `json:"match_datetime" db:"match_time"`
	Venue           *string     `json:"venue,omitempty" db:"venue"`
	HomeScore       *int        `json:"home_score" db:"home_score"`
	AwayScore       *int        `json:"away_score" db:"away_score"`
	Status          MatchStatus `json:"status" db:"status"`
	PlaceholderHome *string     `json:"placeholder_home,omitempty" db:"placeholder_home"`
	PlaceholderAway *string     `json:"placeholder_away,omitempty" db:"placeholder_away"`
}

// HasResult reports whether the match is completed and carries both scores.
func (m *Match) HasResult() bool {
	return m.Status == MatchStatusCompleted && m.HomeScore != nil && m.AwayScore != nil
}

// MatchView is a match joined with the display data of both teams.
type MatchView struct {
	Match
	HomeTeamName *string `json:"home_team_name,omitempty" db:"home_team_name"`
	HomeTeamISO  *string `json:"home_team_iso,omitempty" db:"home_team_iso"`
	HomeTeamFlag *string `json:"home_team_flag,omitempty" db:"home_team_flag"`
	AwayTeamName *string `json:"away_team_name,omitempty" db:"away_team_name"`
	AwayTeamISO  *string `json:"away_team_iso,omitempty" db:"away_team_iso"`
	AwayTeamFlag *string `json:"away_team_flag,omitempty" db:"away_team_flag"`
}
