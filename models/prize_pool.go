package models

type PrizeShare struct {
	Place      int     `json:"place"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type PrizePool struct {
	ParticipantCount int          `json:"participant_count"`
	TotalJackpot     float64      `json:"total_jackpot"`
	PrizePerPerson   float64      `json:"prize_per_person"`
	Breakdown        []PrizeShare `json:"breakdown"`
}
