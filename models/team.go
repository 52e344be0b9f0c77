package models

type Team struct {
	ID          int     `json:"team_id" db:"id"`
	Name        string  `json:"name" db:"name"`
	ISOCode     *string `json:"iso_code,omitempty" db:"iso_code"`
	GroupLetter *string `json:"group_letter,omitempty" db:"group_letter"`
	FlagEmoji   *string `json:"flag_emoji,omitempty" db:"flag_emoji"`
}
