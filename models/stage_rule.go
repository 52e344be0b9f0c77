package models

// StageRule holds the points a stage awards. ExactScore is expected to be at
// least CorrectOutcome.
type StageRule struct {
	CorrectOutcome int `json:"correct" yaml:"correct"`
	ExactScore     int `json:"exact" yaml:"exact"`
}

// StageRuleView pairs a stage name with its rule for listing.
type StageRuleView struct {
	Stage string `json:"stage"`
	StageRule
}
