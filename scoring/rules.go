// Package scoring holds the pure rules of the pool: stage point values, the
// deadline gate, match scoring, standing ranks and the prize split.
package scoring

import (
	"fmt"
	"os"
	"sort"

	"github.com/Dosada05/prediction-pool/models"
	"gopkg.in/yaml.v3"
)

const (
	StageGroup         = "Group Stage"
	StageRoundOf32     = "Round of 32"
	StageRoundOf16     = "Round of 16"
	StageQuarterfinals = "Quarterfinals"
	StageSemifinals    = "Semifinals"
	StageThirdPlace    = "Third Place"
	StageFinal         = "Final"
)

// DefaultRule applies to a stage missing from the table.
var DefaultRule = models.StageRule{CorrectOutcome: 1, ExactScore: 3}

var stageOrder = []string{
	StageGroup, StageRoundOf32, StageRoundOf16, StageQuarterfinals,
	StageSemifinals, StageThirdPlace, StageFinal,
}

// Rules maps a stage name to its point values. It is built once at startup
// and only read afterwards.
type Rules struct {
	byStage map[string]models.StageRule
}

func DefaultRules() *Rules {
	return &Rules{byStage: map[string]models.StageRule{
		StageGroup:         {CorrectOutcome: 1, ExactScore: 3},
		StageRoundOf32:     {CorrectOutcome: 2, ExactScore: 5},
		StageRoundOf16:     {CorrectOutcome: 3, ExactScore: 7},
		StageQuarterfinals: {CorrectOutcome: 4, ExactScore: 9},
		StageSemifinals:    {CorrectOutcome: 6, ExactScore: 11},
		StageThirdPlace:    {CorrectOutcome: 6, ExactScore: 11},
		StageFinal:         {CorrectOutcome: 10, ExactScore: 20},
	}}
}

// Lookup returns the rule of a stage and whether the stage is configured.
func (r *Rules) Lookup(stage string) (models.StageRule, bool) {
	rule, ok := r.byStage[stage]
	return rule, ok
}

// For returns the rule of a stage, falling back to DefaultRule.
func (r *Rules) For(stage string) models.StageRule {
	if rule, ok := r.byStage[stage]; ok {
		return rule
	}
	return DefaultRule
}

// List returns the table with known stages in tournament order and any extra
// stages alphabetically after them.
func (r *Rules) List() []models.StageRuleView {
	seen := make(map[string]bool, len(r.byStage))
	views := make([]models.StageRuleView, 0, len(r.byStage))
	for _, stage := range stageOrder {
		if rule, ok := r.byStage[stage]; ok {
			views = append(views, models.StageRuleView{Stage: stage, StageRule: rule})
			seen[stage] = true
		}
	}
	var extra []string
	for stage := range r.byStage {
		if !seen[stage] {
			extra = append(extra, stage)
		}
	}
	sort.Strings(extra)
	for _, stage := range extra {
		views = append(views, models.StageRuleView{Stage: stage, StageRule: r.byStage[stage]})
	}
	return views
}

type rulesFile struct {
	Stages map[string]models.StageRule `yaml:"stages"`
}

// LoadRules reads a YAML file of the form
//
//	stages:
//	  Final: {correct: 10, exact: 20}
//
// and overlays it on the default table.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage rules file %s: %w", path, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stage rules: %w", err)
	}
	rules := DefaultRules()
	for stage, rule := range f.Stages {
		if stage == "" {
			return nil, fmt.Errorf("stage rules: empty stage name")
		}
		if rule.CorrectOutcome <= 0 || rule.ExactScore <= 0 {
			return nil, fmt.Errorf("stage rules: %q must award positive points", stage)
		}
		rules.byStage[stage] = rule
	}
	return rules, nil
}
