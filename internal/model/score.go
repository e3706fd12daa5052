package model

// Classification is the coarse outreach-priority bucket for a lead.
type Classification string

const (
	ClassHot      Classification = "HOT"
	ClassWarm     Classification = "WARM"
	ClassCold     Classification = "COLD"
	ClassUnlikely Classification = "UNLIKELY"
)

// FollowUpPriority maps a classification to a 1-3 outreach priority.
func (c Classification) FollowUpPriority() int {
	switch c {
	case ClassHot:
		return 1
	case ClassWarm:
		return 2
	default:
		return 3
	}
}

// ScoreResult is the output of the scoring engine for one lead. Reasons and
// AppliedRuleIDs are ordered by rule evaluation order, so identical input
// always yields identical output.
type ScoreResult struct {
	Score          int            `json:"score"`
	Classification Classification `json:"classification"`
	Reasons        []string       `json:"reasons"`
	AppliedRuleIDs []string       `json:"applied_rule_ids"`
}
