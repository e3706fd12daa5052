// Package score turns an enriched lead into a numeric score and a
// classification. Scoring is pure: no I/O, no clock, no randomness, so the
// same enriched lead always produces the same result.
package score

import (
	"strings"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// Engine applies a fixed, ordered rule list to an enriched lead. Weights,
// caps, and cutoffs come from configuration; the rule order is part of the
// output contract and never changes at runtime.
type Engine struct {
	cfg      config.ScoreConfig
	keywords config.KeywordConfig
}

// NewEngine creates an Engine with the given weights and keyword lists.
func NewEngine(cfg config.ScoreConfig, keywords config.KeywordConfig) *Engine {
	return &Engine{cfg: cfg, keywords: keywords}
}

// Score evaluates every rule against the lead, sums the points, clamps the
// total to [0,100], and classifies. A lead outside the USA keeps its score but
// is always classified UNLIKELY.
func (e *Engine) Score(lead model.EnrichedLead) model.ScoreResult {
	var (
		total   int
		reasons []string
		applied []string
	)

	for _, r := range e.rules() {
		points, reason, ok := r.eval(lead)
		if !ok {
			continue
		}
		total += points
		reasons = append(reasons, reason)
		applied = append(applied, r.id)
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	classification := e.classify(total)
	if !lead.IsUSA {
		classification = model.ClassUnlikely
		reasons = append(reasons, "location outside the USA")
	}

	return model.ScoreResult{
		Score:          total,
		Classification: classification,
		Reasons:        reasons,
		AppliedRuleIDs: applied,
	}
}

func (e *Engine) classify(score int) model.Classification {
	switch {
	case score >= e.cfg.HotCutoff:
		return model.ClassHot
	case score >= e.cfg.WarmCutoff:
		return model.ClassWarm
	case score >= e.cfg.ColdCutoff:
		return model.ClassCold
	default:
		return model.ClassUnlikely
	}
}

// capped returns count*per bounded by cap. A non-positive cap means no cap.
func capped(count, per, cap int) int {
	points := count * per
	if cap > 0 && points > cap {
		return cap
	}
	return points
}

// matchKeywords returns the distinct keywords appearing in text, preserving
// keyword-list order. Matching is case-insensitive substring matching.
func matchKeywords(text string, keywords []string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

func contactSignals(lead model.EnrichedLead) (model.ContactSignals, bool) {
	for _, bundle := range lead.Signals {
		if s, ok := bundle.(model.ContactSignals); ok {
			return s, true
		}
	}
	return model.ContactSignals{}, false
}

func websiteSignals(lead model.EnrichedLead) (model.WebsiteSignals, bool) {
	for _, bundle := range lead.Signals {
		if s, ok := bundle.(model.WebsiteSignals); ok {
			return s, true
		}
	}
	return model.WebsiteSignals{}, false
}

func socialSignals(lead model.EnrichedLead) (model.SocialSignals, bool) {
	for _, bundle := range lead.Signals {
		if s, ok := bundle.(model.SocialSignals); ok {
			return s, true
		}
	}
	return model.SocialSignals{}, false
}

func professionalSignals(lead model.EnrichedLead) (model.ProfessionalSignals, bool) {
	for _, bundle := range lead.Signals {
		if s, ok := bundle.(model.ProfessionalSignals); ok {
			return s, true
		}
	}
	return model.ProfessionalSignals{}, false
}

func propertySignals(lead model.EnrichedLead) (model.PropertySignals, bool) {
	for _, bundle := range lead.Signals {
		if s, ok := bundle.(model.PropertySignals); ok {
			return s, true
		}
	}
	return model.PropertySignals{}, false
}
