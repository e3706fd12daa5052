package score

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// rule is one scoring rule. eval reports the points awarded, a human-readable
// reason, and whether the rule applied at all.
type rule struct {
	id   string
	eval func(lead model.EnrichedLead) (points int, reason string, ok bool)
}

// rules returns the rule list in evaluation order. The order is fixed so that
// Reasons and AppliedRuleIDs are reproducible across runs.
func (e *Engine) rules() []rule {
	return []rule{
		{id: "contact_phone", eval: e.contactPhone},
		{id: "contact_email", eval: e.contactEmail},
		{id: "bio_financial_stress", eval: e.bioFinancialStress},
		{id: "bio_property", eval: e.bioProperty},
		{id: "bio_buyer_intent", eval: e.bioBuyerIntent},
		{id: "category_value", eval: e.categoryValue},
		{id: "website_keywords", eval: e.websiteKeywords},
		{id: "social_bio_keywords", eval: e.socialBioKeywords},
		{id: "social_business", eval: e.socialBusiness},
		{id: "professional_experience", eval: e.professionalExperience},
		{id: "property_days_on_market", eval: e.propertyDaysOnMarket},
		{id: "property_price_reduction", eval: e.propertyPriceReduction},
	}
}

func (e *Engine) contactPhone(lead model.EnrichedLead) (int, string, bool) {
	s, ok := contactSignals(lead)
	if !ok || len(s.Phones) == 0 {
		return 0, "", false
	}
	return e.cfg.PhoneWeight, fmt.Sprintf("phone number available (%d found)", len(s.Phones)), true
}

func (e *Engine) contactEmail(lead model.EnrichedLead) (int, string, bool) {
	s, ok := contactSignals(lead)
	if !ok || len(s.Emails) == 0 {
		return 0, "", false
	}
	return e.cfg.EmailWeight, fmt.Sprintf("email address available (%d found)", len(s.Emails)), true
}

func (e *Engine) bioFinancialStress(lead model.EnrichedLead) (int, string, bool) {
	matched := matchKeywords(lead.Bio, e.keywords.FinancialStress)
	if len(matched) == 0 {
		return 0, "", false
	}
	points := capped(len(matched), e.cfg.StressPerKeyword, e.cfg.StressCap)
	return points, "bio mentions financial stress: " + joinKeywords(matched), true
}

func (e *Engine) bioProperty(lead model.EnrichedLead) (int, string, bool) {
	matched := matchKeywords(lead.Bio, e.keywords.PropertyOwnership)
	if len(matched) == 0 {
		return 0, "", false
	}
	points := capped(len(matched), e.cfg.PropertyPerKeyword, e.cfg.PropertyCap)
	return points, "bio mentions property ownership: " + joinKeywords(matched), true
}

func (e *Engine) bioBuyerIntent(lead model.EnrichedLead) (int, string, bool) {
	matched := matchKeywords(lead.Bio, e.keywords.BuyerIntent)
	if len(matched) == 0 {
		return 0, "", false
	}
	points := capped(len(matched), e.cfg.IntentPerKeyword, e.cfg.IntentCap)
	return points, "bio signals buyer intent: " + joinKeywords(matched), true
}

// categoryValue awards the first tier the category matches, checked from
// highest value down.
func (e *Engine) categoryValue(lead model.EnrichedLead) (int, string, bool) {
	category := strings.TrimSpace(lead.Category)
	if category == "" {
		return 0, "", false
	}
	if m := matchKeywords(category, e.keywords.HighValueCats); len(m) > 0 {
		return e.cfg.HighValueCategory, "high-value business category: " + category, true
	}
	if m := matchKeywords(category, e.keywords.MediumValueCats); len(m) > 0 {
		return e.cfg.MediumValueCategory, "medium-value business category: " + category, true
	}
	if m := matchKeywords(category, e.keywords.LifestyleCats); len(m) > 0 {
		return e.cfg.LifestyleCategory, "lifestyle category: " + category, true
	}
	return 0, "", false
}

func (e *Engine) websiteKeywords(lead model.EnrichedLead) (int, string, bool) {
	s, ok := websiteSignals(lead)
	if !ok || s.KeywordHitCount == 0 {
		return 0, "", false
	}
	points := capped(s.KeywordHitCount, e.cfg.WebsitePerKeyword, e.cfg.WebsiteCap)
	return points, "website mentions: " + joinKeywords(s.MatchedKeywords), true
}

func (e *Engine) socialBioKeywords(lead model.EnrichedLead) (int, string, bool) {
	s, ok := socialSignals(lead)
	if !ok || len(s.MatchedBioKeywords) == 0 {
		return 0, "", false
	}
	points := capped(len(s.MatchedBioKeywords), e.cfg.SocialBioPerKeyword, e.cfg.SocialBioCap)
	return points, "social bio mentions: " + joinKeywords(s.MatchedBioKeywords), true
}

func (e *Engine) socialBusiness(lead model.EnrichedLead) (int, string, bool) {
	s, ok := socialSignals(lead)
	if !ok || !s.IsBusinessAccount {
		return 0, "", false
	}
	return e.cfg.BusinessAccount, "business social account", true
}

func (e *Engine) professionalExperience(lead model.EnrichedLead) (int, string, bool) {
	s, ok := professionalSignals(lead)
	if !ok || !s.HasRealEstateExperience {
		return 0, "", false
	}
	return e.cfg.ProExperience, "real estate experience on professional profile", true
}

func (e *Engine) propertyDaysOnMarket(lead model.EnrichedLead) (int, string, bool) {
	s, ok := propertySignals(lead)
	if !ok || s.DaysOnMarket == nil {
		return 0, "", false
	}
	dom := *s.DaysOnMarket
	switch {
	case dom >= e.cfg.LongDOMThreshold:
		return e.cfg.LongDaysOnMarket, fmt.Sprintf("listing on market %d days", dom), true
	case dom >= e.cfg.ModerateDOMThreshold:
		return e.cfg.ModerateDaysOnMarket, fmt.Sprintf("listing on market %d days", dom), true
	default:
		return 0, "", false
	}
}

func (e *Engine) propertyPriceReduction(lead model.EnrichedLead) (int, string, bool) {
	s, ok := propertySignals(lead)
	if !ok || s.PriceReduced == nil || !*s.PriceReduced {
		return 0, "", false
	}
	reason := "listing price reduced"
	if s.ReductionAmount != nil {
		reason = fmt.Sprintf("listing price reduced by $%.0f", *s.ReductionAmount)
	}
	return e.cfg.PriceReduction, reason, true
}
