package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Default keyword lists. Tuned per deployment; overridable via config file or
// a standalone keywords YAML (see LoadKeywordFile).

var defaultFinancialStressKeywords = []string{
	"need cash", "quick sale", "cash flow", "struggling",
	"financial difficulty", "bankruptcy", "foreclosure",
	"divorce", "relocating", "moving", "downsizing",
	"retirement", "health issues", "urgent", "asap",
	"immediate", "distressed", "motivated seller",
	"must sell", "below market", "owner financing",
}

var defaultPropertyKeywords = []string{
	"landlord", "rental property", "investment property",
	"property owner", "fixer upper", "renovation",
	"handyman", "contractor", "flipping", "portfolio",
	"multiple units", "apartment building", "real estate",
	"property management", "rehab", "wholesale", "investor",
}

var defaultBuyerIntentKeywords = []string{
	"cash buyer", "we buy houses", "sell your house",
	"cash for homes", "buy houses fast", "close fast",
	"any condition", "no fees", "fair cash offer",
}

var defaultWebsiteKeywords = []string{
	"sell your house", "we buy houses", "cash for homes",
	"property investment", "real estate services",
	"home buying", "property management", "construction",
	"renovation", "flipping", "wholesale", "investor",
}

var defaultProfessionalKeywords = []string{
	"real estate", "realtor", "broker", "property manager",
	"investor", "developer", "landlord", "flipper",
	"wholesaler", "construction", "realty", "acquisitions",
}

var defaultHighValueCategories = []string{
	"construction", "contractor", "handyman", "property management",
	"real estate", "landlord", "rental", "property services",
	"home improvement", "renovation",
}

var defaultMediumValueCategories = []string{
	"entrepreneur", "small business", "business owner",
	"consulting", "business service", "plumbing", "electrical",
	"hvac", "roofing", "landscaping", "home services",
}

var defaultLifestyleCategories = []string{
	"life coach", "personal development", "digital creator",
	"influencer", "blogger", "content creator", "coach",
}

var defaultDisposableDomains = []string{
	"10minutemail.com", "tempmail.org", "guerrillamail.com",
	"mailinator.com", "throwaway.email",
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

var defaultBlockSignatures = []string{
	"checking your browser",
	"cf-browser-verification",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"just a moment",
	"attention required",
	"captcha",
	"recaptcha",
	"hcaptcha",
}

// LoadKeywordFile reads a standalone keywords YAML and overlays any non-empty
// lists onto cfg. Lists absent from the file keep their configured values.
func LoadKeywordFile(path string, cfg *KeywordConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "config: read keyword file %s", path)
	}

	var overlay KeywordConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return eris.Wrapf(err, "config: parse keyword file %s", path)
	}

	if len(overlay.FinancialStress) > 0 {
		cfg.FinancialStress = overlay.FinancialStress
	}
	if len(overlay.PropertyOwnership) > 0 {
		cfg.PropertyOwnership = overlay.PropertyOwnership
	}
	if len(overlay.BuyerIntent) > 0 {
		cfg.BuyerIntent = overlay.BuyerIntent
	}
	if len(overlay.Website) > 0 {
		cfg.Website = overlay.Website
	}
	if len(overlay.Professional) > 0 {
		cfg.Professional = overlay.Professional
	}
	if len(overlay.HighValueCats) > 0 {
		cfg.HighValueCats = overlay.HighValueCats
	}
	if len(overlay.MediumValueCats) > 0 {
		cfg.MediumValueCats = overlay.MediumValueCats
	}
	if len(overlay.LifestyleCats) > 0 {
		cfg.LifestyleCats = overlay.LifestyleCats
	}
	if len(overlay.DisposableDomains) > 0 {
		cfg.DisposableDomains = overlay.DisposableDomains
	}

	return nil
}
