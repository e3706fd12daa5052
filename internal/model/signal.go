package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// SignalKind identifies the variant of a SignalBundle.
type SignalKind string

const (
	SignalContact      SignalKind = "contact"
	SignalWebsite      SignalKind = "website"
	SignalSocial       SignalKind = "social"
	SignalProfessional SignalKind = "professional"
	SignalProperty     SignalKind = "property"
	SignalFailure      SignalKind = "failure"
)

// SignalBundle is the typed result of one enrichment adapter for one lead.
// The variant set is closed: adapters produce exactly one of the types below.
type SignalBundle interface {
	Kind() SignalKind
}

// ContactSignals holds phone numbers and emails extracted from a lead's own
// fields. Phones are normalized to their digits-only form and deduplicated.
type ContactSignals struct {
	Phones []string `json:"phones"`
	Emails []string `json:"emails"`
}

func (ContactSignals) Kind() SignalKind { return SignalContact }

// WebsiteSignals holds keyword matches found on the lead's website.
// KeywordHitCount counts distinct matched keywords, not occurrences.
type WebsiteSignals struct {
	MatchedKeywords []string `json:"matched_keywords"`
	KeywordHitCount int      `json:"keyword_hit_count"`
}

func (WebsiteSignals) Kind() SignalKind { return SignalWebsite }

// SocialSignals holds indicators scraped from the lead's social profile.
type SocialSignals struct {
	IsBusinessAccount  bool     `json:"is_business_account"`
	MatchedBioKeywords []string `json:"matched_bio_keywords"`
}

func (SocialSignals) Kind() SignalKind { return SignalSocial }

// ProfessionalSignals holds indicators from professional profile search.
type ProfessionalSignals struct {
	HasRealEstateExperience bool   `json:"has_real_estate_experience"`
	LinkedInURL             string `json:"linkedin_url,omitempty"`
}

func (ProfessionalSignals) Kind() SignalKind { return SignalProfessional }

// PropertySignals holds listing indicators from a property lookup. Nil fields
// mean the source did not report that value.
type PropertySignals struct {
	DaysOnMarket    *int     `json:"days_on_market,omitempty"`
	PriceReduced    *bool    `json:"price_reduced,omitempty"`
	ReductionAmount *float64 `json:"reduction_amount,omitempty"`
}

func (PropertySignals) Kind() SignalKind { return SignalProperty }

// ErrorKind classifies why an adapter failed for a lead.
type ErrorKind string

const (
	ErrTimeout          ErrorKind = "timeout"
	ErrConnectionFailed ErrorKind = "connection_failed"
	ErrHTTPStatus       ErrorKind = "http_status"
	ErrBlocked          ErrorKind = "blocked"
	ErrMalformedLead    ErrorKind = "malformed_lead"
	ErrCancelled        ErrorKind = "cancelled"
	ErrInternal         ErrorKind = "internal"
)

// AdapterFailure records that an adapter could not produce signals. Failures
// are kept in the signals map so enrichment gaps stay auditable; they are
// scored as neutral.
type AdapterFailure struct {
	AdapterName string    `json:"adapter_name"`
	Reason      ErrorKind `json:"reason"`
	Detail      string    `json:"detail,omitempty"`
}

func (AdapterFailure) Kind() SignalKind { return SignalFailure }

// SignalMap is the signals collection of an EnrichedLead. Its JSON form wraps
// each bundle in an envelope carrying the variant kind, so archived leads
// unmarshal back into the same concrete types they were saved with.
type SignalMap map[string]SignalBundle

type signalEnvelope struct {
	Kind SignalKind      `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (m SignalMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]signalEnvelope, len(m))
	for name, bundle := range m {
		data, err := json.Marshal(bundle)
		if err != nil {
			return nil, eris.Wrapf(err, "model: marshal signal %s", name)
		}
		out[name] = signalEnvelope{Kind: bundle.Kind(), Data: data}
	}
	return json.Marshal(out)
}

func (m *SignalMap) UnmarshalJSON(b []byte) error {
	var raw map[string]signalEnvelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal signals")
	}
	out := make(SignalMap, len(raw))
	for name, env := range raw {
		bundle, err := decodeSignal(env)
		if err != nil {
			return eris.Wrapf(err, "model: unmarshal signal %s", name)
		}
		out[name] = bundle
	}
	*m = out
	return nil
}

// decodeSignal dispatches an envelope onto the closed variant set.
func decodeSignal(env signalEnvelope) (SignalBundle, error) {
	switch env.Kind {
	case SignalContact:
		var s ContactSignals
		err := json.Unmarshal(env.Data, &s)
		return s, err
	case SignalWebsite:
		var s WebsiteSignals
		err := json.Unmarshal(env.Data, &s)
		return s, err
	case SignalSocial:
		var s SocialSignals
		err := json.Unmarshal(env.Data, &s)
		return s, err
	case SignalProfessional:
		var s ProfessionalSignals
		err := json.Unmarshal(env.Data, &s)
		return s, err
	case SignalProperty:
		var s PropertySignals
		err := json.Unmarshal(env.Data, &s)
		return s, err
	case SignalFailure:
		var s AdapterFailure
		err := json.Unmarshal(env.Data, &s)
		return s, err
	default:
		return nil, eris.Errorf("unknown signal kind %q", env.Kind)
	}
}
