package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// PropertyLookupAdapter queries a property listing search endpoint for the
// lead's address and extracts time-on-market and price-reduction indicators.
type PropertyLookupAdapter struct {
	lookupURL string
}

// NewPropertyLookupAdapter creates a PropertyLookupAdapter. lookupURL is a
// printf template receiving the escaped address.
func NewPropertyLookupAdapter(lookupURL string) *PropertyLookupAdapter {
	return &PropertyLookupAdapter{lookupURL: lookupURL}
}

func (a *PropertyLookupAdapter) Name() string { return "property_lookup" }

func (a *PropertyLookupAdapter) AppliesTo(lead model.RawLead) bool {
	return strings.TrimSpace(lead.Address) != ""
}

// listingResponse mirrors the listing search endpoint's JSON. priceHistory
// is ordered newest first.
type listingResponse struct {
	Results []struct {
		DaysOnMarket int `json:"daysOnMarket"`
		PriceHistory []struct {
			Price float64 `json:"price"`
		} `json:"priceHistory"`
	} `json:"results"`
}

func (a *PropertyLookupAdapter) Enrich(ctx context.Context, lead model.RawLead, client *fetch.Client) model.SignalBundle {
	address := strings.TrimSpace(lead.Address)
	if !usableAddress(address) {
		return failure(a.Name(), model.ErrMalformedLead, fmt.Sprintf("unusable address %q", address))
	}

	lookupURL := fmt.Sprintf(a.lookupURL, url.QueryEscape(address))

	body, ferr := client.Get(ctx, lookupURL, fetch.TargetKey(lookupURL))
	if ferr != nil {
		return fetchFailure(a.Name(), ferr)
	}

	var resp listingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return failure(a.Name(), model.ErrInternal, "parse listing response: "+err.Error())
	}
	if len(resp.Results) == 0 {
		return model.PropertySignals{}
	}

	// The first result is the best address match.
	best := resp.Results[0]

	signals := model.PropertySignals{}
	if best.DaysOnMarket > 0 {
		dom := best.DaysOnMarket
		signals.DaysOnMarket = &dom
	}
	if len(best.PriceHistory) > 1 {
		latest := best.PriceHistory[0].Price
		previous := best.PriceHistory[1].Price
		reduced := latest > 0 && previous > 0 && latest < previous
		signals.PriceReduced = &reduced
		if reduced {
			amount := previous - latest
			signals.ReductionAmount = &amount
		}
	}

	return signals
}

// usableAddress requires at least a street number and a street name; an
// address a listing search cannot resolve fails only this adapter.
func usableAddress(address string) bool {
	if len(address) < 5 {
		return false
	}
	var hasDigit, hasLetter bool
	for _, r := range address {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasDigit && hasLetter
}
