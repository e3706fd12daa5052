package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// ProfessionalProfileAdapter searches for a lead's professional profile and
// checks result snippets for real-estate experience indicators.
type ProfessionalProfileAdapter struct {
	searchURL string
	keywords  []string
}

// NewProfessionalProfileAdapter creates a ProfessionalProfileAdapter.
// searchURL is a printf template receiving the escaped search query.
func NewProfessionalProfileAdapter(searchURL string, keywords []string) *ProfessionalProfileAdapter {
	return &ProfessionalProfileAdapter{searchURL: searchURL, keywords: keywords}
}

func (a *ProfessionalProfileAdapter) Name() string { return "professional_profile" }

// AppliesTo requires a first and last name; single tokens produce too many
// false matches to be worth a search.
func (a *ProfessionalProfileAdapter) AppliesTo(lead model.RawLead) bool {
	return len(strings.Fields(lead.Name)) >= 2
}

func (a *ProfessionalProfileAdapter) Enrich(ctx context.Context, lead model.RawLead, client *fetch.Client) model.SignalBundle {
	query := fmt.Sprintf("%q site:linkedin.com/in", strings.TrimSpace(lead.Name))
	searchURL := fmt.Sprintf(a.searchURL, url.QueryEscape(query))

	body, ferr := client.Get(ctx, searchURL, fetch.TargetKey(searchURL))
	if ferr != nil {
		return fetchFailure(a.Name(), ferr)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return failure(a.Name(), model.ErrInternal, "parse search results: "+err.Error())
	}

	matched := matchKeywords(doc.Text(), a.keywords)

	var profileURL string
	doc.Find(`a[href*="linkedin.com/in/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok {
			profileURL = href
			return false
		}
		return true
	})

	return model.ProfessionalSignals{
		HasRealEstateExperience: len(matched) > 0,
		LinkedInURL:             profileURL,
	}
}
