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

// businessMarkers are the embedded-JSON fragments that indicate a business
// profile. Profile pages embed their data as JSON in script tags, so a plain
// substring check is as reliable as parsing the whole blob.
var businessMarkers = []string{
	`"is_business_account":true`,
	`"is_business_account": true`,
	`"is_professional_account":true`,
	`"is_professional_account": true`,
}

// SocialProfileAdapter fetches a lead's social profile page and extracts
// business-account and bio keyword indicators.
type SocialProfileAdapter struct {
	profileURL  string
	bioKeywords []string
}

// NewSocialProfileAdapter creates a SocialProfileAdapter. profileURL is a
// printf template receiving the escaped username.
func NewSocialProfileAdapter(profileURL string, bioKeywords []string) *SocialProfileAdapter {
	return &SocialProfileAdapter{profileURL: profileURL, bioKeywords: bioKeywords}
}

func (a *SocialProfileAdapter) Name() string { return "social_profile" }

func (a *SocialProfileAdapter) AppliesTo(lead model.RawLead) bool {
	return strings.TrimSpace(lead.Username) != ""
}

func (a *SocialProfileAdapter) Enrich(ctx context.Context, lead model.RawLead, client *fetch.Client) model.SignalBundle {
	profileURL := fmt.Sprintf(a.profileURL, url.PathEscape(strings.TrimSpace(lead.Username)))

	body, ferr := client.Get(ctx, profileURL, fetch.TargetKey(profileURL))
	if ferr != nil {
		return fetchFailure(a.Name(), ferr)
	}

	bio, err := profileBio(body)
	if err != nil {
		return failure(a.Name(), model.ErrInternal, "parse profile: "+err.Error())
	}

	return model.SocialSignals{
		IsBusinessAccount:  isBusinessAccount(body),
		MatchedBioKeywords: matchKeywords(bio, a.bioKeywords),
	}
}

func isBusinessAccount(body []byte) bool {
	for _, marker := range businessMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return true
		}
	}
	return false
}

// profileBio pulls the profile description from the page's og:description
// meta tag, falling back to an embedded "biography" JSON field.
func profileBio(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && desc != "" {
		return desc, nil
	}

	const marker = `"biography":"`
	if i := bytes.Index(body, []byte(marker)); i >= 0 {
		rest := body[i+len(marker):]
		if j := bytes.IndexByte(rest, '"'); j >= 0 {
			return string(rest[:j]), nil
		}
	}

	return "", nil
}
