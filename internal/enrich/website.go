package enrich

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// WebsiteAdapter fetches a lead's website and matches its visible text
// against the configured website keyword list.
type WebsiteAdapter struct {
	keywords []string
}

// NewWebsiteAdapter creates a WebsiteAdapter with the given keyword list.
func NewWebsiteAdapter(keywords []string) *WebsiteAdapter {
	return &WebsiteAdapter{keywords: keywords}
}

func (a *WebsiteAdapter) Name() string { return "website" }

func (a *WebsiteAdapter) AppliesTo(lead model.RawLead) bool {
	return strings.TrimSpace(lead.Website) != ""
}

func (a *WebsiteAdapter) Enrich(ctx context.Context, lead model.RawLead, client *fetch.Client) model.SignalBundle {
	body, ferr := client.Get(ctx, lead.Website, fetch.TargetKey(lead.Website))
	if ferr != nil {
		return fetchFailure(a.Name(), ferr)
	}

	text, err := visibleText(body)
	if err != nil {
		return failure(a.Name(), model.ErrInternal, "parse html: "+err.Error())
	}

	matched := matchKeywords(text, a.keywords)
	return model.WebsiteSignals{
		MatchedKeywords: matched,
		KeywordHitCount: len(matched),
	}
}

// visibleText extracts the text content of an HTML document, with script and
// style elements removed.
func visibleText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}
