// Package enrich defines the enrichment adapters and the orchestrator that
// fans them out per lead. Adapters fail independently: a failure becomes an
// AdapterFailure entry in the lead's signal map, never an aborted pipeline.
package enrich

import (
	"context"
	"strings"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// Adapter is one pluggable enrichment source. Implementations read only the
// given lead and fetch client, write nothing shared, and never let a failure
// escape Enrich; unexpected conditions are converted to AdapterFailure.
type Adapter interface {
	Name() string
	AppliesTo(lead model.RawLead) bool
	Enrich(ctx context.Context, lead model.RawLead, client *fetch.Client) model.SignalBundle
}

// failure builds an AdapterFailure bundle.
func failure(name string, reason model.ErrorKind, detail string) model.AdapterFailure {
	return model.AdapterFailure{AdapterName: name, Reason: reason, Detail: detail}
}

// fetchFailure converts a typed fetch error into an AdapterFailure.
func fetchFailure(name string, ferr *fetch.Error) model.AdapterFailure {
	return failure(name, ferr.ErrorKind(), ferr.Error())
}

// matchKeywords returns the distinct keywords appearing in text, in keyword
// list order. Matching is case-insensitive substring matching.
func matchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
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
