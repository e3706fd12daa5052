package model

import "sort"

// RawLead is one input record as read from a lead file. Missing fields are
// empty strings, never errors. A RawLead is immutable once read; cleaning
// produces a new value.
type RawLead struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Category string `json:"category"`
	Website  string `json:"website"`
	Address  string `json:"address"`
	Location string `json:"location"`

	// Extra holds columns from the input file that have no dedicated field.
	Extra map[string]string `json:"extra,omitempty"`
}

// EnrichedLead is a RawLead plus the signal bundles collected for it. Every
// adapter that was scheduled for the lead has exactly one entry in Signals,
// keyed by adapter name, failures included.
type EnrichedLead struct {
	RawLead
	Signals SignalMap `json:"signals"`
	IsUSA   bool      `json:"is_usa"`
}

// Failures returns the adapter names that recorded an AdapterFailure, in
// sorted order for deterministic output.
func (l EnrichedLead) Failures() []AdapterFailure {
	var out []AdapterFailure
	for _, name := range sortedKeys(l.Signals) {
		if f, ok := l.Signals[name].(AdapterFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

// ScoredLead is the final per-lead output: the enriched lead and its score.
// Created once per input row and never mutated after scoring.
type ScoredLead struct {
	EnrichedLead
	Result ScoreResult `json:"result"`
}

func sortedKeys(m map[string]SignalBundle) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
