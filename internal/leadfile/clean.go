package leadfile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leadscout/internal/model"
)

var titleCaser = cases.Title(language.English)

// Clean normalizes leads and drops unusable rows. A lead needs at least a
// username or a name; duplicates are removed by username, first occurrence
// wins. Input order is otherwise preserved.
func Clean(leads []model.RawLead) []model.RawLead {
	seen := make(map[string]bool, len(leads))
	out := make([]model.RawLead, 0, len(leads))

	for _, lead := range leads {
		lead.Username = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(lead.Username, "@")))
		lead.Name = cleanName(lead.Name)
		lead.Bio = strings.TrimSpace(lead.Bio)
		lead.Category = strings.TrimSpace(lead.Category)
		lead.Website = normalizeWebsite(lead.Website)
		lead.Address = strings.TrimSpace(lead.Address)
		lead.Location = strings.TrimSpace(lead.Location)

		if lead.Username == "" && lead.Name == "" {
			continue
		}
		if lead.Username != "" {
			if seen[lead.Username] {
				continue
			}
			seen[lead.Username] = true
		}
		out = append(out, lead)
	}
	return out
}

func cleanName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Exported names are often all-caps or all-lower; title-case those and
	// leave mixed-case names alone.
	if name == strings.ToUpper(name) || name == strings.ToLower(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

// normalizeWebsite gives bare domains an https scheme and drops values that
// cannot be fetched.
func normalizeWebsite(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return site
	}
	if strings.ContainsAny(site, " \t") || !strings.Contains(site, ".") {
		return ""
	}
	return "https://" + site
}
