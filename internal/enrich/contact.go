package enrich

import (
	"context"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// North-American phone patterns: optional country code, separators "-", ".",
// space, or parentheses. Ordered longest-match first.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

var nonDigits = regexp.MustCompile(`\D`)

// ContactAdapter extracts phone numbers and emails from the lead's own bio.
// It performs no network access.
type ContactAdapter struct {
	disposableDomains []string
}

// NewContactAdapter creates a ContactAdapter. Emails on disposable domains
// are dropped.
func NewContactAdapter(disposableDomains []string) *ContactAdapter {
	return &ContactAdapter{disposableDomains: disposableDomains}
}

func (a *ContactAdapter) Name() string { return "contact" }

func (a *ContactAdapter) AppliesTo(lead model.RawLead) bool {
	return strings.TrimSpace(lead.Bio) != ""
}

func (a *ContactAdapter) Enrich(_ context.Context, lead model.RawLead, _ *fetch.Client) model.SignalBundle {
	return model.ContactSignals{
		Phones: ExtractPhones(lead.Bio),
		Emails: a.extractEmails(lead.Bio),
	}
}

// ExtractPhones finds North-American phone numbers in text and returns them
// normalized to digits-only form (leading country code 1 stripped),
// deduplicated, in order of first appearance.
func ExtractPhones(text string) []string {
	seen := make(map[string]bool)
	var phones []string

	for _, pat := range phonePatterns {
		for _, raw := range pat.FindAllString(text, -1) {
			digits := NormalizePhone(raw)
			if digits == "" || seen[digits] {
				continue
			}
			seen[digits] = true
			phones = append(phones, digits)
		}
	}

	return phones
}

// NormalizePhone reduces a matched phone string to its ten-digit form, or ""
// when the match is not a possible US number.
func NormalizePhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}

	num, err := phonenumbers.Parse(digits, "US")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return ""
	}

	return digits
}

func (a *ContactAdapter) extractEmails(text string) []string {
	seen := make(map[string]bool)
	var emails []string

	for _, raw := range emailPattern.FindAllString(text, -1) {
		email := strings.ToLower(raw)
		if seen[email] || a.disposable(email) {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}

	return emails
}

func (a *ContactAdapter) disposable(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, d := range a.disposableDomains {
		if strings.EqualFold(domain, d) {
			return true
		}
	}
	return false
}
