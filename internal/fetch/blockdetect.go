package fetch

import (
	"net/http"
	"strings"
)

// DetectBlock checks a response for signs of anti-bot protection. Signature
// matching is case-insensitive substring matching against the body; the
// Cloudflare header checks only apply on 403/503 responses.
func DetectBlock(statusCode int, header http.Header, body []byte, signatures []string) bool {
	if statusCode == 403 || statusCode == 503 {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" {
			return true
		}
		if strings.EqualFold(header.Get("server"), "cloudflare") {
			return true
		}
	}

	if len(signatures) == 0 || len(body) == 0 {
		return false
	}

	// Challenge pages are small; a long document mentioning "captcha" in
	// prose is not a block.
	if len(body) > 8192 {
		return false
	}

	lower := strings.ToLower(string(body))
	for _, sig := range signatures {
		if sig == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(sig)) {
			return true
		}
	}

	return false
}
