package blogservice

import (
	"net/url"
	"regexp"
	"strings"
)

var scriptTagPattern = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

func sanitizeText(text string) string {
	return strings.TrimSpace(scriptTagPattern.ReplaceAllString(text, ""))
}

// sanitizeImageURL keeps absolute http(s) URLs and drops anything else.
func sanitizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	return u.String()
}

func sanitizePostInput(in PostInput) PostInput {
	in.Name = sanitizeText(in.Name)
	in.Location = sanitizeText(in.Location)
	in.Review = sanitizeText(in.Review)
	in.ImageURL = sanitizeImageURL(in.ImageURL)
	return in
}
