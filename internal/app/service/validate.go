package service

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Column widths of the users and folders tables, counted in characters.
const (
	maxUsernameLen   = 64
	maxEmailLen      = 255
	maxFolderNameLen = 255
)

func validateSignupFields(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return invalidInput("username, email and password are required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return invalidInput("username must be at most %d characters", maxUsernameLen)
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return invalidInput("email must be at most %d characters", maxEmailLen)
	}
	return nil
}

func validateFolderName(name string) error {
	if name == "" {
		return invalidInput("folder name is required")
	}
	if utf8.RuneCountInString(name) > maxFolderNameLen {
		return invalidInput("folder name must be at most %d characters", maxFolderNameLen)
	}
	return nil
}

func validateLinkFields(title, rawURL string) error {
	if title == "" {
		return invalidInput("title is required")
	}
	if rawURL == "" {
		return invalidInput("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalidInput("url must be an absolute http or https URL")
	}
	return nil
}

// normalizeKeywords trims each keyword, drops empties and repeats, and keeps
// first-seen order. It never returns nil.
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
