// Package sanitize masks identities and credentials before they reach logs.
package sanitize

import (
	"net/url"
	"strings"
)

// Email masks the local part of an email address, keeping the first and last
// character. Short local parts collapse to a single asterisk.
func Email(email string) string {
	at := strings.Index(email, "@")
	if email == "" || at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}

// sensitiveQueryParams are masked in sanitized URLs.
var sensitiveQueryParams = []string{
	"code", "state", "token", "access_token", "id_token", "refresh_token",
}

// URL masks userinfo credentials and sensitive query parameters in a URL.
// Unparseable input is replaced entirely.
func URL(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "***")
	}
	if parsed.RawQuery != "" {
		values := parsed.Query()
		for _, param := range sensitiveQueryParams {
			if values.Has(param) {
				values.Set(param, "***")
			}
		}
		parsed.RawQuery = values.Encode()
	}
	return parsed.String()
}

// DSN masks credentials in a database connection string.
func DSN(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "***")
	}
	return parsed.String()
}

// Token truncates a token to its first and last four characters.
func Token(token string) string {
	if token == "" {
		return token
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
