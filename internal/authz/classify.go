package authz

import (
	"net/url"
	"strings"
)

// Classifier answers whether a request path is a static web asset. Asset
// paths bypass every identity and group check.
type Classifier struct {
	extensions map[string]struct{}
}

// NewClassifier builds a Classifier from an extension allow-list. Entries
// are matched case-insensitively against the path's final dot-extension.
func NewClassifier(extensions []string) *Classifier {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		cleaned := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if cleaned != "" {
			allowed[cleaned] = struct{}{}
		}
	}
	return &Classifier{extensions: allowed}
}

// IsWebAsset reports whether the path names a static asset. The query string
// and fragment are ignored; a path without a dot is never an asset.
func (c *Classifier) IsWebAsset(path string) bool {
	if c == nil || path == "" {
		return false
	}
	clean := path
	if idx := strings.IndexByte(clean, '?'); idx >= 0 {
		clean = clean[:idx]
	}
	if idx := strings.IndexByte(clean, '#'); idx >= 0 {
		clean = clean[:idx]
	}
	dot := strings.LastIndexByte(clean, '.')
	if dot < 0 {
		return false
	}
	ext := strings.ToLower(clean[dot+1:])
	_, ok := c.extensions[ext]
	return ok
}

// ParseFullURL splits a request URL into scheme, host, and path. Input
// starting with http:// or https:// is parsed as an absolute URL; anything
// else is treated as a bare path with no tenant context.
func ParseFullURL(raw string) (scheme, host, path string) {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", "", raw
		}
		return parsed.Scheme, parsed.Host, parsed.Path
	}
	return "", "", raw
}
