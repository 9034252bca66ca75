package delivery

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrNoPublicBaseURL is returned when a local media path must be rewritten
// but no public base URL is configured.
var ErrNoPublicBaseURL = errors.New("public base url is not configured")

// IsAbsoluteURL reports whether locator is an absolute http(s) URL.
func IsAbsoluteURL(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LocalPathRewriter turns filesystem-style media paths into absolute URLs
// served from the application's public asset directory.
type LocalPathRewriter struct {
	baseURL   string
	assetPath string
}

// NewLocalPathRewriter creates a rewriter rooted at baseURL/assetPath.
func NewLocalPathRewriter(baseURL, assetPath string) LocalPathRewriter {
	return LocalPathRewriter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		assetPath: strings.Trim(strings.ReplaceAll(assetPath, `\`, "/"), "/"),
	}
}

// Resolve returns locator unchanged when it is already absolute, otherwise
// the rewritten URL. Backslash and slash separators are equivalent.
// Protocol-relative locators get https. A query string is kept as is.
func (r LocalPathRewriter) Resolve(locator string) (string, error) {
	if IsAbsoluteURL(locator) {
		return locator, nil
	}
	if strings.HasPrefix(locator, "//") && IsAbsoluteURL("https:"+locator) {
		return "https:" + locator, nil
	}
	if r.baseURL == "" {
		return "", ErrNoPublicBaseURL
	}

	p, _, _ := strings.Cut(strings.TrimSpace(locator), "#")
	p, query, hasQuery := strings.Cut(p, "?")
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "", errors.New("empty media path")
	}

	if r.assetPath != "" && p != r.assetPath && !strings.HasPrefix(p, r.assetPath+"/") {
		p = r.assetPath + "/" + p
	}

	joined, err := url.JoinPath(r.baseURL, strings.Split(p, "/")...)
	if err != nil {
		return "", err
	}
	if hasQuery && query != "" {
		joined += "?" + query
	}
	return joined, nil
}
