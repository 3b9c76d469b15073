package common

import (
	"net/url"
	"strings"
)

// BuildSearchURL appends a single query parameter to a search endpoint.
// An unparseable base is returned with the parameter appended verbatim.
func BuildSearchURL(base, param, query string) string {
	parsedURL, err := url.Parse(base)
	if err != nil {
		return base + "?" + param + "=" + url.QueryEscape(query)
	}

	values := parsedURL.Query()
	values.Set(param, query)
	parsedURL.RawQuery = values.Encode()
	return parsedURL.String()
}

// JoinPath joins a base URL and path segments with single slashes
func JoinPath(base string, segments ...string) string {
	result := strings.TrimRight(base, "/")
	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		if segment == "" {
			continue
		}
		result += "/" + segment
	}
	return result
}

// FirstPathSegment returns the first segment of an absolute or root-relative path.
// "/artist/track-name?x=1" yields "artist".
func FirstPathSegment(href string) string {
	if parsedURL, err := url.Parse(href); err == nil {
		href = parsedURL.Path
	}
	href = strings.Trim(href, "/")
	if idx := strings.Index(href, "/"); idx >= 0 {
		return href[:idx]
	}
	return href
}
