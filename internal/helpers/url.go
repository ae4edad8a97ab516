package helpers

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// PostsEndpoint normalises the configured posts URL. The scheme and host are
// lowercased, default ports and fragments are removed, the path is cleaned and
// the query is forced to carry context=embed. Other query parameters are kept.
// When the scheme is omitted it defaults to http.
func PostsEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	parsed, err := parseURLPreserveHost(raw)
	if err != nil {
		return "", err
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("unsupported scheme " + parsed.Scheme)
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	if h, port, ok := strings.Cut(host, ":"); ok && !strings.Contains(port, ":") {
		if (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
			host = h
		}
	}
	parsed.Host = host

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	cleanPath := path.Clean(parsed.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if cleanPath != "/" && strings.HasSuffix(parsed.Path, "/") {
		cleanPath += "/"
	}
	parsed.Path = cleanPath
	parsed.Fragment = ""

	query := parsed.Query()
	query.Set("context", "embed")
	// Encode sorts by key.
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// parseURLPreserveHost parses raw, handling schemeless URLs.
func parseURLPreserveHost(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" {
		if strings.HasPrefix(raw, "//") {
			return url.Parse("http:" + raw)
		}
		return url.Parse("http://" + raw)
	}
	return parsed, nil
}
