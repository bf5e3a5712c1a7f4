package shop

import (
	"net"
	"net/url"
	"path"
	"shoptogether/pkg/serrors"
	"strings"
)

// NormalizeImageURL returns the canonical form of a product image URL. Empty
// stays empty, root-relative paths ("/img/apple.png") are kept as paths and
// absolute URLs must use http or https.
//
//   - scheme and host are lower-cased
//   - default ports (http:80, https:443) are dropped
//   - the path is cleaned and loses its trailing slash
//   - the fragment is removed
func NormalizeImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid image URL")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	switch {
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/"):
	case (u.Scheme == "http" || u.Scheme == "https") && u.Host != "":
	default:
		return "", serrors.With(serrors.ErrBadRequest, "image URL must be an http(s) URL or an absolute path")
	}

	if u.Path != "" {
		u.Path = path.Clean(u.Path)
	}

	host := strings.ToLower(u.Host)
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			host = h
		}
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}
