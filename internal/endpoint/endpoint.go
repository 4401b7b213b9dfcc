// Package endpoint rewrites server URLs, e.g. to derive the HTTPS variant of a
// configured Jenkins base URL.
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// ErrMalformedURL indicates a URL could not be decomposed into components.
var ErrMalformedURL = errors.New("malformed URL")

// Recompose returns a copy of raw with its scheme replaced by scheme and its
// port replaced by port. A nil port clears the port component.
// All other components (user info, host name, path, query, fragment) are kept.
func Recompose(raw, scheme string, port *int) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, ErrMalformedURL
	}

	out := *u
	if u.User != nil {
		user := *u.User
		out.User = &user
	}
	out.Scheme = scheme
	out.Host = hostWithPort(u.Hostname(), port)
	return &out, nil
}

// Secure returns the HTTPS variant of raw on the given port.
func Secure(raw string, port *int) (*url.URL, error) {
	return Recompose(raw, "https", port)
}

// hostWithPort joins a host name and an optional port.
// IPv6 literals are bracketed whether or not a port is present.
func hostWithPort(host string, port *int) string {
	if port != nil {
		return net.JoinHostPort(host, strconv.Itoa(*port))
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return "[" + host + "]"
	}
	return host
}
