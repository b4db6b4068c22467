package types

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/goware/urlx"
)

// URL is a url.URL that can be set from a flag or a config file. A missing
// scheme defaults to http, so "localhost:5272/api" is accepted.
type URL url.URL

func (u *URL) Set(raw string) error {
	v, err := urlx.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	v.Path = strings.TrimSuffix(v.Path, "/")
	*u = URL(*v)
	return nil
}

func (u *URL) String() string {
	if u == nil {
		return ""
	}
	return (*url.URL)(u).String()
}

func (u *URL) Type() string {
	return "url"
}

func (u *URL) Value() *url.URL {
	return (*url.URL)(u)
}

// HostPort is a listen address: a hostname or IP address with an optional
// port, or only a port (":9090").
type HostPort struct {
	Host string
	Port int
}

func (h *HostPort) Set(raw string) error {
	host, port, err := net.SplitHostPort(raw)
	addrErr := &net.AddrError{}
	switch {
	case errors.As(err, &addrErr) && addrErr.Err == "missing port in address":
		h.Host = raw
		return nil
	case err != nil:
		return err
	}
	h.Host = host
	h.Port, err = strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q must be a number", port)
	}
	return nil
}

func (h *HostPort) String() string {
	if h.Port == 0 {
		return h.Host
	}
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

func (h *HostPort) Type() string {
	return "hostname"
}
