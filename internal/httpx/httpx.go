package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request when the caller does not configure
// one. The upstream API specifies no timeout of its own.
const DefaultTimeout = 10 * time.Second

// New returns an http.Client tuned for calls to external market-data APIs.
// http.DefaultClient has no timeout, so always use this instead.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
