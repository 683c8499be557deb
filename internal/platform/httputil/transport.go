package httputil

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTransportWithMinTLS12 clones http.DefaultTransport and enforces a
// TLS 1.2 floor for all outbound engine requests.
func DefaultTransportWithMinTLS12() *http.Transport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if base.TLSClientConfig == nil {
		base.TLSClientConfig = &tls.Config{}
	}
	base.TLSClientConfig.MinVersion = tls.VersionTLS12
	return base
}

// NewPooledClient builds the shared HTTP client threaded into every engine
// adapter. A single instance is constructed at startup and never mutated.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: DefaultTransportWithMinTLS12(),
	}
}

// CopyWithTimeout returns a shallow copy of base with Timeout overridden,
// so a per-call timeout never mutates the shared client.
func CopyWithTimeout(base *http.Client, timeout time.Duration) *http.Client {
	clone := *base
	clone.Timeout = timeout
	return &clone
}
