/*
 * Copyright (C) 2024 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */
package client

import (
	"crypto/tls"
	"errors"
	"net/http"
	"time"
)

// ErrNotHTTPS is returned by StrictHTTPClient when strict mode is enabled and a request is not sent over HTTPS.
var ErrNotHTTPS = errors.New("strictmode is enabled, but request is not over HTTPS")

// Config holds the configuration of the outbound HTTP client.
type Config struct {
	// StrictMode only allows HTTPS requests.
	StrictMode bool
	// Timeout is the timeout of a single request (including reading the response body).
	Timeout time.Duration
	// CacheMaxBytes is the maximum size of cached GET responses. Caching is disabled when 0.
	CacheMaxBytes int
	// TLSConfig is used for outbound TLS connections. If nil, a default config requiring TLS 1.2 is used.
	TLSConfig *tls.Config
}

// New creates a new HTTP client with the given configuration.
// When caching is enabled, GET responses (request objects, metadata and presentation definitions fetched by reference)
// are cached according to their Cache-Control headers.
func New(config Config) *StrictHTTPClient {
	tlsConfig := config.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	var transport http.RoundTripper = http.DefaultTransport
	// Might not be http.Transport in testing
	if httpTransport, ok := transport.(*http.Transport); ok {
		httpTransport = httpTransport.Clone()
		httpTransport.TLSClientConfig = tlsConfig
		transport = httpTransport
	}
	if config.CacheMaxBytes > 0 {
		transport = NewCachingTransport(transport, config.CacheMaxBytes)
	}
	return &StrictHTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		strictMode: config.StrictMode,
	}
}

// StrictHTTPClient is a core.HTTPRequestDoer that refuses non-HTTPS requests in strict mode.
type StrictHTTPClient struct {
	client     *http.Client
	strictMode bool
}

func (s *StrictHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if s.strictMode && req.URL.Scheme != "https" {
		return nil, ErrNotHTTPS
	}
	return s.client.Do(req)
}
