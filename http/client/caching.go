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
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/http/log"
	"github.com/pquerna/cachecontrol"
)

// maxCacheTime is the maximum time responses are cached.
// Even if the server responds with a longer cache time, responses are never cached longer than maxCacheTime.
const maxCacheTime = time.Hour

var _ http.RoundTripper = &CachingRoundTripper{}

// NewCachingTransport creates a CachingRoundTripper wrapping the given transport, caching at most maxBytes of response bodies.
func NewCachingTransport(underlyingTransport http.RoundTripper, maxBytes int) *CachingRoundTripper {
	return &CachingRoundTripper{
		wrappedTransport: underlyingTransport,
		maxBytes:         maxBytes,
		entries:          map[string]*cacheEntry{},
		now:              time.Now,
	}
}

// CachingRoundTripper is a simple HTTP client cache for HTTP responses.
// It only caches successful GET responses that are cacheable according to RFC 7234, and only works on expiration time (no ETags).
// When the cache is full, the entries that expire first are evicted to make room for new entries.
type CachingRoundTripper struct {
	wrappedTransport http.RoundTripper
	maxBytes         int
	mux              sync.Mutex
	entries          map[string]*cacheEntry
	currentSizeBytes int
	now              func() time.Time
}

type cacheEntry struct {
	statusCode     int
	headers        http.Header
	body           []byte
	expirationTime time.Time
}

func (r *CachingRoundTripper) RoundTrip(httpRequest *http.Request) (*http.Response, error) {
	if httpRequest.Method != http.MethodGet {
		return r.wrappedTransport.RoundTrip(httpRequest)
	}
	cacheKey := httpRequest.URL.String()
	if response := r.get(cacheKey, httpRequest); response != nil {
		return response, nil
	}
	httpResponse, err := r.wrappedTransport.RoundTrip(httpRequest)
	if err != nil {
		return nil, err
	}
	if err = r.cacheResponse(cacheKey, httpRequest, httpResponse); err != nil {
		return nil, err
	}
	return httpResponse, nil
}

func (r *CachingRoundTripper) get(cacheKey string, httpRequest *http.Request) *http.Response {
	r.mux.Lock()
	defer r.mux.Unlock()
	entry, ok := r.entries[cacheKey]
	if !ok {
		return nil
	}
	if !entry.expirationTime.After(r.now()) {
		r.remove(cacheKey)
		return nil
	}
	return &http.Response{
		StatusCode:    entry.statusCode,
		Header:        entry.headers.Clone(),
		Body:          io.NopCloser(bytes.NewReader(entry.body)),
		ContentLength: int64(len(entry.body)),
		Request:       httpRequest,
	}
}

// cacheResponse caches the response if it's cacheable. The response body is replaced by an in-memory copy.
func (r *CachingRoundTripper) cacheResponse(cacheKey string, httpRequest *http.Request, httpResponse *http.Response) error {
	if !core.IsSuccess(httpResponse.StatusCode) {
		return nil
	}
	reasons, expirationTime, err := cachecontrol.CachableResponse(httpRequest, httpResponse, cachecontrol.Options{PrivateCache: true})
	if err != nil {
		log.Logger().WithError(err).WithField(core.LogFieldURL, cacheKey).Info("Unable to determine cacheability of response, not caching")
		return nil
	}
	if len(reasons) > 0 || expirationTime.IsZero() {
		log.Logger().WithField(core.LogFieldURL, cacheKey).Debugf("Response is not cacheable: %v", reasons)
		return nil
	}
	if maxExpirationTime := r.now().Add(maxCacheTime); expirationTime.After(maxExpirationTime) {
		expirationTime = maxExpirationTime
	}
	body, err := io.ReadAll(httpResponse.Body)
	_ = httpResponse.Body.Close()
	if err != nil {
		return fmt.Errorf("error while reading response body for caching: %w", err)
	}
	httpResponse.Body = io.NopCloser(bytes.NewReader(body))
	r.insert(cacheKey, &cacheEntry{
		statusCode:     httpResponse.StatusCode,
		headers:        httpResponse.Header.Clone(),
		body:           body,
		expirationTime: expirationTime,
	})
	return nil
}

func (r *CachingRoundTripper) insert(cacheKey string, entry *cacheEntry) {
	// don't cache responses that are larger than the cache
	if len(entry.body) > r.maxBytes {
		return
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.remove(cacheKey)
	for r.currentSizeBytes+len(entry.body) > r.maxBytes {
		r.evict()
	}
	r.entries[cacheKey] = entry
	r.currentSizeBytes += len(entry.body)
}

// evict removes the entry that expires first. Callers must hold the lock.
func (r *CachingRoundTripper) evict() {
	var firstKey string
	var first *cacheEntry
	for key, entry := range r.entries {
		if first == nil || entry.expirationTime.Before(first.expirationTime) {
			firstKey, first = key, entry
		}
	}
	if first != nil {
		r.remove(firstKey)
	}
}

// remove deletes the entry with the given key, if present. Callers must hold the lock.
func (r *CachingRoundTripper) remove(cacheKey string) {
	if entry, ok := r.entries[cacheKey]; ok {
		r.currentSizeBytes -= len(entry.body)
		delete(r.entries, cacheKey)
	}
}
