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

package core

import (
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// maxLoggedBodyLength limits how much of an unexpected response body ends up in the logs.
const maxLoggedBodyLength = 100

// HttpError describes an error returned when invoking a remote server.
type HttpError struct {
	error
	StatusCode   int
	ResponseBody []byte
}

// Unwrap returns the underlying error.
func (e HttpError) Unwrap() error {
	return e.error
}

// HTTPRequestDoer defines the Do method of the http.Client interface.
// All outbound calls (fetching request objects, metadata, presentation definitions and posting responses) go through it,
// so callers can impose timeouts, TLS settings and caching at a single point.
type HTTPRequestDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPRequestDoerFunc adapts a function to the HTTPRequestDoer interface.
type HTTPRequestDoerFunc func(req *http.Request) (*http.Response, error)

// Do calls the wrapped function.
func (fn HTTPRequestDoerFunc) Do(req *http.Request) (*http.Response, error) {
	return fn(req)
}

// TestResponseSuccess checks whether the returned HTTP status code is in the 2xx range.
// Verifiers may answer a direct_post with 200, 201 or 204.
func TestResponseSuccess(response *http.Response, log *logrus.Entry) error {
	if IsSuccess(response.StatusCode) {
		return nil
	}
	responseData, _ := io.ReadAll(response.Body)
	if log != nil {
		responseBodyString := string(responseData)
		if len(responseBodyString) > maxLoggedBodyLength {
			responseBodyString = responseBodyString[:maxLoggedBodyLength] + "...(clipped)"
		}
		entry := log
		if response.Request != nil && response.Request.URL != nil {
			entry = entry.WithField(LogFieldURL, response.Request.URL.String())
		}
		entry.Infof("Unexpected HTTP response (status=%d, len=%d): %s", response.StatusCode, len(responseData), responseBodyString)
	}
	return HttpError{
		error:        fmt.Errorf("server returned HTTP %d (expected: 2xx)", response.StatusCode),
		StatusCode:   response.StatusCode,
		ResponseBody: responseData,
	}
}

// IsSuccess returns true if the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
