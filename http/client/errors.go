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
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the target URL can't be parsed or isn't an absolute HTTP(S) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidURLResponse is returned when the response can't be read.
	ErrInvalidURLResponse = errors.New("invalid URL response")
	// ErrInvalidResponse is returned when a successful response has a body that can't be interpreted.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrUnexpectedEmptyAnswer is returned when a successful response has an empty body, while content was expected.
	ErrUnexpectedEmptyAnswer = errors.New("unexpected empty answer")
	// ErrInvalidStatusCode is returned when the server responds with a non-2xx status code.
	ErrInvalidStatusCode = errors.New("invalid status code")
	// ErrKeyNotPresent is returned by Poster.Check when the expected key is absent from the JSON response.
	ErrKeyNotPresent = errors.New("key not present")
	// ErrNetwork is returned when the request couldn't be sent or no response was received.
	ErrNetwork = errors.New("network error")
)

// PostError describes a failed call to a remote server. Fetching (GET) and posting share this error type.
// Kind is one of the error values above; errors.Is can be used to match both the Kind and the Cause.
type PostError struct {
	Kind       error
	URL        string
	StatusCode int
	Body       []byte
	Key        string
	Cause      error
}

func (e PostError) Error() string {
	var detail string
	switch {
	case errors.Is(e.Kind, ErrInvalidStatusCode):
		detail = fmt.Sprintf(": server returned HTTP %d", e.StatusCode)
	case errors.Is(e.Kind, ErrKeyNotPresent):
		detail = fmt.Sprintf(": %s", e.Key)
	case e.Cause != nil:
		detail = fmt.Sprintf(": %s", e.Cause)
	}
	if e.URL == "" {
		return e.Kind.Error() + detail
	}
	return fmt.Sprintf("%s (url=%s)%s", e.Kind, e.URL, detail)
}

func (e PostError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
