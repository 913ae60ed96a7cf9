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
	"context"
	"io"
	"net/http"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/http/log"
)

// Fetcher retrieves documents passed by reference (request objects, client metadata, presentation definitions).
type Fetcher struct {
	httpClient core.HTTPRequestDoer
}

// NewFetcher creates a Fetcher using the given HTTP client.
func NewFetcher(httpClient core.HTTPRequestDoer) *Fetcher {
	return &Fetcher{httpClient: httpClient}
}

// Fetch GETs the document at the given URL, sending the given Accept header (if not empty), and returns the response body.
// It makes a single attempt. Errors are of type PostError.
func (f Fetcher) Fetch(ctx context.Context, target string, accept string) ([]byte, error) {
	targetURL, err := core.ParseHTTPURL(target)
	if err != nil {
		return nil, PostError{Kind: ErrInvalidURL, URL: target, Cause: err}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL.String(), nil)
	if err != nil {
		return nil, PostError{Kind: ErrInvalidURL, URL: target, Cause: err}
	}
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	response, err := f.httpClient.Do(request)
	if err != nil {
		log.Logger().WithError(err).WithField(core.LogFieldURL, target).Debug("Unable to fetch document")
		return nil, PostError{Kind: ErrNetwork, URL: target, Cause: err}
	}
	defer response.Body.Close()
	if err = core.TestResponseSuccess(response, log.Logger()); err != nil {
		httpErr := err.(core.HttpError)
		return nil, PostError{Kind: ErrInvalidStatusCode, URL: target, StatusCode: httpErr.StatusCode, Body: httpErr.ResponseBody}
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, PostError{Kind: ErrInvalidURLResponse, URL: target, Cause: err}
	}
	if len(data) == 0 {
		return nil, PostError{Kind: ErrUnexpectedEmptyAnswer, URL: target}
	}
	return data, nil
}
