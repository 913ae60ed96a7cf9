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
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/http/log"
)

// Poster sends authorization responses to verifiers.
type Poster struct {
	httpClient core.HTTPRequestDoer
}

// NewPoster creates a Poster using the given HTTP client.
func NewPoster(httpClient core.HTTPRequestDoer) *Poster {
	return &Poster{httpClient: httpClient}
}

// NewFormRequest creates a POST request with the given form as application/x-www-form-urlencoded body.
// It returns a PostError of kind ErrInvalidURL if the target isn't an absolute HTTP(S) URL.
func NewFormRequest(ctx context.Context, target string, form url.Values) (*http.Request, error) {
	targetURL, err := core.ParseHTTPURL(target)
	if err != nil {
		return nil, PostError{Kind: ErrInvalidURL, URL: target, Cause: err}
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, PostError{Kind: ErrInvalidURL, URL: target, Cause: err}
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")
	return request, nil
}

// Post sends the request and returns the body of a 2xx response. It makes a single attempt.
// Non-2xx responses result in a PostError of kind ErrInvalidStatusCode carrying status code and body.
func (p Poster) Post(request *http.Request) ([]byte, error) {
	target := request.URL.String()
	response, err := p.httpClient.Do(request)
	if err != nil {
		log.Logger().WithError(err).WithField(core.LogFieldURL, target).Debug("Unable to post")
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
	return data, nil
}

// Check sends the request and expects a 2xx response with a JSON object containing the given key.
// It returns the value of the key (JSON encoded if it isn't a string) and true.
// A PostError of kind ErrUnexpectedEmptyAnswer, ErrInvalidResponse or ErrKeyNotPresent is returned when the 2xx response doesn't satisfy this.
func (p Poster) Check(key string, request *http.Request) (string, bool, error) {
	data, err := p.Post(request)
	if err != nil {
		return "", false, err
	}
	target := request.URL.String()
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", false, PostError{Kind: ErrUnexpectedEmptyAnswer, URL: target}
	}
	var body map[string]interface{}
	if err = json.Unmarshal(data, &body); err != nil {
		return "", false, PostError{Kind: ErrInvalidResponse, URL: target, Body: data, Cause: err}
	}
	value, ok := body[key]
	if !ok || value == nil {
		return "", false, PostError{Kind: ErrKeyNotPresent, URL: target, Key: key}
	}
	if str, isString := value.(string); isString {
		return str, true, nil
	}
	encoded, _ := json.Marshal(value)
	return string(encoded), true, nil
}
