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

package openid4vp

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nuts-foundation/siop-openid4vp/oauth"
)

// AuthorizationRequest holds the raw parameters of an authorization request,
// taken from the query of the authorization URL and/or the claims of the request object.
type AuthorizationRequest map[string]interface{}

// requestFromQuery converts query parameters into an AuthorizationRequest. Only the first value of each parameter is used.
func requestFromQuery(query url.Values) AuthorizationRequest {
	result := make(AuthorizationRequest, len(query))
	for key, values := range query {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}

// getString returns the parameter as string. Parameters that are present but not a string are an error.
func (r AuthorizationRequest) getString(key string) (string, error) {
	value, ok := r[key]
	if !ok || value == nil {
		return "", nil
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return str, nil
}

// getJSON returns the parameter as JSON document. Query parameters carry documents as JSON encoded string,
// request object claims carry them as JSON objects. Returns nil if the parameter is absent.
func (r AuthorizationRequest) getJSON(key string) ([]byte, error) {
	value, ok := r[key]
	if !ok || value == nil {
		return nil, nil
	}
	if str, isString := value.(string); isString {
		if str == "" {
			return nil, nil
		}
		return []byte(str), nil
	}
	return json.Marshal(value)
}

// merge returns a new request with the parameters of other added. Parameters of other take precedence.
// If both specify a client_id, they must be equal.
func (r AuthorizationRequest) merge(other AuthorizationRequest) (AuthorizationRequest, error) {
	outerClientID, _ := r[oauth.ClientIDParam].(string)
	innerClientID, _ := other[oauth.ClientIDParam].(string)
	if outerClientID != "" && innerClientID != "" && outerClientID != innerClientID {
		return nil, ValidationError{
			Kind:  ErrInvalidRequestObject,
			Field: oauth.ClientIDParam,
			Cause: fmt.Errorf("client_id of request object (%s) does not match client_id of request (%s)", innerClientID, outerClientID),
		}
	}
	result := make(AuthorizationRequest, len(r)+len(other))
	for key, value := range r {
		result[key] = value
	}
	for key, value := range other {
		result[key] = value
	}
	return result, nil
}

// ResponseMode determines how the authorization response is delivered:
// DirectPost, DirectPostJWT, Query, Fragment or NoResponseMode.
type ResponseMode interface {
	// Name returns the response_mode parameter value.
	Name() string
	// URI returns the URI the response is delivered to, or nil for NoResponseMode.
	URI() *url.URL
}

// DirectPost makes the wallet POST the response as form to the response_uri.
type DirectPost struct {
	ResponseURI *url.URL
}

// DirectPostJWT makes the wallet POST the response as JWT in the response form field to the response_uri.
type DirectPostJWT struct {
	ResponseURI *url.URL
}

// Query makes the wallet redirect the user agent to the redirect_uri with the response in the query.
type Query struct {
	RedirectURI *url.URL
}

// Fragment makes the wallet redirect the user agent to the redirect_uri with the response in the fragment.
type Fragment struct {
	RedirectURI *url.URL
}

// NoResponseMode is response_mode=none: the verifier doesn't expect a response.
type NoResponseMode struct{}

func (DirectPost) Name() string       { return oauth.DirectPostResponseMode }
func (m DirectPost) URI() *url.URL    { return m.ResponseURI }
func (DirectPostJWT) Name() string    { return oauth.DirectPostJWTResponseMode }
func (m DirectPostJWT) URI() *url.URL { return m.ResponseURI }
func (Query) Name() string            { return oauth.QueryResponseMode }
func (m Query) URI() *url.URL         { return m.RedirectURI }
func (Fragment) Name() string         { return oauth.FragmentResponseMode }
func (m Fragment) URI() *url.URL      { return m.RedirectURI }
func (NoResponseMode) Name() string   { return noneResponseMode }
func (NoResponseMode) URI() *url.URL  { return nil }

const noneResponseMode = "none"

// RequestParameters holds the parameters common to all validated requests.
type RequestParameters struct {
	// ClientMetadataSource is nil when the request has no client metadata.
	ClientMetadataSource ClientMetadataSource
	ClientIDScheme       string
	ClientID             string
	Nonce                string
	Scope                string
	ResponseMode         ResponseMode
	State                string
}

// Parameters returns the common parameters of the request.
func (p RequestParameters) Parameters() RequestParameters {
	return p
}

// ValidatedRequest is a syntactically valid authorization request: IDTokenRequest, VPTokenRequest or IDAndVPTokenRequest.
type ValidatedRequest interface {
	Parameters() RequestParameters
	validatedRequest()
}

// IDTokenRequest is a SIOPv2 request for an ID token (response_type=id_token).
type IDTokenRequest struct {
	RequestParameters
	IDTokenType string
}

// VPTokenRequest is an OpenID4VP request for a VP token (response_type=vp_token).
type VPTokenRequest struct {
	RequestParameters
	PresentationDefinitionSource PresentationDefinitionSource
}

// IDAndVPTokenRequest is a combined request for an ID token and a VP token (response_type=vp_token id_token).
type IDAndVPTokenRequest struct {
	RequestParameters
	IDTokenType                  string
	PresentationDefinitionSource PresentationDefinitionSource
}

func (IDTokenRequest) validatedRequest()      {}
func (VPTokenRequest) validatedRequest()      {}
func (IDAndVPTokenRequest) validatedRequest() {}
