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
	"net/url"

	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// ResponseData is the payload of an authorization response:
// IDTokenResponseData, VPTokenResponseData, IDAndVPTokenResponseData or NoConsensusResponseData.
type ResponseData interface {
	// Params returns the payload as response parameters.
	Params() url.Values
	// Claims returns the payload as claims of a JWT secured response.
	Claims() map[string]interface{}
}

// IDTokenResponseData carries an ID token.
type IDTokenResponseData struct {
	IDToken string
	State   string
}

// VPTokenResponseData carries a VP token and its presentation submission.
type VPTokenResponseData struct {
	VPToken                string
	PresentationSubmission pe.PresentationSubmission
	State                  string
}

// IDAndVPTokenResponseData carries both an ID token and a VP token.
type IDAndVPTokenResponseData struct {
	IDToken                string
	VPToken                string
	PresentationSubmission pe.PresentationSubmission
	State                  string
}

// NoConsensusResponseData is the error response sent when the holder denied the request.
// Error holds the holder's message; it's sent as error_description with error=access_denied.
type NoConsensusResponseData struct {
	State string
	Error string
}

func (d IDTokenResponseData) Params() url.Values {
	return withState(url.Values{oauth.IDTokenParam: []string{d.IDToken}}, d.State)
}

func (d IDTokenResponseData) Claims() map[string]interface{} {
	return withStateClaim(map[string]interface{}{oauth.IDTokenParam: d.IDToken}, d.State)
}

func (d VPTokenResponseData) Params() url.Values {
	return withState(url.Values{
		oauth.VpTokenParam:                []string{d.VPToken},
		oauth.PresentationSubmissionParam: []string{marshalSubmission(d.PresentationSubmission)},
	}, d.State)
}

func (d VPTokenResponseData) Claims() map[string]interface{} {
	return withStateClaim(map[string]interface{}{
		oauth.VpTokenParam:                d.VPToken,
		oauth.PresentationSubmissionParam: d.PresentationSubmission,
	}, d.State)
}

func (d IDAndVPTokenResponseData) Params() url.Values {
	return withState(url.Values{
		oauth.IDTokenParam:                []string{d.IDToken},
		oauth.VpTokenParam:                []string{d.VPToken},
		oauth.PresentationSubmissionParam: []string{marshalSubmission(d.PresentationSubmission)},
	}, d.State)
}

func (d IDAndVPTokenResponseData) Claims() map[string]interface{} {
	return withStateClaim(map[string]interface{}{
		oauth.IDTokenParam:                d.IDToken,
		oauth.VpTokenParam:                d.VPToken,
		oauth.PresentationSubmissionParam: d.PresentationSubmission,
	}, d.State)
}

func (d NoConsensusResponseData) Params() url.Values {
	params := url.Values{oauth.ErrorParam: []string{string(oauth.AccessDenied)}}
	if d.Error != "" {
		params.Set(oauth.ErrorDescriptionParam, d.Error)
	}
	return withState(params, d.State)
}

func (d NoConsensusResponseData) Claims() map[string]interface{} {
	claims := map[string]interface{}{oauth.ErrorParam: string(oauth.AccessDenied)}
	if d.Error != "" {
		claims[oauth.ErrorDescriptionParam] = d.Error
	}
	return withStateClaim(claims, d.State)
}

func withState(params url.Values, state string) url.Values {
	if state != "" {
		params.Set(oauth.StateParam, state)
	}
	return params
}

func withStateClaim(claims map[string]interface{}, state string) map[string]interface{} {
	if state != "" {
		claims[oauth.StateParam] = state
	}
	return claims
}

func marshalSubmission(submission pe.PresentationSubmission) string {
	// can't fail, the submission only contains strings
	data, _ := json.Marshal(submission)
	return string(data)
}

// AuthorizationResponse is a response ready to be dispatched to the verifier:
// DirectPostResponse, DirectPostJWTResponse, QueryResponse or FragmentResponse.
type AuthorizationResponse interface {
	// ResponseMode returns the response_mode the response is delivered with.
	ResponseMode() string
	// Payload returns the response data.
	Payload() ResponseData
	// Params returns the parameters as sent to the verifier: the JWT secured response in the response parameter, or the plain payload.
	Params() url.Values
}

// DirectPostResponse is POSTed as form to the response URI.
// JWT is set when the verifier's metadata asks for a JWT secured response.
type DirectPostResponse struct {
	ResponseURI *url.URL
	Data        ResponseData
	JWT         string
}

// DirectPostJWTResponse is POSTed to the response URI with the JWT secured response as only form field.
type DirectPostJWTResponse struct {
	ResponseURI *url.URL
	Data        ResponseData
	JWT         string
}

// QueryResponse is delivered by redirecting the user agent to the redirect URI, with the parameters in the query.
type QueryResponse struct {
	RedirectURI *url.URL
	Data        ResponseData
	JWT         string
}

// FragmentResponse is delivered by redirecting the user agent to the redirect URI, with the parameters in the fragment.
type FragmentResponse struct {
	RedirectURI *url.URL
	Data        ResponseData
	JWT         string
}

func (r DirectPostResponse) ResponseMode() string  { return oauth.DirectPostResponseMode }
func (r DirectPostResponse) Payload() ResponseData { return r.Data }
func (r DirectPostResponse) Params() url.Values    { return responseParams(r.Data, r.JWT) }

func (r DirectPostJWTResponse) ResponseMode() string  { return oauth.DirectPostJWTResponseMode }
func (r DirectPostJWTResponse) Payload() ResponseData { return r.Data }
func (r DirectPostJWTResponse) Params() url.Values    { return responseParams(r.Data, r.JWT) }

func (r QueryResponse) ResponseMode() string  { return oauth.QueryResponseMode }
func (r QueryResponse) Payload() ResponseData { return r.Data }
func (r QueryResponse) Params() url.Values    { return responseParams(r.Data, r.JWT) }

func (r FragmentResponse) ResponseMode() string  { return oauth.FragmentResponseMode }
func (r FragmentResponse) Payload() ResponseData { return r.Data }
func (r FragmentResponse) Params() url.Values    { return responseParams(r.Data, r.JWT) }

func responseParams(data ResponseData, jwt string) url.Values {
	if jwt != "" {
		return url.Values{oauth.ResponseParam: []string{jwt}}
	}
	return data.Params()
}
