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

package cmd

import (
	"github.com/nuts-foundation/siop-openid4vp/openid4vp"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// resolvedRequest is the printed form of a resolved authorization request.
type resolvedRequest struct {
	Secured                bool                       `json:"secured"`
	Verified               bool                       `json:"verified"`
	ResponseType           string                     `json:"response_type"`
	ClientID               string                     `json:"client_id"`
	ClientIDScheme         string                     `json:"client_id_scheme"`
	ClientName             string                     `json:"client_name,omitempty"`
	Nonce                  string                     `json:"nonce"`
	State                  string                     `json:"state,omitempty"`
	Scope                  string                     `json:"scope,omitempty"`
	ResponseMode           string                     `json:"response_mode"`
	ResponseURI            string                     `json:"response_uri,omitempty"`
	IDTokenType            string                     `json:"id_token_type,omitempty"`
	PresentationDefinition *pe.PresentationDefinition `json:"presentation_definition,omitempty"`
}

func describeOutcome(outcome openid4vp.ResolvedRequestOutcome) resolvedRequest {
	resolved := outcome.Resolved()
	params := resolved.Parameters()
	result := resolvedRequest{
		ClientID:       params.ClientID,
		ClientIDScheme: params.ClientIDScheme,
		Nonce:          params.Nonce,
		State:          params.State,
		Scope:          params.Scope,
		ResponseMode:   params.ResponseMode.Name(),
	}
	if uri := params.ResponseMode.URI(); uri != nil {
		result.ResponseURI = uri.String()
	}
	if params.ClientMetadata != nil {
		result.ClientName = params.ClientMetadata.ClientName
	}
	if jwtOutcome, ok := outcome.(openid4vp.JWTSecuredOutcome); ok {
		result.Secured = true
		result.Verified = jwtOutcome.Verified
	}
	switch data := resolved.(type) {
	case openid4vp.IDTokenData:
		result.ResponseType = "id_token"
		result.IDTokenType = data.IDTokenType
	case openid4vp.VPTokenData:
		result.ResponseType = "vp_token"
		result.PresentationDefinition = &data.PresentationDefinition
	case openid4vp.IDAndVPTokenData:
		result.ResponseType = "vp_token id_token"
		result.IDTokenType = data.IDTokenType
		result.PresentationDefinition = &data.PresentationDefinition
	}
	return result
}

// dispatchResult is the printed form of a dispatch outcome.
type dispatchResult struct {
	Outcome      string `json:"outcome"`
	ResponseMode string `json:"response_mode"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func describeDispatch(response openid4vp.AuthorizationResponse, outcome openid4vp.DispatchOutcome) dispatchResult {
	result := dispatchResult{ResponseMode: response.ResponseMode()}
	switch o := outcome.(type) {
	case openid4vp.AcceptedOutcome:
		result.Outcome = "accepted"
		if o.RedirectURI != nil {
			result.RedirectURI = o.RedirectURI.String()
		}
	case openid4vp.RejectedOutcome:
		result.Outcome = "rejected"
		result.StatusCode = o.StatusCode
		result.Reason = o.Reason
	case openid4vp.ErroredOutcome:
		result.Outcome = "error"
		result.Reason = o.Cause.Error()
	}
	return result
}
