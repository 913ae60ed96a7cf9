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
// Package oauth contains the OAuth2, SIOPv2 and OpenID4VP parameter names and data structures exchanged with verifiers.
package oauth

import (
	"encoding/json"
	"slices"
	"strings"
)

// parameter names
const (
	// ClientIDParam is the parameter name for the client_id parameter. (RFC6749)
	ClientIDParam = "client_id"
	// ClientIDSchemeParam is the parameter name for the client_id_scheme parameter. (OpenID4VP)
	ClientIDSchemeParam = "client_id_scheme"
	// ClientMetadataParam is the parameter name for the client_metadata parameter. (OpenID4VP)
	ClientMetadataParam = "client_metadata"
	// ClientMetadataURIParam is the parameter name for the client_metadata_uri parameter. (OpenID4VP)
	ClientMetadataURIParam = "client_metadata_uri"
	// IDTokenParam is the parameter name for the id_token parameter. (SIOPv2)
	IDTokenParam = "id_token"
	// IDTokenTypeParam is the parameter name for the id_token_type parameter. (SIOPv2)
	IDTokenTypeParam = "id_token_type"
	// NonceParam is the parameter name for the nonce parameter
	NonceParam = "nonce"
	// PresentationDefParam is the parameter name for the OpenID4VP presentation_definition parameter. (OpenID4VP)
	PresentationDefParam = "presentation_definition"
	// PresentationDefUriParam is the parameter name for the OpenID4VP presentation_definition_uri parameter. (OpenID4VP)
	PresentationDefUriParam = "presentation_definition_uri"
	// PresentationSubmissionParam is the parameter name for the presentation_submission parameter. (OpenID4VP)
	PresentationSubmissionParam = "presentation_submission"
	// RedirectURIParam is the parameter name for the redirect_uri parameter. (RFC6749)
	RedirectURIParam = "redirect_uri"
	// RequestParam is the parameter name for the request parameter. (RFC9101)
	RequestParam = "request"
	// RequestURIParam is the parameter name for the request_uri parameter. (RFC9101)
	RequestURIParam = "request_uri"
	// ResponseParam is the parameter name for the response parameter, carrying a JWT secured authorization response. (JARM)
	ResponseParam = "response"
	// ResponseModeParam is the parameter name for the OAuth2 response_mode parameter.
	ResponseModeParam = "response_mode"
	// ResponseTypeParam is the parameter name for the response_type parameter. (RFC6749)
	ResponseTypeParam = "response_type"
	// ResponseURIParam is the parameter name for the OpenID4VP response_uri parameter.
	ResponseURIParam = "response_uri"
	// ScopeParam is the parameter name for the scope parameter. (RFC6749)
	ScopeParam = "scope"
	// StateParam is the parameter name for the state parameter. (RFC6749)
	StateParam = "state"
	// VpTokenParam is the parameter name for the vp_token parameter. (OpenID4VP)
	VpTokenParam = "vp_token"
	// ErrorParam is the parameter name for the error parameter
	ErrorParam = "error"
	// ErrorDescriptionParam is the parameter name for the error_description parameter
	ErrorDescriptionParam = "error_description"
)

// response types
const (
	// IDTokenResponseType is the response_type requesting a self-issued ID token. (SIOPv2)
	IDTokenResponseType = "id_token"
	// VPTokenResponseType is the response_type requesting a VP token. (OpenID4VP)
	VPTokenResponseType = "vp_token"
)

// response modes
const (
	// DirectPostResponseMode makes the wallet POST the response parameters as form to the response_uri. (OpenID4VP)
	DirectPostResponseMode = "direct_post"
	// DirectPostJWTResponseMode makes the wallet POST a JWT secured response as single "response" form field to the response_uri. (OpenID4VP)
	DirectPostJWTResponseMode = "direct_post.jwt"
	// QueryResponseMode appends the response parameters to the query of the redirect_uri. (OAuth2 Multiple Response Types)
	QueryResponseMode = "query"
	// FragmentResponseMode appends the response parameters to the fragment of the redirect_uri. (OAuth2 Multiple Response Types)
	FragmentResponseMode = "fragment"
)

// client ID schemes
const (
	// PreRegisteredClientIDScheme means the client_id is known to the wallet upfront.
	PreRegisteredClientIDScheme = "pre-registered"
	// RedirectURIClientIDScheme means the client_id equals the redirect_uri (or response_uri) of the request.
	RedirectURIClientIDScheme = "redirect_uri"
	// EntityIDClientIDScheme means the client_id is an OpenID Federation entity identifier.
	EntityIDClientIDScheme = "entity_id"
	// DIDClientIDScheme means the client_id is a DID.
	DIDClientIDScheme = "did"
)

// ID token types (SIOPv2)
const (
	// SubjectSignedIDTokenType is a self-issued ID token, signed by the wallet.
	SubjectSignedIDTokenType = "subject_signed"
	// AttesterSignedIDTokenType is an ID token signed by a third party attesting the subject.
	AttesterSignedIDTokenType = "attester_signed"
)

// subject syntax types (SIOPv2)
const (
	// JWKThumbprintSubjectSyntaxType identifies subjects by the RFC7638 thumbprint of their key.
	JWKThumbprintSubjectSyntaxType = "urn:ietf:params:oauth:jwk-thumbprint"
	// DIDSubjectSyntaxTypePrefix is the prefix of subject syntax types that identify subjects by DID, e.g. "did:web".
	DIDSubjectSyntaxTypePrefix = "did"
)

// ClientMetadata defines the metadata of the verifier (client) as passed in client_metadata(_uri).
// See https://openid.net/specs/openid-4-verifiable-presentations-1_0.html#name-verifier-metadata-client-me
type ClientMetadata struct {
	// JwksURI references the client's JSON Web Key Set document, which contains the client's public keys.
	JwksURI string `json:"jwks_uri,omitempty"`
	// Jwks contains the JSON Web Key Set of the client. Mutually exclusive with JwksURI.
	Jwks json.RawMessage `json:"jwks,omitempty"`
	// IDTokenSignedResponseAlg is the JWS alg the client requires for signing ID tokens.
	IDTokenSignedResponseAlg string `json:"id_token_signed_response_alg,omitempty"`
	// IDTokenEncryptedResponseAlg is the JWE alg the client requires for encrypting ID tokens.
	IDTokenEncryptedResponseAlg string `json:"id_token_encrypted_response_alg,omitempty"`
	// IDTokenEncryptedResponseEnc is the JWE enc the client requires for encrypting ID tokens.
	IDTokenEncryptedResponseEnc string `json:"id_token_encrypted_response_enc,omitempty"`
	// SubjectSyntaxTypesSupported lists the subject syntax types the client accepts.
	SubjectSyntaxTypesSupported []string `json:"subject_syntax_types_supported,omitempty"`
	// AuthorizationSignedResponseAlg is the JWS alg for signing authorization responses (JARM).
	AuthorizationSignedResponseAlg string `json:"authorization_signed_response_alg,omitempty"`
	// AuthorizationEncryptedResponseAlg is the JWE alg for encrypting authorization responses (JARM).
	AuthorizationEncryptedResponseAlg string `json:"authorization_encrypted_response_alg,omitempty"`
	// AuthorizationEncryptedResponseEnc is the JWE enc for encrypting authorization responses (JARM).
	AuthorizationEncryptedResponseEnc string `json:"authorization_encrypted_response_enc,omitempty"`
	// VPFormats lists the vp_formats supported by the client.
	VPFormats map[string]map[string][]string `json:"vp_formats,omitempty"`
	// ClientName is a human-readable name of the client, which can be shown to the holder when asking consent.
	ClientName string `json:"client_name,omitempty"`
}

// RequiresSignedResponse returns true if the client wants a signed (JARM) authorization response.
func (m ClientMetadata) RequiresSignedResponse() bool {
	return m.AuthorizationSignedResponseAlg != ""
}

// RequiresEncryptedResponse returns true if the client wants an encrypted (JARM) authorization response.
func (m ClientMetadata) RequiresEncryptedResponse() bool {
	return m.AuthorizationEncryptedResponseAlg != "" && m.AuthorizationEncryptedResponseEnc != ""
}

// SupportsSubjectSyntaxType returns true if the client accepts the given subject syntax type.
// If the client didn't specify any, all are accepted.
// A DID method specific type (e.g. "did:web") is accepted if the client lists it or the generic "did" type.
func (m ClientMetadata) SupportsSubjectSyntaxType(syntaxType string) bool {
	if len(m.SubjectSyntaxTypesSupported) == 0 {
		return true
	}
	if slices.Contains(m.SubjectSyntaxTypesSupported, syntaxType) {
		return true
	}
	return strings.HasPrefix(syntaxType, DIDSubjectSyntaxTypePrefix+":") &&
		slices.Contains(m.SubjectSyntaxTypesSupported, DIDSubjectSyntaxTypePrefix)
}

// Redirect is the response from the verifier on the direct_post authorization response.
type Redirect struct {
	// RedirectURI is the URI to redirect the user-agent to.
	RedirectURI string `json:"redirect_uri"`
}
