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
package oauth

import (
	"net/url"
	"strings"
)

// ErrorCode specifies error codes as defined by the OAuth2 and OpenID4VP specifications.
type ErrorCode string

const (
	// InvalidRequest is returned when the request is missing a required parameter, includes an invalid parameter value or is otherwise malformed.
	InvalidRequest ErrorCode = "invalid_request"
	// InvalidClient is returned when the client_id or client_id_scheme can't be used.
	InvalidClient ErrorCode = "invalid_client"
	// UnsupportedResponseType is returned when the response_type is not supported by the wallet.
	UnsupportedResponseType ErrorCode = "unsupported_response_type"
	// InvalidScope is returned when the requested scope is invalid, unknown, or malformed.
	InvalidScope ErrorCode = "invalid_scope"
	// AccessDenied is returned when the holder denied consent.
	AccessDenied ErrorCode = "access_denied"
	// ServerError is returned when the wallet encountered an unexpected condition.
	ServerError ErrorCode = "server_error"
	// VPFormatsNotSupported is returned when the wallet doesn't support any of the formats requested by the verifier. (OpenID4VP)
	VPFormatsNotSupported ErrorCode = "vp_formats_not_supported"
	// InvalidPresentationDefinitionURI is returned when the presentation_definition_uri can't be reached. (OpenID4VP)
	InvalidPresentationDefinitionURI ErrorCode = "invalid_presentation_definition_uri"
	// InvalidPresentationDefinitionReference is returned when the presentation definition referenced by scope is unknown. (OpenID4VP)
	InvalidPresentationDefinitionReference ErrorCode = "invalid_presentation_definition_reference"
	// InvalidRequestURI is returned when the request_uri can't be resolved. (RFC9101)
	InvalidRequestURI ErrorCode = "invalid_request_uri"
	// InvalidRequestObject is returned when the request object is invalid. (RFC9101)
	InvalidRequestObject ErrorCode = "invalid_request_object"
	// SubjectSyntaxTypesNotSupported is returned when none of the client's subject syntax types are supported. (SIOPv2)
	SubjectSyntaxTypesNotSupported ErrorCode = "subject_syntax_types_not_supported"
)

// OAuth2Error is an OAuth2 error that can be reported back to the verifier.
type OAuth2Error struct {
	// Code is the error code as defined by the OAuth2 specification.
	Code ErrorCode `json:"error"`
	// Description is a human-readable description of the error.
	Description string `json:"error_description,omitempty"`
	// InternalError is the underlying error, which is not returned to the verifier.
	InternalError error `json:"-"`
	// RedirectURI is the URI the error should be reported to, if any.
	RedirectURI *url.URL `json:"-"`
}

// Error returns the error code, description and internal error separated by " - ".
func (e OAuth2Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Code))
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.InternalError != nil {
		parts = append(parts, e.InternalError.Error())
	}
	return strings.Join(parts, " - ")
}

// Unwrap returns the internal error.
func (e OAuth2Error) Unwrap() error {
	return e.InternalError
}

// Params returns the error as response parameters (error, error_description).
func (e OAuth2Error) Params() map[string]string {
	result := map[string]string{ErrorParam: string(e.Code)}
	if e.Description != "" {
		result[ErrorDescriptionParam] = e.Description
	}
	return result
}
