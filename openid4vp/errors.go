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
	"errors"
	"fmt"
	"strings"

	"github.com/nuts-foundation/siop-openid4vp/oauth"
)

// Errors returned when resolving a source (request object, client metadata, presentation definition).
var (
	// ErrInvalidSource is returned when a source is malformed, can't be retrieved or yields an invalid document.
	ErrInvalidSource = errors.New("invalid source")
	// ErrUnresolvable is returned when a request object passed by reference can't be retrieved.
	ErrUnresolvable = errors.New("unresolvable")
	// ErrInvalidJWT is returned when a request object is not a parseable JWT.
	ErrInvalidJWT = errors.New("invalid JWT")
)

// Errors returned when validating an authorization request.
var (
	ErrMissingRequiredField      = errors.New("missing required field")
	ErrUnsupportedResponseType   = errors.New("unsupported response type")
	ErrInvalidResponseMode       = errors.New("invalid response mode")
	ErrUnsupportedClientIDScheme = errors.New("unsupported client_id_scheme")
	ErrInvalidClientID           = errors.New("invalid client_id")
	ErrUnsupportedIDTokenType    = errors.New("unsupported id_token_type")
	ErrInvalidRequestObject      = errors.New("invalid request object")
)

// Errors returned when mapping a validated request onto the wallet's capabilities.
var (
	ErrPresentationDefinitionURIUnsupported = errors.New("presentation_definition_uri is not supported")
	ErrSubjectSyntaxTypesNoMatch            = errors.New("no supported subject syntax type")
	ErrVPFormatsNotSupported                = errors.New("no supported VP format")
)

// Errors returned when building an authorization response.
var (
	ErrInvalidConsent              = errors.New("invalid consent")
	ErrNegativeConsent             = errors.New("negative consent")
	ErrMissingSigningConfiguration = errors.New("missing signing configuration")
	ErrMissingEncryptionKey        = errors.New("missing encryption key")
	ErrResponseEncoding            = errors.New("unable to encode response")
)

// ResolvingError is returned when a source can't be resolved into a concrete value.
type ResolvingError struct {
	Kind error
	// Source describes what was being resolved, e.g. "client metadata".
	Source string
	// URL is set when the source was passed by reference.
	URL   string
	Cause error
}

func (e ResolvingError) Error() string {
	msg := fmt.Sprintf("resolving %s: %s", e.Source, e.Kind)
	if e.URL != "" {
		msg += " (url=" + e.URL + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ResolvingError) Unwrap() []error {
	return causes(e.Kind, e.Cause)
}

// ValidationError is returned when an authorization request is malformed or incomplete.
type ValidationError struct {
	Kind error
	// Field is the request parameter that failed validation, if any.
	Field string
	Cause error
}

func (e ValidationError) Error() string {
	msg := "invalid authorization request: " + e.Kind.Error()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ValidationError) Unwrap() []error {
	return causes(e.Kind, e.Cause)
}

// ResolutionError is returned when a validated request can't be turned into ResolvedRequestData,
// either because a source couldn't be resolved (Cause is a ResolvingError) or the wallet lacks a capability (Kind is set).
type ResolutionError struct {
	Kind  error
	Cause error
}

func (e ResolutionError) Error() string {
	parts := []string{"unable to resolve authorization request"}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e ResolutionError) Unwrap() []error {
	return causes(e.Kind, e.Cause)
}

// ValidatedAuthorizationError is returned when an authorization response can't be built.
type ValidatedAuthorizationError struct {
	Kind error
	// Message holds the holder's message for ErrNegativeConsent, or details for the other kinds.
	Message string
	Cause   error
}

func (e ValidatedAuthorizationError) Error() string {
	msg := "unable to build authorization response: " + e.Kind.Error()
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ValidatedAuthorizationError) Unwrap() []error {
	return causes(e.Kind, e.Cause)
}

// DispatchError is returned when an authorization response can't be dispatched at all.
// Failures of the transport itself are reported as ErroredOutcome instead.
type DispatchError struct {
	Cause error
}

func (e DispatchError) Error() string {
	return "unable to dispatch authorization response: " + e.Cause.Error()
}

func (e DispatchError) Unwrap() error {
	return e.Cause
}

// AuthorizationError is returned by Wallet.Authorize. Stage names the pipeline stage that failed.
type AuthorizationError struct {
	Stage string
	Cause error
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed (%s): %s", e.Stage, e.Cause)
}

func (e AuthorizationError) Unwrap() error {
	return e.Cause
}

// stages of the authorization pipeline, used in AuthorizationError
const (
	stageParse         = "parse"
	stageRequestObject = "request object"
	stageValidation    = "validation"
	stageResolution    = "resolution"
)

func causes(errs ...error) []error {
	result := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}

// ToOAuth2Error converts an error returned by the pipeline into the OAuth2 error that can be reported to the verifier.
// Errors that don't originate from the request are reported as server_error.
func ToOAuth2Error(err error) oauth.OAuth2Error {
	var oauthErr oauth.OAuth2Error
	if errors.As(err, &oauthErr) {
		return oauthErr
	}
	result := oauth.OAuth2Error{Code: oauth.ServerError, Description: err.Error(), InternalError: err}
	switch {
	case errors.Is(err, ErrNegativeConsent):
		result.Code = oauth.AccessDenied
	case errors.Is(err, ErrUnsupportedResponseType):
		result.Code = oauth.UnsupportedResponseType
	case errors.Is(err, ErrUnsupportedClientIDScheme), errors.Is(err, ErrInvalidClientID):
		result.Code = oauth.InvalidClient
	case errors.Is(err, ErrPresentationDefinitionURIUnsupported):
		result.Code = oauth.InvalidPresentationDefinitionURI
	case errors.Is(err, ErrSubjectSyntaxTypesNoMatch):
		result.Code = oauth.SubjectSyntaxTypesNotSupported
	case errors.Is(err, ErrVPFormatsNotSupported):
		result.Code = oauth.VPFormatsNotSupported
	case errors.Is(err, ErrInvalidRequestObject), errors.Is(err, ErrInvalidJWT):
		result.Code = oauth.InvalidRequestObject
	case errors.Is(err, ErrUnresolvable):
		result.Code = oauth.InvalidRequestURI
	case errors.Is(err, ErrInvalidSource):
		var resolvingErr ResolvingError
		switch {
		case !errors.As(err, &resolvingErr) || resolvingErr.Source != sourcePresentationDefinition:
			result.Code = oauth.InvalidRequest
		case resolvingErr.URL != "":
			result.Code = oauth.InvalidPresentationDefinitionURI
		default:
			result.Code = oauth.InvalidPresentationDefinitionReference
		}
	case errors.Is(err, ErrMissingRequiredField), errors.Is(err, ErrInvalidResponseMode), errors.Is(err, ErrUnsupportedIDTokenType):
		result.Code = oauth.InvalidRequest
	}
	return result
}
