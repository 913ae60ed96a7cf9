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
	"net/url"
	"strings"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// Validate checks the raw authorization request and determines which kind of request it is.
// It doesn't perform any I/O: sources passed by reference are resolved later on.
func Validate(request AuthorizationRequest) (ValidatedRequest, error) {
	idTokenRequested, vpTokenRequested, err := parseResponseType(request)
	if err != nil {
		return nil, err
	}
	clientID, err := requiredString(request, oauth.ClientIDParam)
	if err != nil {
		return nil, err
	}
	nonce, err := requiredString(request, oauth.NonceParam)
	if err != nil {
		return nil, err
	}
	scope, err := optionalString(request, oauth.ScopeParam)
	if err != nil {
		return nil, err
	}
	state, err := optionalString(request, oauth.StateParam)
	if err != nil {
		return nil, err
	}
	responseMode, err := parseResponseMode(request, clientID)
	if err != nil {
		return nil, err
	}
	clientIDScheme, err := parseClientIDScheme(request, clientID, responseMode)
	if err != nil {
		return nil, err
	}
	metadataSource, err := parseClientMetadataSource(request)
	if err != nil {
		return nil, err
	}
	params := RequestParameters{
		ClientMetadataSource: metadataSource,
		ClientIDScheme:       clientIDScheme,
		ClientID:             clientID,
		Nonce:                nonce,
		Scope:                scope,
		ResponseMode:         responseMode,
		State:                state,
	}

	var idTokenType string
	if idTokenRequested {
		if idTokenType, err = parseIDTokenType(request); err != nil {
			return nil, err
		}
	}
	var definitionSource PresentationDefinitionSource
	if vpTokenRequested {
		if definitionSource, err = parsePresentationDefinitionSource(request, scope); err != nil {
			return nil, err
		}
	}
	switch {
	case idTokenRequested && vpTokenRequested:
		return IDAndVPTokenRequest{RequestParameters: params, IDTokenType: idTokenType, PresentationDefinitionSource: definitionSource}, nil
	case vpTokenRequested:
		return VPTokenRequest{RequestParameters: params, PresentationDefinitionSource: definitionSource}, nil
	default:
		return IDTokenRequest{RequestParameters: params, IDTokenType: idTokenType}, nil
	}
}

// parseResponseType returns whether an ID token and/or VP token is requested.
// Other response types (e.g. code) aren't supported by the wallet.
func parseResponseType(request AuthorizationRequest) (bool, bool, error) {
	responseType, err := request.getString(oauth.ResponseTypeParam)
	if err != nil {
		return false, false, ValidationError{Kind: ErrUnsupportedResponseType, Field: oauth.ResponseTypeParam, Cause: err}
	}
	var idToken, vpToken bool
	for _, value := range strings.Fields(responseType) {
		switch value {
		case oauth.IDTokenResponseType:
			idToken = true
		case oauth.VPTokenResponseType:
			vpToken = true
		default:
			return false, false, ValidationError{Kind: ErrUnsupportedResponseType, Field: oauth.ResponseTypeParam, Cause: fmt.Errorf("unsupported value '%s'", value)}
		}
	}
	if !idToken && !vpToken {
		return false, false, ValidationError{Kind: ErrUnsupportedResponseType, Field: oauth.ResponseTypeParam}
	}
	return idToken, vpToken, nil
}

func requiredString(request AuthorizationRequest, key string) (string, error) {
	value, err := request.getString(key)
	if err != nil {
		return "", ValidationError{Kind: ErrMissingRequiredField, Field: key, Cause: err}
	}
	if value == "" {
		return "", ValidationError{Kind: ErrMissingRequiredField, Field: key}
	}
	return value, nil
}

func optionalString(request AuthorizationRequest, key string) (string, error) {
	value, err := request.getString(key)
	if err != nil {
		return "", ValidationError{Kind: ErrInvalidSource, Field: key, Cause: err}
	}
	return value, nil
}

// parseResponseMode determines the response mode, which defaults to fragment.
// direct_post(.jwt) requires a response_uri (or redirect_uri), query and fragment require a redirect_uri.
// For query and fragment, a client_id that is an absolute URL is used when the redirect_uri is absent.
func parseResponseMode(request AuthorizationRequest, clientID string) (ResponseMode, error) {
	mode, err := request.getString(oauth.ResponseModeParam)
	if err != nil {
		return nil, ValidationError{Kind: ErrInvalidResponseMode, Field: oauth.ResponseModeParam, Cause: err}
	}
	switch mode {
	case oauth.DirectPostResponseMode, oauth.DirectPostJWTResponseMode:
		responseURI, err := responseModeURI(request, oauth.ResponseURIParam, oauth.RedirectURIParam)
		if err != nil {
			return nil, err
		}
		if mode == oauth.DirectPostJWTResponseMode {
			return DirectPostJWT{ResponseURI: responseURI}, nil
		}
		return DirectPost{ResponseURI: responseURI}, nil
	case oauth.QueryResponseMode, oauth.FragmentResponseMode, "":
		redirectURI, err := responseModeURI(request, oauth.RedirectURIParam)
		if errors.Is(err, ErrMissingRequiredField) {
			// the client_id might be the redirect_uri
			if parsed, parseErr := core.ParseAbsoluteURL(clientID); parseErr == nil {
				redirectURI, err = parsed, nil
			}
		}
		if err != nil {
			return nil, err
		}
		if mode == oauth.QueryResponseMode {
			return Query{RedirectURI: redirectURI}, nil
		}
		return Fragment{RedirectURI: redirectURI}, nil
	case noneResponseMode:
		return NoResponseMode{}, nil
	default:
		return nil, ValidationError{Kind: ErrInvalidResponseMode, Field: oauth.ResponseModeParam, Cause: fmt.Errorf("unsupported value '%s'", mode)}
	}
}

// responseModeURI returns the first of the given parameters that is present as absolute URL.
func responseModeURI(request AuthorizationRequest, keys ...string) (*url.URL, error) {
	for _, key := range keys {
		value, err := request.getString(key)
		if err != nil {
			return nil, ValidationError{Kind: ErrInvalidResponseMode, Field: key, Cause: err}
		}
		if value == "" {
			continue
		}
		parsed, err := core.ParseAbsoluteURL(value)
		if err != nil {
			return nil, ValidationError{Kind: ErrInvalidResponseMode, Field: key, Cause: err}
		}
		return parsed, nil
	}
	return nil, ValidationError{Kind: ErrMissingRequiredField, Field: keys[0]}
}

// parseClientIDScheme returns the client_id_scheme parameter, or derives it from the client_id:
// DIDs use the did scheme, https URLs the redirect_uri scheme and anything else is considered pre-registered.
func parseClientIDScheme(request AuthorizationRequest, clientID string, responseMode ResponseMode) (string, error) {
	scheme, err := request.getString(oauth.ClientIDSchemeParam)
	if err != nil {
		return "", ValidationError{Kind: ErrUnsupportedClientIDScheme, Field: oauth.ClientIDSchemeParam, Cause: err}
	}
	if scheme == "" {
		switch {
		case strings.HasPrefix(clientID, "did:"):
			scheme = oauth.DIDClientIDScheme
		case strings.HasPrefix(clientID, "https://"):
			scheme = oauth.RedirectURIClientIDScheme
		default:
			scheme = oauth.PreRegisteredClientIDScheme
		}
	}
	switch scheme {
	case oauth.PreRegisteredClientIDScheme, oauth.EntityIDClientIDScheme:
		return scheme, nil
	case oauth.DIDClientIDScheme:
		if _, err := did.ParseDID(clientID); err != nil {
			return "", ValidationError{Kind: ErrInvalidClientID, Field: oauth.ClientIDParam, Cause: err}
		}
		return scheme, nil
	case oauth.RedirectURIClientIDScheme:
		if uri := responseMode.URI(); uri != nil && uri.String() != clientID {
			return "", ValidationError{Kind: ErrInvalidClientID, Field: oauth.ClientIDParam, Cause: fmt.Errorf("client_id must equal %s", uri)}
		}
		return scheme, nil
	default:
		return "", ValidationError{Kind: ErrUnsupportedClientIDScheme, Field: oauth.ClientIDSchemeParam, Cause: fmt.Errorf("unsupported value '%s'", scheme)}
	}
}

// parseClientMetadataSource returns the source of the client metadata, or nil if the request doesn't contain any.
func parseClientMetadataSource(request AuthorizationRequest) (ClientMetadataSource, error) {
	data, err := request.getJSON(oauth.ClientMetadataParam)
	if err != nil {
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.ClientMetadataParam, Cause: err}
	}
	metadataURI, err := request.getString(oauth.ClientMetadataURIParam)
	if err != nil {
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.ClientMetadataURIParam, Cause: err}
	}
	switch {
	case data != nil && metadataURI != "":
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.ClientMetadataParam, Cause: errors.New("client_metadata and client_metadata_uri are mutually exclusive")}
	case data != nil:
		metadata, err := oauth.ParseClientMetadata(data)
		if err != nil {
			return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.ClientMetadataParam, Cause: err}
		}
		return ClientMetadataByValue{Metadata: *metadata}, nil
	case metadataURI != "":
		return ClientMetadataByReference{URL: metadataURI}, nil
	default:
		return nil, nil
	}
}

// parsePresentationDefinitionSource returns the source of the presentation definition.
// If neither presentation_definition nor presentation_definition_uri is present, the definition is implied by the scope.
func parsePresentationDefinitionSource(request AuthorizationRequest, scope string) (PresentationDefinitionSource, error) {
	data, err := request.getJSON(oauth.PresentationDefParam)
	if err != nil {
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.PresentationDefParam, Cause: err}
	}
	definitionURI, err := request.getString(oauth.PresentationDefUriParam)
	if err != nil {
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.PresentationDefUriParam, Cause: err}
	}
	switch {
	case data != nil && definitionURI != "":
		return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.PresentationDefParam, Cause: errors.New("presentation_definition and presentation_definition_uri are mutually exclusive")}
	case data != nil:
		definition, err := pe.ParsePresentationDefinition(data)
		if err != nil {
			return nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.PresentationDefParam, Cause: err}
		}
		return PresentationDefinitionByValue{Definition: *definition}, nil
	case definitionURI != "":
		return PresentationDefinitionByReference{URL: definitionURI}, nil
	case scope != "":
		return PresentationDefinitionImplied{Scope: scope}, nil
	default:
		return nil, ValidationError{Kind: ErrMissingRequiredField, Field: oauth.PresentationDefParam}
	}
}

// parseIDTokenType returns the requested ID token type, which defaults to subject signed.
// If multiple types are given (space-delimited, in order of preference), the first one is used.
func parseIDTokenType(request AuthorizationRequest) (string, error) {
	value, err := request.getString(oauth.IDTokenTypeParam)
	if err != nil {
		return "", ValidationError{Kind: ErrUnsupportedIDTokenType, Field: oauth.IDTokenTypeParam, Cause: err}
	}
	types := strings.Fields(value)
	if len(types) == 0 {
		return oauth.SubjectSignedIDTokenType, nil
	}
	switch types[0] {
	case oauth.SubjectSignedIDTokenType, oauth.AttesterSignedIDTokenType:
		return types[0], nil
	default:
		return "", ValidationError{Kind: ErrUnsupportedIDTokenType, Field: oauth.IDTokenTypeParam, Cause: fmt.Errorf("unsupported value '%s'", types[0])}
	}
}
