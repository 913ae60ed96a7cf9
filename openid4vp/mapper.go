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
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp/log"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// ResolvedParameters holds the parameters common to all resolved requests.
type ResolvedParameters struct {
	// ClientMetadata is nil when the request has no client metadata.
	ClientMetadata *oauth.ClientMetadata
	ClientIDScheme string
	ClientID       string
	Nonce          string
	Scope          string
	ResponseMode   ResponseMode
	State          string
}

// Parameters returns the common parameters of the resolved request.
func (p ResolvedParameters) Parameters() ResolvedParameters {
	return p
}

// ResolvedRequestData is an authorization request of which all sources have been resolved:
// IDTokenData, VPTokenData or IDAndVPTokenData. It contains everything the wallet needs to respond.
type ResolvedRequestData interface {
	Parameters() ResolvedParameters
	resolvedRequestData()
}

// IDTokenData is a resolved IDTokenRequest.
type IDTokenData struct {
	ResolvedParameters
	IDTokenType string
}

// VPTokenData is a resolved VPTokenRequest.
type VPTokenData struct {
	ResolvedParameters
	PresentationDefinition pe.PresentationDefinition
}

// IDAndVPTokenData is a resolved IDAndVPTokenRequest.
type IDAndVPTokenData struct {
	ResolvedParameters
	IDTokenType            string
	PresentationDefinition pe.PresentationDefinition
}

func (IDTokenData) resolvedRequestData()      {}
func (VPTokenData) resolvedRequestData()      {}
func (IDAndVPTokenData) resolvedRequestData() {}

// RequestMapper maps validated requests onto the wallet's capabilities, resolving the sources they refer to.
type RequestMapper struct {
	metadataResolver   *ClientMetadataResolver
	definitionResolver *PresentationDefinitionResolver
}

// NewRequestMapper creates a RequestMapper that fetches sources passed by reference using the given Fetcher.
func NewRequestMapper(fetcher Fetcher) *RequestMapper {
	return &RequestMapper{
		metadataResolver:   NewClientMetadataResolver(fetcher),
		definitionResolver: NewPresentationDefinitionResolver(fetcher),
	}
}

// Resolve turns the validated request into ResolvedRequestData. Errors are of type ResolutionError.
func (m RequestMapper) Resolve(ctx context.Context, validated ValidatedRequest, config WalletConfiguration) (ResolvedRequestData, error) {
	params := validated.Parameters()
	if !config.supportsClientIDScheme(params.ClientIDScheme) {
		return nil, ResolutionError{Kind: ErrUnsupportedClientIDScheme, Cause: fmt.Errorf("client_id_scheme '%s' is not supported by the wallet", params.ClientIDScheme)}
	}
	metadata, err := m.metadataResolver.Resolve(ctx, params.ClientMetadataSource)
	if err != nil {
		return nil, ResolutionError{Cause: err}
	}
	if metadata, err = m.resolveKeySet(ctx, metadata, params.ResponseMode); err != nil {
		return nil, ResolutionError{Cause: err}
	}
	resolved := ResolvedParameters{
		ClientMetadata: metadata,
		ClientIDScheme: params.ClientIDScheme,
		ClientID:       params.ClientID,
		Nonce:          params.Nonce,
		Scope:          params.Scope,
		ResponseMode:   params.ResponseMode,
		State:          params.State,
	}
	logger := log.Logger().WithField(core.LogFieldClientID, params.ClientID)

	switch request := validated.(type) {
	case IDTokenRequest:
		if err = checkSubjectSyntaxTypes(metadata, config); err != nil {
			return nil, err
		}
		logger.Debug("Resolved ID token request")
		return IDTokenData{ResolvedParameters: resolved, IDTokenType: request.IDTokenType}, nil
	case VPTokenRequest:
		definition, err := m.resolveDefinition(ctx, request.PresentationDefinitionSource, params.Scope, metadata, config)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Resolved VP token request (presentation definition: %s)", definition.Id)
		return VPTokenData{ResolvedParameters: resolved, PresentationDefinition: *definition}, nil
	case IDAndVPTokenRequest:
		if err = checkSubjectSyntaxTypes(metadata, config); err != nil {
			return nil, err
		}
		definition, err := m.resolveDefinition(ctx, request.PresentationDefinitionSource, params.Scope, metadata, config)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Resolved ID and VP token request (presentation definition: %s)", definition.Id)
		return IDAndVPTokenData{ResolvedParameters: resolved, IDTokenType: request.IDTokenType, PresentationDefinition: *definition}, nil
	default:
		return nil, ResolutionError{Kind: ErrInvalidSource, Cause: fmt.Errorf("unsupported request %T", validated)}
	}
}

func (m RequestMapper) resolveDefinition(ctx context.Context, source PresentationDefinitionSource, scope string, metadata *oauth.ClientMetadata, config WalletConfiguration) (*pe.PresentationDefinition, error) {
	if _, byReference := source.(PresentationDefinitionByReference); byReference && !config.PresentationDefinitionURISupported {
		return nil, ResolutionError{Kind: ErrPresentationDefinitionURIUnsupported}
	}
	if err := checkVPFormats(metadata, config); err != nil {
		return nil, err
	}
	definition, err := m.definitionResolver.Resolve(ctx, source, scope, config.KnownPresentationDefinitions)
	if err != nil {
		return nil, ResolutionError{Cause: err}
	}
	return definition, nil
}

// resolveKeySet hydrates the verifier's jwks from jwks_uri, if the response will be encrypted and the metadata only refers to the key set.
func (m RequestMapper) resolveKeySet(ctx context.Context, metadata *oauth.ClientMetadata, responseMode ResponseMode) (*oauth.ClientMetadata, error) {
	if metadata == nil || len(metadata.Jwks) > 0 || metadata.JwksURI == "" {
		return metadata, nil
	}
	_, directPostJWT := responseMode.(DirectPostJWT)
	if !metadata.RequiresEncryptedResponse() && !directPostJWT {
		return metadata, nil
	}
	set, err := m.metadataResolver.ResolveKeySet(ctx, *metadata)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourceKeySet, URL: metadata.JwksURI, Cause: err}
	}
	hydrated := *metadata
	hydrated.Jwks = data
	return &hydrated, nil
}

// checkSubjectSyntaxTypes checks that at least one of the subject syntax types the verifier supports is supported by the wallet.
func checkSubjectSyntaxTypes(metadata *oauth.ClientMetadata, config WalletConfiguration) error {
	if metadata == nil || len(metadata.SubjectSyntaxTypesSupported) == 0 {
		return nil
	}
	for _, syntaxType := range config.SubjectSyntaxTypesSupported {
		if metadata.SupportsSubjectSyntaxType(syntaxType) {
			return nil
		}
	}
	return ResolutionError{Kind: ErrSubjectSyntaxTypesNoMatch, Cause: fmt.Errorf("verifier supports %v", metadata.SubjectSyntaxTypesSupported)}
}

// checkVPFormats checks that at least one of the VP formats the verifier accepts can be produced by the wallet.
func checkVPFormats(metadata *oauth.ClientMetadata, config WalletConfiguration) error {
	if metadata == nil || len(metadata.VPFormats) == 0 || len(config.VPFormatsSupported) == 0 {
		return nil
	}
	for format := range metadata.VPFormats {
		if slices.Contains(config.VPFormatsSupported, format) {
			return nil
		}
	}
	return ResolutionError{Kind: ErrVPFormatsNotSupported}
}
