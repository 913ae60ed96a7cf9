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
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp/log"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// sources, as reported in ResolvingError
const (
	sourceRequestObject          = "request object"
	sourceClientMetadata         = "client metadata"
	sourcePresentationDefinition = "presentation definition"
	sourceKeySet                 = "client key set"
)

// accept headers for documents passed by reference
const (
	requestObjectContentType = "application/oauth-authz-req+jwt"
	jsonContentType          = "application/json"
	jwkSetContentType        = "application/jwk-set+json"
)

// RequestObjectResolver resolves a RequestSource into the compact request object JWT.
type RequestObjectResolver struct {
	fetcher Fetcher
}

// NewRequestObjectResolver creates a RequestObjectResolver that fetches request objects passed by reference using the given Fetcher.
func NewRequestObjectResolver(fetcher Fetcher) *RequestObjectResolver {
	return &RequestObjectResolver{fetcher: fetcher}
}

// Resolve returns the request object. Request objects passed by value are returned unchanged.
// Request objects passed by reference are fetched once; the result must be a parseable JWT.
func (r RequestObjectResolver) Resolve(ctx context.Context, source RequestSource) (string, error) {
	switch s := source.(type) {
	case RequestByValue:
		return s.JWT, nil
	case RequestByReference:
		if _, err := core.ParseHTTPURL(s.URL); err != nil {
			return "", ResolvingError{Kind: ErrInvalidSource, Source: sourceRequestObject, URL: s.URL, Cause: err}
		}
		data, err := r.fetcher.Fetch(ctx, s.URL, requestObjectContentType)
		if err != nil {
			log.Logger().WithError(err).WithField(core.LogFieldURL, s.URL).Info("Unable to fetch request object")
			return "", ResolvingError{Kind: ErrUnresolvable, Source: sourceRequestObject, URL: s.URL, Cause: err}
		}
		token := strings.TrimSpace(string(data))
		if _, _, err = crypto.ParseUnverified(token); err != nil {
			return "", ResolvingError{Kind: ErrInvalidJWT, Source: sourceRequestObject, URL: s.URL, Cause: err}
		}
		return token, nil
	default:
		return "", ResolvingError{Kind: ErrInvalidSource, Source: sourceRequestObject, Cause: fmt.Errorf("unsupported source %T", source)}
	}
}

// ClientMetadataResolver resolves a ClientMetadataSource into the verifier's metadata.
type ClientMetadataResolver struct {
	fetcher Fetcher
}

// NewClientMetadataResolver creates a ClientMetadataResolver that fetches metadata passed by reference using the given Fetcher.
func NewClientMetadataResolver(fetcher Fetcher) *ClientMetadataResolver {
	return &ClientMetadataResolver{fetcher: fetcher}
}

// Resolve returns the client metadata, or nil if no source is given.
// Metadata passed by value is returned unchanged. Metadata passed by reference is fetched and validated against the client metadata schema.
func (r ClientMetadataResolver) Resolve(ctx context.Context, source ClientMetadataSource) (*oauth.ClientMetadata, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case ClientMetadataByValue:
		metadata := s.Metadata
		return &metadata, nil
	case ClientMetadataByReference:
		data, err := r.fetch(ctx, sourceClientMetadata, s.URL, jsonContentType)
		if err != nil {
			return nil, err
		}
		metadata, err := oauth.ParseClientMetadata(data)
		if err != nil {
			return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourceClientMetadata, URL: s.URL, Cause: err}
		}
		return metadata, nil
	default:
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourceClientMetadata, Cause: fmt.Errorf("unsupported source %T", source)}
	}
}

// ResolveKeySet returns the verifier's key set: the inline jwks if present, otherwise the one fetched from jwks_uri.
// It returns nil if the metadata has neither.
func (r ClientMetadataResolver) ResolveKeySet(ctx context.Context, metadata oauth.ClientMetadata) (jwk.Set, error) {
	if len(metadata.Jwks) > 0 {
		set, err := crypto.ParseKeySet(metadata.Jwks)
		if err != nil {
			return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourceKeySet, Cause: err}
		}
		return set, nil
	}
	if metadata.JwksURI == "" {
		return nil, nil
	}
	data, err := r.fetch(ctx, sourceKeySet, metadata.JwksURI, jwkSetContentType)
	if err != nil {
		return nil, err
	}
	set, err := crypto.ParseKeySet(data)
	if err != nil {
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourceKeySet, URL: metadata.JwksURI, Cause: err}
	}
	return set, nil
}

func (r ClientMetadataResolver) fetch(ctx context.Context, source string, target string, accept string) ([]byte, error) {
	return fetchSource(ctx, r.fetcher, source, target, accept)
}

// PresentationDefinitionResolver resolves a PresentationDefinitionSource into a presentation definition.
type PresentationDefinitionResolver struct {
	fetcher Fetcher
}

// NewPresentationDefinitionResolver creates a PresentationDefinitionResolver that fetches definitions passed by reference using the given Fetcher.
func NewPresentationDefinitionResolver(fetcher Fetcher) *PresentationDefinitionResolver {
	return &PresentationDefinitionResolver{fetcher: fetcher}
}

// Resolve returns the presentation definition. Definitions passed by value are returned unchanged.
// Definitions passed by reference are fetched and validated against the presentation definition schema.
// Implied definitions are looked up in knownDefinitions: first by the complete scope, then by each of its space-delimited values.
// If the source doesn't specify a scope, the given scope is used.
func (r PresentationDefinitionResolver) Resolve(ctx context.Context, source PresentationDefinitionSource, scope string, knownDefinitions DefinitionStore) (*pe.PresentationDefinition, error) {
	switch s := source.(type) {
	case PresentationDefinitionByValue:
		definition := s.Definition
		return &definition, nil
	case PresentationDefinitionByReference:
		data, err := fetchSource(ctx, r.fetcher, sourcePresentationDefinition, s.URL, jsonContentType)
		if err != nil {
			return nil, err
		}
		definition, err := pe.ParsePresentationDefinition(data)
		if err != nil {
			return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourcePresentationDefinition, URL: s.URL, Cause: err}
		}
		return definition, nil
	case PresentationDefinitionImplied:
		if s.Scope != "" {
			scope = s.Scope
		}
		if definition := lookupScope(knownDefinitions, scope); definition != nil {
			return definition, nil
		}
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourcePresentationDefinition, Cause: fmt.Errorf("no presentation definition known for scope '%s'", scope)}
	default:
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: sourcePresentationDefinition, Cause: fmt.Errorf("unsupported source %T", source)}
	}
}

func lookupScope(knownDefinitions DefinitionStore, scope string) *pe.PresentationDefinition {
	if knownDefinitions == nil || scope == "" {
		return nil
	}
	if definition := knownDefinitions.ByScope(scope); definition != nil {
		return definition
	}
	for _, value := range strings.Fields(scope) {
		if definition := knownDefinitions.ByScope(value); definition != nil {
			return definition
		}
	}
	return nil
}

// fetchSource fetches a document passed by reference. Any failure is reported as ErrInvalidSource.
func fetchSource(ctx context.Context, fetcher Fetcher, source string, target string, accept string) ([]byte, error) {
	if _, err := core.ParseHTTPURL(target); err != nil {
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: source, URL: target, Cause: err}
	}
	data, err := fetcher.Fetch(ctx, target, accept)
	if err != nil {
		log.Logger().WithError(err).WithField(core.LogFieldURL, target).Infof("Unable to fetch %s", source)
		return nil, ResolvingError{Kind: ErrInvalidSource, Source: source, URL: target, Cause: err}
	}
	return data, nil
}
