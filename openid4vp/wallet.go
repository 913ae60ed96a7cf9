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
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp/log"
	"github.com/prometheus/client_golang/prometheus"
)

// ResolvedRequestOutcome is the result of Wallet.Authorize: NotSecuredOutcome or JWTSecuredOutcome.
type ResolvedRequestOutcome interface {
	Resolved() ResolvedRequestData
}

// NotSecuredOutcome is a resolved request that was passed as plain query parameters.
type NotSecuredOutcome struct {
	Data ResolvedRequestData
}

// JWTSecuredOutcome is a resolved request that was passed as request object (by value or by reference).
type JWTSecuredOutcome struct {
	Data ResolvedRequestData
	// Verified is true if the signature of the request object was verified against the verifier's jwks.
	Verified bool
}

func (o NotSecuredOutcome) Resolved() ResolvedRequestData { return o.Data }
func (o JWTSecuredOutcome) Resolved() ResolvedRequestData { return o.Data }

// Wallet is the entrypoint of the OpenID4VP/SIOPv2 flow: it resolves authorization requests,
// builds authorization responses from the holder's consent and dispatches them to the verifier.
// It holds no state between flows, so it's safe for concurrent use.
type Wallet struct {
	config          WalletConfiguration
	jose            crypto.JOSE
	requestResolver *RequestObjectResolver
	mapper          *RequestMapper
	builder         *ResponseBuilder
	dispatcher      *Dispatcher
	idTokenIssuer   *IDTokenIssuer
}

// NewWallet creates a Wallet. The configuration is validated and copied.
func NewWallet(config WalletConfiguration, fetcher Fetcher, poster Poster, jose crypto.JOSE, registerer prometheus.Registerer, opts ...BuilderOption) (*Wallet, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wallet configuration: %w", err)
	}
	dispatcher, err := NewDispatcher(poster, registerer)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		config:          config,
		jose:            jose,
		requestResolver: NewRequestObjectResolver(fetcher),
		mapper:          NewRequestMapper(fetcher),
		builder:         NewResponseBuilder(jose, opts...),
		dispatcher:      dispatcher,
		idTokenIssuer:   NewIDTokenIssuer(jose),
	}, nil
}

// Configuration returns the wallet's configuration.
func (w Wallet) Configuration() WalletConfiguration {
	return w.config
}

// Authorize resolves the authorization request in the given URI (or bare request object JWT).
// Errors are of type AuthorizationError, naming the stage that failed.
func (w Wallet) Authorize(ctx context.Context, uri string) (ResolvedRequestOutcome, error) {
	request, source, err := ParseAuthorizationURL(uri)
	if err != nil {
		return nil, AuthorizationError{Stage: stageParse, Cause: err}
	}
	var requestObject string
	var requestObjectHeaders map[string]interface{}
	if source != nil {
		if requestObject, err = w.requestResolver.Resolve(ctx, source); err != nil {
			return nil, AuthorizationError{Stage: stageRequestObject, Cause: err}
		}
		claims, headers, err := crypto.ParseUnverified(requestObject)
		if err != nil {
			return nil, AuthorizationError{Stage: stageRequestObject, Cause: ResolvingError{Kind: ErrInvalidJWT, Source: sourceRequestObject, Cause: err}}
		}
		if request, err = request.merge(claims); err != nil {
			return nil, AuthorizationError{Stage: stageRequestObject, Cause: err}
		}
		requestObjectHeaders, _ = headers.AsMap(ctx)
	}
	validated, err := Validate(request)
	if err != nil {
		return nil, AuthorizationError{Stage: stageValidation, Cause: err}
	}
	resolved, err := w.mapper.Resolve(ctx, validated, w.config)
	if err != nil {
		return nil, AuthorizationError{Stage: stageResolution, Cause: err}
	}
	logger := log.Logger().WithField(core.LogFieldClientID, validated.Parameters().ClientID)
	if source == nil {
		logger.Debug("Resolved unsecured authorization request")
		return NotSecuredOutcome{Data: resolved}, nil
	}
	verified, err := w.verifyRequestObject(requestObject, requestObjectHeaders, resolved.Parameters().ClientMetadata)
	if err != nil {
		return nil, AuthorizationError{Stage: stageRequestObject, Cause: err}
	}
	logger.Debugf("Resolved JWT secured authorization request (verified=%v)", verified)
	return JWTSecuredOutcome{Data: resolved, Verified: verified}, nil
}

// verifyRequestObject verifies the request object signature, if enabled and the client metadata contains a key set.
func (w Wallet) verifyRequestObject(requestObject string, headers map[string]interface{}, metadata *oauth.ClientMetadata) (bool, error) {
	if !w.config.VerifyRequestObjects || metadata == nil || len(metadata.Jwks) == 0 {
		return false, nil
	}
	set, err := crypto.ParseKeySet(metadata.Jwks)
	if err != nil {
		return false, ValidationError{Kind: ErrInvalidRequestObject, Field: oauth.RequestParam, Cause: fmt.Errorf("invalid jwks: %w", err)}
	}
	var key jwk.Key
	if kid, _ := headers["kid"].(string); kid != "" {
		key, _ = set.LookupKeyID(kid)
	} else if set.Len() == 1 {
		key, _ = set.Key(0)
	}
	if key == nil {
		return false, ValidationError{Kind: ErrInvalidRequestObject, Field: oauth.RequestParam, Cause: errors.New("no key to verify request object")}
	}
	if _, err = w.jose.VerifyJWT(requestObject, key); err != nil {
		return false, ValidationError{Kind: ErrInvalidRequestObject, Field: oauth.RequestParam, Cause: err}
	}
	return true, nil
}

// IssueIDToken issues a self-issued ID token for the resolved request.
func (w Wallet) IssueIDToken(resolved ResolvedRequestData) (string, error) {
	return w.idTokenIssuer.Issue(resolved, w.config)
}

// Respond builds the authorization response for the resolved request and the holder's consent.
func (w Wallet) Respond(resolved ResolvedRequestData, consent ClientConsent) (AuthorizationResponse, error) {
	return w.builder.Build(resolved, consent, &w.config)
}

// Dispatch delivers the authorization response to the verifier.
func (w Wallet) Dispatch(ctx context.Context, response AuthorizationResponse) (DispatchOutcome, error) {
	return w.dispatcher.Dispatch(ctx, response)
}

// ParseAuthorizationURL parses an authorization request URI, e.g. openid4vp://?client_id=...&request_uri=...
// Any scheme is accepted, as long as the parameters are in the query. A bare compact JWT is treated as request object passed by value.
// It returns the query parameters and the request object source, which is nil if the request isn't JWT secured.
func ParseAuthorizationURL(input string) (AuthorizationRequest, RequestSource, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, ValidationError{Kind: ErrMissingRequiredField, Field: "uri"}
	}
	if isCompactJWT(input) {
		return AuthorizationRequest{}, RequestByValue{JWT: input}, nil
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return nil, nil, ValidationError{Kind: ErrInvalidSource, Field: "uri", Cause: err}
	}
	if parsed.Scheme == "" {
		return nil, nil, ValidationError{Kind: ErrInvalidSource, Field: "uri", Cause: errors.New("URI missing scheme")}
	}
	query := parsed.Query()
	requestObject := query.Get(oauth.RequestParam)
	requestURI := query.Get(oauth.RequestURIParam)
	query.Del(oauth.RequestParam)
	query.Del(oauth.RequestURIParam)
	request := requestFromQuery(query)
	switch {
	case requestObject != "" && requestURI != "":
		return nil, nil, ValidationError{Kind: ErrInvalidSource, Field: oauth.RequestParam, Cause: errors.New("request and request_uri are mutually exclusive")}
	case requestObject != "":
		return request, RequestByValue{JWT: requestObject}, nil
	case requestURI != "":
		return request, RequestByReference{URL: requestURI}, nil
	default:
		return request, nil, nil
	}
}

// isCompactJWT returns true if the input looks like a JWS (3 parts) or JWE (5 parts) in compact serialization.
func isCompactJWT(input string) bool {
	if strings.ContainsAny(input, ":/?=& ") {
		return false
	}
	parts := strings.Split(input, ".")
	return len(parts) == 3 || len(parts) == 5
}
