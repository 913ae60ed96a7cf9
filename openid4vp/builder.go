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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp/log"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// algorithms used for direct_post.jwt when the verifier doesn't specify any
const (
	defaultKeyEncryptionAlgorithm     = "ECDH-ES"
	defaultContentEncryptionAlgorithm = "A256GCM"
)

// BuilderOption configures a ResponseBuilder.
type BuilderOption func(builder *ResponseBuilder)

// WithExplicitNegativeConsent makes Build return ErrNegativeConsent for negative consent,
// instead of a response carrying NoConsensusResponseData.
func WithExplicitNegativeConsent() BuilderOption {
	return func(builder *ResponseBuilder) {
		builder.explicitNegativeConsent = true
	}
}

// ResponseBuilder combines a resolved request with the holder's consent into an AuthorizationResponse.
type ResponseBuilder struct {
	jose                    crypto.JOSE
	explicitNegativeConsent bool
	now                     func() time.Time
}

// NewResponseBuilder creates a ResponseBuilder that uses the given JOSE implementation for JWT secured responses.
func NewResponseBuilder(jose crypto.JOSE, opts ...BuilderOption) *ResponseBuilder {
	result := &ResponseBuilder{
		jose: jose,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

// Build creates the authorization response. The wallet configuration is only needed for JWT secured responses and may be nil otherwise.
// Negative consent results in a response carrying NoConsensusResponseData, which is never signed.
// For direct_post.jwt it's encrypted when the verifier has a suitable key, otherwise it's sent as direct_post.
// Errors are of type ValidatedAuthorizationError.
func (b ResponseBuilder) Build(resolved ResolvedRequestData, consent ClientConsent, config *WalletConfiguration) (AuthorizationResponse, error) {
	params := resolved.Parameters()
	if negative, ok := consent.(NegativeConsensus); ok {
		if b.explicitNegativeConsent {
			return nil, ValidatedAuthorizationError{Kind: ErrNegativeConsent, Message: negative.Message}
		}
		log.Logger().WithField(core.LogFieldClientID, params.ClientID).Info("Holder denied authorization request")
		data := NoConsensusResponseData{State: params.State, Error: negative.Message}
		token, err := b.encryptError(params, data)
		if err != nil {
			// the rejection carries nothing confidential, so it's still delivered
			log.Logger().WithError(err).Warn("Unable to encrypt error response, sending it unencrypted")
		}
		return transport(params.ResponseMode, data, token)
	}
	data, err := responseData(resolved, consent)
	if err != nil {
		return nil, err
	}
	token, err := b.encode(params, data, config)
	if err != nil {
		return nil, err
	}
	return transport(params.ResponseMode, data, token)
}

// transport wraps the response data in the response for the response mode.
// Without a JWT, direct_post.jwt falls back to direct_post, which only happens for error responses
// when the verifier has no encryption key.
func transport(responseMode ResponseMode, data ResponseData, token string) (AuthorizationResponse, error) {
	switch mode := responseMode.(type) {
	case DirectPost:
		return DirectPostResponse{ResponseURI: mode.ResponseURI, Data: data, JWT: token}, nil
	case DirectPostJWT:
		if token == "" {
			return DirectPostResponse{ResponseURI: mode.ResponseURI, Data: data}, nil
		}
		return DirectPostJWTResponse{ResponseURI: mode.ResponseURI, Data: data, JWT: token}, nil
	case Query:
		return QueryResponse{RedirectURI: mode.RedirectURI, Data: data, JWT: token}, nil
	case Fragment:
		return FragmentResponse{RedirectURI: mode.RedirectURI, Data: data, JWT: token}, nil
	default:
		return nil, ValidatedAuthorizationError{Kind: ErrInvalidResponseMode, Message: fmt.Sprintf("response mode %T can't carry a response", responseMode)}
	}
}

// responseData checks the consent matches the request and creates the response payload.
func responseData(resolved ResolvedRequestData, consent ClientConsent) (ResponseData, error) {
	state := resolved.Parameters().State
	switch request := resolved.(type) {
	case IDTokenData:
		c, ok := consent.(IDTokenConsensus)
		if !ok {
			return nil, consentMismatch(resolved, consent)
		}
		if c.IDToken == "" {
			return nil, ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: "no ID token"}
		}
		return IDTokenResponseData{IDToken: c.IDToken, State: state}, nil
	case VPTokenData:
		c, ok := consent.(VPTokenConsensus)
		if !ok {
			return nil, consentMismatch(resolved, consent)
		}
		submission, err := presentationSubmission(request.PresentationDefinition, c.VPToken, c.ApprovedClaims)
		if err != nil {
			return nil, err
		}
		return VPTokenResponseData{VPToken: c.VPToken, PresentationSubmission: *submission, State: state}, nil
	case IDAndVPTokenData:
		c, ok := consent.(IDAndVPTokenConsensus)
		if !ok {
			return nil, consentMismatch(resolved, consent)
		}
		if c.IDToken == "" {
			return nil, ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: "no ID token"}
		}
		submission, err := presentationSubmission(request.PresentationDefinition, c.VPToken, c.ApprovedClaims)
		if err != nil {
			return nil, err
		}
		return IDAndVPTokenResponseData{IDToken: c.IDToken, VPToken: c.VPToken, PresentationSubmission: *submission, State: state}, nil
	default:
		return nil, consentMismatch(resolved, consent)
	}
}

func consentMismatch(resolved ResolvedRequestData, consent ClientConsent) error {
	return ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: fmt.Sprintf("%T does not match %T", consent, resolved)}
}

// presentationSubmission creates the presentation submission for the approved claims.
// Every claim must refer to an input descriptor of the presentation definition.
func presentationSubmission(definition pe.PresentationDefinition, vpToken string, approvedClaims []pe.InputDescriptorMappingObject) (*pe.PresentationSubmission, error) {
	if vpToken == "" {
		return nil, ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: "no VP token"}
	}
	if len(approvedClaims) == 0 {
		return nil, ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: "no approved claims"}
	}
	for _, claim := range approvedClaims {
		if definition.InputDescriptorByID(claim.Id) == nil {
			return nil, ValidatedAuthorizationError{Kind: ErrInvalidConsent, Message: fmt.Sprintf("unknown input descriptor '%s'", claim.Id)}
		}
	}
	return &pe.PresentationSubmission{
		Id:            uuid.NewString(),
		DefinitionId:  definition.Id,
		DescriptorMap: approvedClaims,
	}, nil
}

// encode returns the JWT secured response (JARM) if the verifier asks for one, or an empty string otherwise.
// The response is signed if authorization_signed_response_alg is set and encrypted if authorization_encrypted_response_alg/enc are set.
// direct_post.jwt always yields a JWT: when no algorithms are specified, it's encrypted if the verifier has a suitable key and signed otherwise.
func (b ResponseBuilder) encode(params ResolvedParameters, data ResponseData, config *WalletConfiguration) (string, error) {
	var metadata oauth.ClientMetadata
	if params.ClientMetadata != nil {
		metadata = *params.ClientMetadata
	}
	_, jwtResponseMode := params.ResponseMode.(DirectPostJWT)
	if !metadata.RequiresSignedResponse() && !metadata.RequiresEncryptedResponse() && !jwtResponseMode {
		return "", nil
	}
	if config == nil || config.SigningKey == nil {
		return "", ValidatedAuthorizationError{Kind: ErrMissingSigningConfiguration, Message: "JWT secured response requested by verifier"}
	}

	sign := metadata.RequiresSignedResponse()
	var recipient jwk.Key
	keyAlg, contentAlg := metadata.AuthorizationEncryptedResponseAlg, metadata.AuthorizationEncryptedResponseEnc
	if metadata.RequiresEncryptedResponse() {
		if recipient = encryptionKey(metadata, keyAlg); recipient == nil {
			return "", ValidatedAuthorizationError{Kind: ErrMissingEncryptionKey, Message: fmt.Sprintf("no key in client metadata for %s", keyAlg)}
		}
	} else if !sign {
		// direct_post.jwt without algorithms
		keyAlg, contentAlg = defaultKeyEncryptionAlgorithm, defaultContentEncryptionAlgorithm
		if recipient = encryptionKey(metadata, keyAlg); recipient == nil {
			sign = true
		}
	}

	claims, err := b.responseClaims(params, data, *config)
	if err != nil {
		return "", err
	}
	var token string
	if sign {
		if token, err = b.sign(claims, metadata.AuthorizationSignedResponseAlg, config.SigningKey); err != nil {
			return "", err
		}
	}
	if recipient == nil {
		return token, nil
	}
	headers := map[string]interface{}{}
	var payload []byte
	if sign {
		headers["cty"] = "JWT"
		payload = []byte(token)
	} else if payload, err = json.Marshal(claims); err != nil {
		return "", ValidatedAuthorizationError{Kind: ErrResponseEncoding, Cause: err}
	}
	encrypted, err := b.jose.EncryptJWT(payload, headers, recipient, keyAlg, contentAlg)
	if err != nil {
		return "", ValidatedAuthorizationError{Kind: ErrResponseEncoding, Cause: err}
	}
	return encrypted, nil
}

// encryptError encrypts the error response for direct_post.jwt.
// It returns an empty string for other response modes, or if the verifier has no key to encrypt to.
func (b ResponseBuilder) encryptError(params ResolvedParameters, data NoConsensusResponseData) (string, error) {
	if _, ok := params.ResponseMode.(DirectPostJWT); !ok || params.ClientMetadata == nil {
		return "", nil
	}
	metadata := *params.ClientMetadata
	keyAlg, contentAlg := metadata.AuthorizationEncryptedResponseAlg, metadata.AuthorizationEncryptedResponseEnc
	if !metadata.RequiresEncryptedResponse() {
		keyAlg, contentAlg = defaultKeyEncryptionAlgorithm, defaultContentEncryptionAlgorithm
	}
	recipient := encryptionKey(metadata, keyAlg)
	if recipient == nil {
		return "", nil
	}
	claims := data.Claims()
	claims["aud"] = params.ClientID
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", ValidatedAuthorizationError{Kind: ErrResponseEncoding, Cause: err}
	}
	encrypted, err := b.jose.EncryptJWT(payload, map[string]interface{}{}, recipient, keyAlg, contentAlg)
	if err != nil {
		return "", ValidatedAuthorizationError{Kind: ErrResponseEncoding, Cause: err}
	}
	return encrypted, nil
}

func (b ResponseBuilder) responseClaims(params ResolvedParameters, data ResponseData, config WalletConfiguration) (map[string]interface{}, error) {
	issuer, err := config.SubjectIdentifier()
	if err != nil {
		return nil, ValidatedAuthorizationError{Kind: ErrMissingSigningConfiguration, Cause: err}
	}
	now := b.now()
	claims := data.Claims()
	claims["iss"] = issuer
	claims["aud"] = params.ClientID
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(config.ttl()).Unix()
	claims[oauth.NonceParam] = params.Nonce
	return claims, nil
}

func (b ResponseBuilder) sign(claims map[string]interface{}, requestedAlg string, key jwk.Key) (string, error) {
	if requestedAlg != "" {
		alg, err := crypto.SignatureAlgorithm(key)
		if err != nil {
			return "", ValidatedAuthorizationError{Kind: ErrMissingSigningConfiguration, Cause: err}
		}
		if alg != jwa.SignatureAlgorithm(requestedAlg) {
			return "", ValidatedAuthorizationError{Kind: ErrMissingSigningConfiguration, Message: fmt.Sprintf("signing key doesn't support %s", requestedAlg)}
		}
	}
	token, err := b.jose.SignJWT(claims, map[string]interface{}{"typ": "JWT"}, key)
	if err != nil {
		if errors.Is(err, crypto.ErrUnsupportedSigningKey) {
			return "", ValidatedAuthorizationError{Kind: ErrMissingSigningConfiguration, Cause: err}
		}
		return "", ValidatedAuthorizationError{Kind: ErrResponseEncoding, Cause: err}
	}
	return token, nil
}

// encryptionKey returns the verifier's key for the given key encryption algorithm, or nil if there's none.
func encryptionKey(metadata oauth.ClientMetadata, alg string) jwk.Key {
	if len(metadata.Jwks) == 0 {
		return nil
	}
	set, err := crypto.ParseKeySet(metadata.Jwks)
	if err != nil {
		log.Logger().WithError(err).Warn("Client metadata contains invalid jwks")
		return nil
	}
	return crypto.SelectEncryptionKey(set, alg)
}
