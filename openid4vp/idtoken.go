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
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
)

// subJWKClaim is the SIOPv2 claim carrying the public key of the subject when it's identified by JWK thumbprint.
const subJWKClaim = "sub_jwk"

// IDTokenIssuer issues self-issued ID tokens (SIOPv2) for resolved requests that ask for one.
type IDTokenIssuer struct {
	jose crypto.JOSE
	now  func() time.Time
}

// NewIDTokenIssuer creates an IDTokenIssuer that signs ID tokens using the given JOSE implementation.
func NewIDTokenIssuer(jose crypto.JOSE) *IDTokenIssuer {
	return &IDTokenIssuer{jose: jose, now: time.Now}
}

// Issue creates a signed ID token for the request, which must be IDTokenData or IDAndVPTokenData.
// The wallet is both issuer and subject; it's identified by its DID or the JWK thumbprint URI of its signing key.
func (i IDTokenIssuer) Issue(resolved ResolvedRequestData, config WalletConfiguration) (string, error) {
	switch resolved.(type) {
	case IDTokenData, IDAndVPTokenData:
	default:
		return "", fmt.Errorf("%T doesn't request an ID token", resolved)
	}
	if config.SigningKey == nil {
		return "", ErrMissingSigningConfiguration
	}
	subject, err := config.SubjectIdentifier()
	if err != nil {
		return "", err
	}
	params := resolved.Parameters()
	now := i.now()
	claims := map[string]interface{}{
		"iss":            subject,
		"sub":            subject,
		"aud":            params.ClientID,
		"iat":            now,
		"exp":            now.Add(config.ttl()),
		"jti":            uuid.NewString(),
		oauth.NonceParam: params.Nonce,
	}
	if config.usesThumbprint() {
		publicKey, err := publicKeyClaim(config.SigningKey)
		if err != nil {
			return "", err
		}
		claims[subJWKClaim] = publicKey
	}
	if config.HolderInfo != nil {
		if config.HolderInfo.Email != "" {
			claims["email"] = config.HolderInfo.Email
		}
		if config.HolderInfo.Name != "" {
			claims["name"] = config.HolderInfo.Name
		}
	}
	return i.jose.SignJWT(claims, map[string]interface{}{"typ": "JWT"}, config.SigningKey)
}

// Verify checks the signature of the ID token against the public key, and checks it's a self-issued token for the given client and nonce.
// It returns the claims of the token.
func (i IDTokenIssuer) Verify(token string, publicKey jwk.Key, clientID string, nonce string) (map[string]interface{}, error) {
	claims, err := i.jose.VerifyJWT(token, publicKey)
	if err != nil {
		return nil, err
	}
	if claims["iss"] == nil || claims["iss"] != claims["sub"] {
		return nil, errors.New("ID token is not self-issued (iss != sub)")
	}
	if !audienceContains(claims["aud"], clientID) {
		return nil, fmt.Errorf("ID token audience does not contain %s", clientID)
	}
	if claims[oauth.NonceParam] != nonce {
		return nil, errors.New("ID token nonce mismatch")
	}
	return claims, nil
}

func audienceContains(aud interface{}, clientID string) bool {
	switch value := aud.(type) {
	case string:
		return value == clientID
	case []string:
		return slices.Contains(value, clientID)
	case []interface{}:
		return slices.Contains(value, interface{}(clientID))
	default:
		return false
	}
}

func publicKeyClaim(key jwk.Key) (map[string]interface{}, error) {
	publicKey, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	data, err := json.Marshal(publicKey)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
