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
package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// allowedClockSkew is the clock skew tolerated when validating exp, iat and nbf.
const allowedClockSkew = 5 * time.Second

var _ JOSE = (*JWX)(nil)

// JWX implements JOSE using lestrrat-go/jwx.
type JWX struct{}

// NewJOSE returns the default JOSE implementation.
func NewJOSE() *JWX {
	return &JWX{}
}

// SignJWT signs claims with the key and returns the compacted token. The headers param can be used to add additional headers
func (j JWX) SignJWT(claims map[string]interface{}, headers map[string]interface{}, key jwk.Key) (string, error) {
	if key == nil {
		return "", errors.New("no signing key")
	}
	alg, err := SignatureAlgorithm(key)
	if err != nil {
		return "", err
	}
	token := jwt.New()
	for k, v := range claims {
		if err := token.Set(k, v); err != nil {
			return "", fmt.Errorf("invalid claim %s: %w", k, err)
		}
	}
	hdr := jws.NewHeaders()
	for k, v := range headers {
		if err := hdr.Set(k, v); err != nil {
			return "", fmt.Errorf("invalid header %s: %w", k, err)
		}
	}
	if key.KeyID() != "" {
		_ = hdr.Set(jws.KeyIDKey, key.KeyID())
	}
	sig, err := jwt.Sign(token, jwt.WithKey(alg, key, jws.WithProtectedHeaders(hdr)))
	if err != nil {
		return "", fmt.Errorf("unable to sign JWT: %w", err)
	}
	return string(sig), nil
}

// EncryptJWT encrypts the payload for the recipient. See JOSE.EncryptJWT.
func (j JWX) EncryptJWT(payload []byte, headers map[string]interface{}, recipient jwk.Key, alg string, enc string) (string, error) {
	if recipient == nil {
		return "", errors.New("no recipient key")
	}
	var keyAlg jwa.KeyEncryptionAlgorithm
	if err := keyAlg.Accept(alg); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAlgorithm, alg)
	}
	var contentAlg jwa.ContentEncryptionAlgorithm
	if err := contentAlg.Accept(enc); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAlgorithm, enc)
	}
	hdr := jwe.NewHeaders()
	for k, v := range headers {
		if err := hdr.Set(k, v); err != nil {
			return "", fmt.Errorf("invalid header %s: %w", k, err)
		}
	}
	if recipient.KeyID() != "" {
		_ = hdr.Set(jwe.KeyIDKey, recipient.KeyID())
	}
	publicKey, err := jwk.PublicRawKeyOf(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid recipient key: %w", err)
	}
	result, err := jwe.Encrypt(payload, jwe.WithKey(keyAlg, publicKey), jwe.WithContentEncryption(contentAlg), jwe.WithProtectedHeaders(hdr))
	if err != nil {
		return "", fmt.Errorf("unable to encrypt JWT: %w", err)
	}
	return string(result), nil
}

// VerifyJWT parses the token, verifies its signature and validates it. See JOSE.VerifyJWT.
func (j JWX) VerifyJWT(token string, publicKey jwk.Key) (map[string]interface{}, error) {
	if publicKey == nil {
		return nil, errors.New("no verification key")
	}
	key, err := jwk.PublicKeyOf(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid verification key: %w", err)
	}
	alg, err := jwtAlgorithm(token)
	if err != nil {
		return nil, err
	}
	if err = checkAlgorithm(publicKey, alg); err != nil {
		return nil, err
	}
	parsed, err := jwt.ParseString(token, jwt.WithKey(alg, key), jwt.WithValidate(true), jwt.WithAcceptableSkew(allowedClockSkew))
	if err != nil {
		return nil, err
	}
	return parsed.AsMap(context.Background())
}

// jwtAlgorithm returns the algorithm from the protected header of the token's single signature.
func jwtAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	if len(message.Signatures()) != 1 {
		return "", errors.New("incorrect amount of signatures in JWT")
	}
	return message.Signatures()[0].ProtectedHeaders().Algorithm(), nil
}

// checkAlgorithm checks the token algorithm can be used with the key. A key with an "alg" property only accepts that algorithm,
// RSA keys without one accept both RS* and PS*. Other keys accept the algorithm derived from their type (and curve).
func checkAlgorithm(key jwk.Key, alg jwa.SignatureAlgorithm) error {
	var supported []jwa.SignatureAlgorithm
	switch {
	case key.Algorithm() != nil && key.Algorithm().String() != "":
		supported = []jwa.SignatureAlgorithm{jwa.SignatureAlgorithm(key.Algorithm().String())}
	case key.KeyType() == jwa.RSA:
		supported = []jwa.SignatureAlgorithm{jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256, jwa.PS384, jwa.PS512}
	default:
		derived, err := SignatureAlgorithm(key)
		if err != nil {
			return err
		}
		supported = []jwa.SignatureAlgorithm{derived}
	}
	if !slices.Contains(supported, alg) {
		return fmt.Errorf("%w: JWT is signed with %s, key supports %v", ErrInvalidAlgorithm, alg, supported)
	}
	return nil
}

// DecryptJWE decrypts the JWE. See JOSE.DecryptJWE.
func (j JWX) DecryptJWE(token string, privateKey jwk.Key) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("no decryption key")
	}
	message, err := jwe.Parse([]byte(token))
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := privateKey.Raw(&raw); err != nil {
		return nil, fmt.Errorf("invalid decryption key: %w", err)
	}
	alg := message.ProtectedHeaders().Algorithm()
	return jwe.Decrypt([]byte(token), jwe.WithKey(alg, raw))
}

// ParseUnverified parses the JWT without verifying its signature or validating its claims.
// It's used for request objects, of which the signature can only be verified after the client metadata has been resolved.
func ParseUnverified(token string) (map[string]interface{}, jws.Headers, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return nil, nil, err
	}
	if len(message.Signatures()) != 1 {
		return nil, nil, errors.New("incorrect amount of signatures in JWT")
	}
	parsed, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, nil, err
	}
	claims, err := parsed.AsMap(context.Background())
	if err != nil {
		return nil, nil, err
	}
	return claims, message.Signatures()[0].ProtectedHeaders(), nil
}

// SignatureAlgorithm returns the JWS algorithm of the key: its "alg" property if set, otherwise derived from the key type.
func SignatureAlgorithm(key jwk.Key) (jwa.SignatureAlgorithm, error) {
	if key.Algorithm() != nil && key.Algorithm().String() != "" {
		var alg jwa.SignatureAlgorithm
		if err := alg.Accept(key.Algorithm().String()); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidAlgorithm, key.Algorithm().String())
		}
		return alg, nil
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return "", err
	}
	switch k := raw.(type) {
	case *rsa.PrivateKey, *rsa.PublicKey:
		return jwa.PS256, nil
	case *ecdsa.PrivateKey:
		return ecAlg(&k.PublicKey)
	case *ecdsa.PublicKey:
		return ecAlg(k)
	case ed25519.PrivateKey, ed25519.PublicKey:
		return jwa.EdDSA, nil
	default:
		return "", ErrUnsupportedSigningKey
	}
}

func ecAlg(key *ecdsa.PublicKey) (alg jwa.SignatureAlgorithm, err error) {
	switch key.Params().BitSize {
	case 256:
		alg = jwa.ES256
	case 384:
		alg = jwa.ES384
	case 521:
		alg = jwa.ES512
	default:
		err = ErrUnsupportedSigningKey
	}
	return
}
