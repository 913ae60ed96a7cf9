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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKThumbprintURIPrefix is the prefix of a JWK thumbprint URI using SHA-256 (RFC9278).
const JWKThumbprintURIPrefix = "urn:ietf:params:oauth:jwk-thumbprint:sha-256:"

const rsaKeySize = 2048

// GenerateKey generates a new private key for the given JWS algorithm, and sets the "alg" and "kid" (thumbprint) properties.
// It's used for tests and for wallets that don't have a configured signing key.
func GenerateKey(algorithm string) (jwk.Key, error) {
	var alg jwa.SignatureAlgorithm
	if err := alg.Accept(algorithm); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlgorithm, algorithm)
	}
	var raw interface{}
	var err error
	switch alg {
	case jwa.ES256:
		raw, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case jwa.ES384:
		raw, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case jwa.ES512:
		raw, err = ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	case jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256, jwa.PS384, jwa.PS512:
		raw, err = rsa.GenerateKey(rand.Reader, rsaKeySize)
	case jwa.EdDSA:
		_, raw, err = ed25519.GenerateKey(rand.Reader)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSigningKey, algorithm)
	}
	if err != nil {
		return nil, err
	}
	key, err := jwk.FromRaw(raw)
	if err != nil {
		return nil, err
	}
	_ = key.Set(jwk.AlgorithmKey, alg)
	if err = jwk.AssignKeyID(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateEncryptionKey generates a P-256 key pair for ECDH-ES key agreement, as used by verifiers requesting encrypted responses.
func GenerateEncryptionKey() (jwk.Key, error) {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	key, err := jwk.FromRaw(raw)
	if err != nil {
		return nil, err
	}
	_ = key.Set(jwk.KeyUsageKey, jwk.ForEncryption)
	_ = key.Set(jwk.AlgorithmKey, jwa.ECDH_ES)
	if err = jwk.AssignKeyID(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Thumbprint returns the base64url encoded RFC7638 SHA-256 thumbprint of the key's public part.
func Thumbprint(key jwk.Key) (string, error) {
	publicKey, err := jwk.PublicKeyOf(key)
	if err != nil {
		return "", err
	}
	thumbprint, err := publicKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(thumbprint), nil
}

// ThumbprintURI returns the RFC9278 JWK thumbprint URI of the key.
func ThumbprintURI(key jwk.Key) (string, error) {
	thumbprint, err := Thumbprint(key)
	if err != nil {
		return "", err
	}
	return JWKThumbprintURIPrefix + thumbprint, nil
}

// LoadKeyFromFile reads a JWK from the given file.
func LoadKeyFromFile(filename string) (jwk.Key, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JWK in %s: %w", filename, err)
	}
	return key, nil
}

// ParseKeySet parses a JWK Set document.
func ParseKeySet(data []byte) (jwk.Set, error) {
	return jwk.Parse(data)
}

// SelectEncryptionKey returns the first key in the set that can be used for the given JWE key management algorithm.
// Keys explicitly marked for signing (use=sig) are skipped. It returns nil if no key is suitable.
func SelectEncryptionKey(set jwk.Set, alg string) jwk.Key {
	if set == nil {
		return nil
	}
	for i := 0; i < set.Len(); i++ {
		key, _ := set.Key(i)
		if key.KeyUsage() == string(jwk.ForSignature) {
			continue
		}
		if key.Algorithm() != nil && key.Algorithm().String() != "" && key.Algorithm().String() != alg {
			continue
		}
		return key
	}
	return nil
}
