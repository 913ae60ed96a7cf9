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
	"errors"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// ErrUnsupportedSigningKey is returned when an unsupported private key is used to sign. Currently ecdsa, rsa and ed25519 keys are supported.
var ErrUnsupportedSigningKey = errors.New("signing key algorithm not supported")

// ErrInvalidAlgorithm is returned when an algorithm identifier is not a known JWS or JWE algorithm.
var ErrInvalidAlgorithm = errors.New("invalid algorithm")

// JOSE is the capability to build and verify compact serialized JOSE objects.
// Algorithms are identified by their JWA names (e.g. ES256, ECDH-ES, A256GCM) and passed through unchanged.
type JOSE interface {
	// SignJWT signs the claims with the given private key and returns the compact serialized JWT.
	// The alg header is taken from the key's "alg" property, or derived from the key type when absent.
	// The kid header is taken from the key's "kid" property, if present. The headers param can be used to add additional headers.
	SignJWT(claims map[string]interface{}, headers map[string]interface{}, key jwk.Key) (string, error)
	// EncryptJWT encrypts the payload for the recipient's public key using the given key management (alg) and content encryption (enc) algorithms,
	// and returns the compact serialized JWE.
	EncryptJWT(payload []byte, headers map[string]interface{}, recipient jwk.Key, alg string, enc string) (string, error)
	// VerifyJWT verifies the signature of the compact serialized JWT with the given public key, validates its time-based claims,
	// and returns the claims.
	VerifyJWT(token string, publicKey jwk.Key) (map[string]interface{}, error)
	// DecryptJWE decrypts the compact serialized JWE with the given private key and returns the payload.
	DecryptJWE(token string, privateKey jwk.Key) ([]byte, error)
}
