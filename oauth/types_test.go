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
package oauth

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientMetadata(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		data := `{
			"jwks": {"keys": [{"kty": "EC", "crv": "P-256", "x": "x", "y": "y"}]},
			"subject_syntax_types_supported": ["urn:ietf:params:oauth:jwk-thumbprint", "did:example"],
			"authorization_encrypted_response_alg": "ECDH-ES",
			"authorization_encrypted_response_enc": "A256GCM",
			"vp_formats": {"jwt_vp": {"alg": ["ES256"]}}
		}`

		actual, err := ParseClientMetadata([]byte(data))

		require.NoError(t, err)
		assert.True(t, actual.RequiresEncryptedResponse())
		assert.False(t, actual.RequiresSignedResponse())
		assert.Equal(t, []string{"ES256"}, actual.VPFormats["jwt_vp"]["alg"])
		assert.NotEmpty(t, actual.Jwks)
	})
	t.Run("error - jwks and jwks_uri are mutually exclusive", func(t *testing.T) {
		data := `{"jwks": {"keys": []}, "jwks_uri": "https://example.com/jwks"}`

		_, err := ParseClientMetadata([]byte(data))

		assert.ErrorContains(t, err, "client metadata does not conform to schema")
	})
	t.Run("error - wrong type", func(t *testing.T) {
		_, err := ParseClientMetadata([]byte(`{"subject_syntax_types_supported": "did"}`))

		assert.ErrorContains(t, err, "client metadata does not conform to schema")
	})
	t.Run("error - enc without alg", func(t *testing.T) {
		_, err := ParseClientMetadata([]byte(`{"authorization_encrypted_response_enc": "A256GCM"}`))

		assert.Error(t, err)
	})
	t.Run("error - not JSON", func(t *testing.T) {
		_, err := ParseClientMetadata([]byte("not json"))

		assert.Error(t, err)
	})
}

func TestClientMetadata_SupportsSubjectSyntaxType(t *testing.T) {
	t.Run("nothing specified", func(t *testing.T) {
		assert.True(t, ClientMetadata{}.SupportsSubjectSyntaxType(JWKThumbprintSubjectSyntaxType))
	})
	t.Run("exact match", func(t *testing.T) {
		metadata := ClientMetadata{SubjectSyntaxTypesSupported: []string{JWKThumbprintSubjectSyntaxType}}
		assert.True(t, metadata.SupportsSubjectSyntaxType(JWKThumbprintSubjectSyntaxType))
		assert.False(t, metadata.SupportsSubjectSyntaxType("did:web"))
	})
	t.Run("generic did", func(t *testing.T) {
		metadata := ClientMetadata{SubjectSyntaxTypesSupported: []string{"did"}}
		assert.True(t, metadata.SupportsSubjectSyntaxType("did:example"))
		assert.False(t, metadata.SupportsSubjectSyntaxType(JWKThumbprintSubjectSyntaxType))
	})
}

func TestClientMetadata_Marshal(t *testing.T) {
	data, err := json.Marshal(ClientMetadata{AuthorizationSignedResponseAlg: "ES256"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"authorization_signed_response_alg": "ES256"}`, string(data))
}

func TestOAuth2Error_Error(t *testing.T) {
	t.Run("with internal error", func(t *testing.T) {
		internal := errors.New("oops")
		err := OAuth2Error{Code: InvalidRequest, Description: "missing nonce", InternalError: internal, RedirectURI: &url.URL{}}

		assert.EqualError(t, err, "invalid_request - missing nonce - oops")
		assert.ErrorIs(t, err, internal)
	})
	t.Run("code only", func(t *testing.T) {
		assert.EqualError(t, OAuth2Error{Code: AccessDenied}, "access_denied")
	})
}

func TestOAuth2Error_Params(t *testing.T) {
	assert.Equal(t, map[string]string{"error": "access_denied"}, OAuth2Error{Code: AccessDenied}.Params())
	assert.Equal(t, map[string]string{"error": "server_error", "error_description": "failure"}, OAuth2Error{Code: ServerError, Description: "failure"}.Params())
}
