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
	"testing"

	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("ID token request", func(t *testing.T) {
		validated, err := Validate(idTokenRequestParams())

		require.NoError(t, err)
		request, ok := validated.(IDTokenRequest)
		require.True(t, ok)
		assert.Equal(t, oauth.SubjectSignedIDTokenType, request.IDTokenType)
		assert.Equal(t, testClientID, request.ClientID)
		assert.Equal(t, testNonce, request.Nonce)
		assert.Equal(t, testState, request.State)
		assert.Equal(t, oauth.PreRegisteredClientIDScheme, request.ClientIDScheme)
		assert.Equal(t, DirectPost{ResponseURI: mustParseURL(testResponseURI)}, request.ResponseMode)
		assert.Nil(t, request.ClientMetadataSource)
	})
	t.Run("VP token request with presentation definition by value", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.PresentationDefParam] = testDefinitionJSON

		validated, err := Validate(params)

		require.NoError(t, err)
		request, ok := validated.(VPTokenRequest)
		require.True(t, ok)
		source, ok := request.PresentationDefinitionSource.(PresentationDefinitionByValue)
		require.True(t, ok)
		assert.Equal(t, "employee", source.Definition.Id)
	})
	t.Run("VP token request with presentation definition as object (request object)", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.PresentationDefParam] = map[string]interface{}{
			"id": "employee",
			"input_descriptors": []interface{}{
				map[string]interface{}{"id": "employee_credential"},
			},
		}

		validated, err := Validate(params)

		require.NoError(t, err)
		source := validated.(VPTokenRequest).PresentationDefinitionSource.(PresentationDefinitionByValue)
		assert.Equal(t, "employee_credential", source.Definition.InputDescriptors[0].Id)
	})
	t.Run("VP token request with presentation definition by reference", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.PresentationDefUriParam] = "https://verifier.example.com/pd"

		validated, err := Validate(params)

		require.NoError(t, err)
		assert.Equal(t, PresentationDefinitionByReference{URL: "https://verifier.example.com/pd"}, validated.(VPTokenRequest).PresentationDefinitionSource)
	})
	t.Run("VP token request with presentation definition implied by scope", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.ScopeParam] = testScope

		validated, err := Validate(params)

		require.NoError(t, err)
		assert.Equal(t, PresentationDefinitionImplied{Scope: testScope}, validated.(VPTokenRequest).PresentationDefinitionSource)
		assert.Equal(t, testScope, validated.Parameters().Scope)
	})
	t.Run("ID and VP token request", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = "vp_token id_token"
		params[oauth.IDTokenTypeParam] = "attester_signed subject_signed"
		params[oauth.ScopeParam] = testScope

		validated, err := Validate(params)

		require.NoError(t, err)
		request, ok := validated.(IDAndVPTokenRequest)
		require.True(t, ok)
		assert.Equal(t, oauth.AttesterSignedIDTokenType, request.IDTokenType)
		assert.Equal(t, PresentationDefinitionImplied{Scope: testScope}, request.PresentationDefinitionSource)
	})
	t.Run("client metadata by value", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ClientMetadataParam] = `{"client_name":"Example Verifier","subject_syntax_types_supported":["did:example"]}`

		validated, err := Validate(params)

		require.NoError(t, err)
		source, ok := validated.Parameters().ClientMetadataSource.(ClientMetadataByValue)
		require.True(t, ok)
		assert.Equal(t, "Example Verifier", source.Metadata.ClientName)
	})
	t.Run("client metadata by reference", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ClientMetadataURIParam] = "https://verifier.example.com/metadata"

		validated, err := Validate(params)

		require.NoError(t, err)
		assert.Equal(t, ClientMetadataByReference{URL: "https://verifier.example.com/metadata"}, validated.Parameters().ClientMetadataSource)
	})
	t.Run("response mode", func(t *testing.T) {
		t.Run("defaults to fragment", func(t *testing.T) {
			params := idTokenRequestParams()
			delete(params, oauth.ResponseModeParam)
			params[oauth.RedirectURIParam] = "https://verifier.example.com/cb"

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, Fragment{RedirectURI: mustParseURL("https://verifier.example.com/cb")}, validated.Parameters().ResponseMode)
		})
		t.Run("query", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ResponseModeParam] = oauth.QueryResponseMode
			params[oauth.RedirectURIParam] = "openid://cb"

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, Query{RedirectURI: mustParseURL("openid://cb")}, validated.Parameters().ResponseMode)
		})
		t.Run("fragment uses URL client_id as redirect_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDParam] = "https://verifier.example.com/cb"
			params[oauth.ResponseModeParam] = oauth.FragmentResponseMode

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, Fragment{RedirectURI: mustParseURL("https://verifier.example.com/cb")}, validated.Parameters().ResponseMode)
			assert.Equal(t, oauth.RedirectURIClientIDScheme, validated.Parameters().ClientIDScheme)
		})
		t.Run("direct_post.jwt falls back to redirect_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			delete(params, oauth.ResponseURIParam)
			params[oauth.ResponseModeParam] = oauth.DirectPostJWTResponseMode
			params[oauth.RedirectURIParam] = testResponseURI

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, DirectPostJWT{ResponseURI: mustParseURL(testResponseURI)}, validated.Parameters().ResponseMode)
		})
		t.Run("none", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ResponseModeParam] = "none"

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, NoResponseMode{}, validated.Parameters().ResponseMode)
		})
		t.Run("error - unknown", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ResponseModeParam] = "form_post"

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrInvalidResponseMode)
		})
		t.Run("error - direct_post without response_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			delete(params, oauth.ResponseURIParam)

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrMissingRequiredField)
			assert.ErrorContains(t, err, "response_uri")
		})
		t.Run("error - invalid response_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ResponseURIParam] = "/relative"

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrInvalidResponseMode)
		})
		t.Run("error - fragment without redirect_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			delete(params, oauth.ResponseModeParam)

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrMissingRequiredField)
			assert.ErrorContains(t, err, "redirect_uri")
		})
	})
	t.Run("client_id_scheme", func(t *testing.T) {
		t.Run("derived from DID client_id", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDParam] = "did:web:verifier.example.com"

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, oauth.DIDClientIDScheme, validated.Parameters().ClientIDScheme)
		})
		t.Run("explicit parameter wins", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDParam] = "https://verifier.example.com"
			params[oauth.ClientIDSchemeParam] = oauth.EntityIDClientIDScheme

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, oauth.EntityIDClientIDScheme, validated.Parameters().ClientIDScheme)
		})
		t.Run("redirect_uri scheme requires client_id to equal response_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDParam] = testResponseURI

			validated, err := Validate(params)

			require.NoError(t, err)
			assert.Equal(t, oauth.RedirectURIClientIDScheme, validated.Parameters().ClientIDScheme)
		})
		t.Run("error - redirect_uri scheme with different response_uri", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDParam] = "https://verifier.example.com"

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrInvalidClientID)
		})
		t.Run("error - invalid DID", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDSchemeParam] = oauth.DIDClientIDScheme

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrInvalidClientID)
		})
		t.Run("error - unknown scheme", func(t *testing.T) {
			params := idTokenRequestParams()
			params[oauth.ClientIDSchemeParam] = "x509_san_dns"

			_, err := Validate(params)

			assert.ErrorIs(t, err, ErrUnsupportedClientIDScheme)
		})
	})
	t.Run("error - no response type", func(t *testing.T) {
		params := idTokenRequestParams()
		delete(params, oauth.ResponseTypeParam)

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrUnsupportedResponseType)
	})
	t.Run("error - unsupported response type", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = "code"

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrUnsupportedResponseType)
	})
	t.Run("error - missing client_id", func(t *testing.T) {
		params := idTokenRequestParams()
		delete(params, oauth.ClientIDParam)

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrMissingRequiredField)
		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, oauth.ClientIDParam, validationErr.Field)
	})
	t.Run("error - missing nonce", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.NonceParam] = ""

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrMissingRequiredField)
		assert.EqualError(t, err, "invalid authorization request: missing required field (nonce)")
	})
	t.Run("error - nonce is not a string", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.NonceParam] = 42.0

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})
	t.Run("error - unsupported id_token_type", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.IDTokenTypeParam] = "self_issued"

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrUnsupportedIDTokenType)
	})
	t.Run("error - presentation definition and URI", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.PresentationDefParam] = testDefinitionJSON
		params[oauth.PresentationDefUriParam] = "https://verifier.example.com/pd"

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrInvalidSource)
		assert.ErrorContains(t, err, "mutually exclusive")
	})
	t.Run("error - invalid presentation definition", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType
		params[oauth.PresentationDefParam] = `{"id": "no descriptors"}`

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrInvalidSource)
	})
	t.Run("error - no presentation definition source", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ResponseTypeParam] = oauth.VPTokenResponseType

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrMissingRequiredField)
		assert.ErrorContains(t, err, "presentation_definition")
	})
	t.Run("error - client metadata and URI", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ClientMetadataParam] = `{}`
		params[oauth.ClientMetadataURIParam] = "https://verifier.example.com/metadata"

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrInvalidSource)
	})
	t.Run("error - invalid client metadata", func(t *testing.T) {
		params := idTokenRequestParams()
		params[oauth.ClientMetadataParam] = `{"jwks_uri": 1}`

		_, err := Validate(params)

		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func TestAuthorizationRequest_merge(t *testing.T) {
	t.Run("request object claims take precedence", func(t *testing.T) {
		outer := AuthorizationRequest{oauth.ClientIDParam: testClientID, oauth.NonceParam: "outer"}

		merged, err := outer.merge(AuthorizationRequest{oauth.NonceParam: testNonce})

		require.NoError(t, err)
		assert.Equal(t, testNonce, merged[oauth.NonceParam])
		assert.Equal(t, testClientID, merged[oauth.ClientIDParam])
		assert.Equal(t, "outer", outer[oauth.NonceParam])
	})
	t.Run("error - client_id mismatch", func(t *testing.T) {
		outer := AuthorizationRequest{oauth.ClientIDParam: testClientID}

		_, err := outer.merge(AuthorizationRequest{oauth.ClientIDParam: "other"})

		assert.ErrorIs(t, err, ErrInvalidRequestObject)
	})
}
