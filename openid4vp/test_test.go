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
	"net/url"
	"testing"

	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/pe"
	"github.com/stretchr/testify/require"
)

const (
	testClientID    = "https%3A%2F%2Fclient.example.org%2Fcb"
	testNonce       = "0S6_WzA2Mj"
	testScope       = "one two three"
	testResponseURI = "https://respond.here"
	testState       = "af0ifjsldkj"
	testDID         = "did:example:123456789abcdefghi"
)

func mustParseURL(str string) *url.URL {
	u, err := url.Parse(str)
	if err != nil {
		panic(err)
	}
	return u
}

func testResponseMode() ResponseMode {
	return DirectPost{ResponseURI: mustParseURL(testResponseURI)}
}

func testClientMetadata() *oauth.ClientMetadata {
	return &oauth.ClientMetadata{
		ClientName:                  "Example Verifier",
		SubjectSyntaxTypesSupported: []string{oauth.JWKThumbprintSubjectSyntaxType, "did:example"},
	}
}

func testDefinition() pe.PresentationDefinition {
	return pe.PresentationDefinition{
		Id: "employee",
		InputDescriptors: []*pe.InputDescriptor{
			{
				Id: "employee_credential",
				Constraints: &pe.Constraints{
					Fields: []pe.Field{{Path: []string{"$.type"}}},
				},
			},
		},
	}
}

func testApprovedClaims() []pe.InputDescriptorMappingObject {
	return []pe.InputDescriptorMappingObject{
		{Id: "employee_credential", Path: "$.verifiableCredential[0]", Format: "ldp_vc"},
	}
}

func testWalletConfig(t *testing.T) WalletConfiguration {
	key, err := crypto.GenerateKey("ES256")
	require.NoError(t, err)
	return WalletConfiguration{
		SubjectSyntaxTypesSupported: []string{oauth.JWKThumbprintSubjectSyntaxType, "did:example"},
		PreferredSubjectSyntaxType:  oauth.JWKThumbprintSubjectSyntaxType,
		DecentralizedIdentifier:     testDID,
		SigningKey:                  key,
		SupportedClientIDSchemes:    []string{oauth.PreRegisteredClientIDScheme, oauth.RedirectURIClientIDScheme, oauth.DIDClientIDScheme},
		VPFormatsSupported:          []string{"jwt_vp", "ldp_vp"},
		HolderInfo:                  &HolderInfo{Email: "email@example.com", Name: "Bob"},
	}
}

func testResolvedParameters(responseMode ResponseMode) ResolvedParameters {
	return ResolvedParameters{
		ClientMetadata: testClientMetadata(),
		ClientIDScheme: oauth.PreRegisteredClientIDScheme,
		ClientID:       testClientID,
		Nonce:          testNonce,
		Scope:          testScope,
		ResponseMode:   responseMode,
		State:          testState,
	}
}

func testIDTokenData() IDTokenData {
	return IDTokenData{
		ResolvedParameters: testResolvedParameters(testResponseMode()),
		IDTokenType:        oauth.AttesterSignedIDTokenType,
	}
}

func testVPTokenData() VPTokenData {
	return VPTokenData{
		ResolvedParameters:     testResolvedParameters(testResponseMode()),
		PresentationDefinition: testDefinition(),
	}
}

func testIDAndVPTokenData() IDAndVPTokenData {
	return IDAndVPTokenData{
		ResolvedParameters:     testResolvedParameters(testResponseMode()),
		IDTokenType:            oauth.SubjectSignedIDTokenType,
		PresentationDefinition: testDefinition(),
	}
}

func idTokenRequestParams() AuthorizationRequest {
	return AuthorizationRequest{
		oauth.ResponseTypeParam: oauth.IDTokenResponseType,
		oauth.ClientIDParam:     testClientID,
		oauth.NonceParam:        testNonce,
		oauth.ResponseModeParam: oauth.DirectPostResponseMode,
		oauth.ResponseURIParam:  testResponseURI,
		oauth.StateParam:        testState,
	}
}

const testDefinitionJSON = `{
  "id": "employee",
  "input_descriptors": [
    {
      "id": "employee_credential",
      "constraints": {
        "fields": [{"path": ["$.type"]}]
      }
    }
  ]
}`
