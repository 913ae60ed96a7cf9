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
package pe

import (
	"testing"
	"time"

	"github.com/nuts-foundation/go-did/vc"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ldpCredential = `{
  "@context": ["https://www.w3.org/2018/credentials/v1"],
  "id": "did:example:issuer#1",
  "type": ["VerifiableCredential", "OrganizationCredential"],
  "issuer": "did:example:issuer",
  "issuanceDate": "2023-01-01T00:00:00Z",
  "credentialSubject": {
    "id": "did:example:holder",
    "organization": {"name": "Caresoft", "city": "Amsterdam"},
    "employees": 12,
    "active": true
  },
  "proof": {"type": "JsonWebSignature2020"}
}`

func parseCredential(t *testing.T, raw string) vc.VerifiableCredential {
	credential, err := vc.ParseVerifiableCredential(raw)
	require.NoError(t, err)
	return *credential
}

func jwtCredential(t *testing.T) vc.VerifiableCredential {
	key, err := crypto.GenerateKey("ES256")
	require.NoError(t, err)
	token, err := crypto.NewJOSE().SignJWT(map[string]interface{}{
		"iss": "did:example:issuer",
		"sub": "did:example:holder",
		"jti": "did:example:issuer#2",
		"nbf": time.Now().Unix(),
		"vc": map[string]interface{}{
			"@context":          []interface{}{"https://www.w3.org/2018/credentials/v1"},
			"type":              []interface{}{"VerifiableCredential", "EmployeeCredential"},
			"credentialSubject": map[string]interface{}{"role": "nurse"},
		},
	}, map[string]interface{}{"typ": "JWT"}, key)
	require.NoError(t, err)
	return parseCredential(t, token)
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func definitionWithField(field Field) PresentationDefinition {
	return PresentationDefinition{
		Id: "definition",
		InputDescriptors: []*InputDescriptor{
			{Id: "organization", Constraints: &Constraints{Fields: []Field{field}}},
		},
	}
}

func TestPresentationDefinition_Match(t *testing.T) {
	organization := parseCredential(t, ldpCredential)
	employee := jwtCredential(t)

	t.Run("ok - pattern", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.credentialSubject.organization.city"},
			Filter: &Filter{Type: "string", Pattern: stringPtr("^Amster")},
		})

		submission, selected, err := definition.Match([]vc.VerifiableCredential{employee, organization})

		require.NoError(t, err)
		require.Len(t, selected, 1)
		assert.Equal(t, "definition", submission.DefinitionId)
		assert.NotEmpty(t, submission.Id)
		require.Len(t, submission.DescriptorMap, 1)
		assert.Equal(t, InputDescriptorMappingObject{Id: "organization", Format: "ldp_vc", Path: "$.verifiableCredential[0]"}, submission.DescriptorMap[0])
	})
	t.Run("ok - JWT credential via vc claim", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.vc.credentialSubject.role"},
			Filter: &Filter{Type: "string", Const: stringPtr("nurse")},
		})

		submission, selected, err := definition.Match([]vc.VerifiableCredential{organization, employee})

		require.NoError(t, err)
		require.Len(t, selected, 1)
		assert.Equal(t, "jwt_vc", submission.DescriptorMap[0].Format)
	})
	t.Run("ok - JWT credential via root", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.credentialSubject.role"},
			Filter: &Filter{Type: "string", Enum: []string{"doctor", "nurse"}},
		})

		_, selected, err := definition.Match([]vc.VerifiableCredential{employee})

		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
	t.Run("ok - number and boolean types", func(t *testing.T) {
		definition := PresentationDefinition{
			Id: "definition",
			InputDescriptors: []*InputDescriptor{
				{Id: "organization", Constraints: &Constraints{Fields: []Field{
					{Path: []string{"$.credentialSubject.employees"}, Filter: &Filter{Type: "number"}},
					{Path: []string{"$.credentialSubject.active"}, Filter: &Filter{Type: "boolean"}},
				}}},
			},
		}

		_, selected, err := definition.Match([]vc.VerifiableCredential{organization})

		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
	t.Run("ok - array values", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.type"},
			Filter: &Filter{Type: "string", Const: stringPtr("OrganizationCredential")},
		})

		_, selected, err := definition.Match([]vc.VerifiableCredential{organization})

		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
	t.Run("ok - optional field that is absent", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:     []string{"$.credentialSubject.nonexistent"},
			Optional: boolPtr(true),
		})

		_, selected, err := definition.Match([]vc.VerifiableCredential{organization})

		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
	t.Run("ok - no constraints", func(t *testing.T) {
		definition := PresentationDefinition{Id: "definition", InputDescriptors: []*InputDescriptor{{Id: "any"}}}

		_, selected, err := definition.Match([]vc.VerifiableCredential{organization})

		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
	t.Run("error - format excludes credential", func(t *testing.T) {
		definition := definitionWithField(Field{Path: []string{"$.credentialSubject.organization.city"}})
		definition.Format = &PresentationDefinitionClaimFormatDesignations{"jwt_vc": {"alg": {"ES256"}}}

		_, _, err := definition.Match([]vc.VerifiableCredential{organization})

		assert.ErrorIs(t, err, ErrNoMatch)
	})
	t.Run("error - filter does not match", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.credentialSubject.organization.city"},
			Filter: &Filter{Type: "string", Const: stringPtr("Utrecht")},
		})

		_, _, err := definition.Match([]vc.VerifiableCredential{organization})

		assert.ErrorIs(t, err, ErrNoMatch)
	})
	t.Run("error - invalid pattern", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.credentialSubject.organization.city"},
			Filter: &Filter{Type: "string", Pattern: stringPtr("[")},
		})

		_, _, err := definition.Match([]vc.VerifiableCredential{organization})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoMatch)
	})
	t.Run("error - object filter", func(t *testing.T) {
		definition := definitionWithField(Field{
			Path:   []string{"$.credentialSubject.organization"},
			Filter: &Filter{Type: "object"},
		})

		_, _, err := definition.Match([]vc.VerifiableCredential{organization})

		assert.ErrorIs(t, err, ErrUnsupportedFilter)
	})
}
