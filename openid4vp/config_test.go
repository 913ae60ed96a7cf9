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

	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletConfiguration_Validate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, testWalletConfig(t).Validate())
	})
	t.Run("ok - DID subject", func(t *testing.T) {
		config := testWalletConfig(t)
		config.PreferredSubjectSyntaxType = "did:example"

		assert.NoError(t, config.Validate())
	})
	t.Run("no subject syntax types", func(t *testing.T) {
		config := testWalletConfig(t)
		config.SubjectSyntaxTypesSupported = nil

		assert.EqualError(t, config.Validate(), "at least one subject syntax type must be supported")
	})
	t.Run("preferred subject syntax type not supported", func(t *testing.T) {
		config := testWalletConfig(t)
		config.PreferredSubjectSyntaxType = "did:web"

		assert.EqualError(t, config.Validate(), "preferred subject syntax type 'did:web' is not supported")
	})
	t.Run("invalid DID", func(t *testing.T) {
		config := testWalletConfig(t)
		config.PreferredSubjectSyntaxType = "did:example"
		config.DecentralizedIdentifier = "not a DID"

		assert.ErrorContains(t, config.Validate(), "invalid decentralized identifier")
	})
	t.Run("negative TTL", func(t *testing.T) {
		config := testWalletConfig(t)
		config.IDTokenTTL = -1

		assert.Error(t, config.Validate())
	})
	t.Run("unknown client_id_scheme", func(t *testing.T) {
		config := testWalletConfig(t)
		config.SupportedClientIDSchemes = []string{"x509_san_dns"}

		assert.EqualError(t, config.Validate(), "unsupported client_id_scheme: x509_san_dns")
	})
}

func TestWalletConfiguration_SubjectIdentifier(t *testing.T) {
	t.Run("thumbprint", func(t *testing.T) {
		config := testWalletConfig(t)
		expected, _ := crypto.ThumbprintURI(config.SigningKey)

		actual, err := config.SubjectIdentifier()

		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	})
	t.Run("DID", func(t *testing.T) {
		config := testWalletConfig(t)
		config.PreferredSubjectSyntaxType = oauth.DIDSubjectSyntaxTypePrefix

		actual, err := config.SubjectIdentifier()

		require.NoError(t, err)
		assert.Equal(t, testDID, actual)
	})
	t.Run("DID not configured", func(t *testing.T) {
		config := testWalletConfig(t)
		config.PreferredSubjectSyntaxType = "did:example"
		config.DecentralizedIdentifier = ""

		_, err := config.SubjectIdentifier()

		assert.Error(t, err)
	})
	t.Run("thumbprint without key", func(t *testing.T) {
		config := testWalletConfig(t)
		config.SigningKey = nil

		_, err := config.SubjectIdentifier()

		assert.ErrorIs(t, err, ErrMissingSigningConfiguration)
	})
}

func TestWalletConfiguration_supportsClientIDScheme(t *testing.T) {
	config := testWalletConfig(t)
	assert.True(t, config.supportsClientIDScheme(oauth.DIDClientIDScheme))
	assert.False(t, config.supportsClientIDScheme(oauth.EntityIDClientIDScheme))

	config.SupportedClientIDSchemes = nil
	assert.True(t, config.supportsClientIDScheme(oauth.EntityIDClientIDScheme))
}

func TestWalletConfiguration_ttl(t *testing.T) {
	assert.Equal(t, DefaultIDTokenTTL, WalletConfiguration{}.ttl())
	assert.Equal(t, DefaultIDTokenTTL*2, WalletConfiguration{IDTokenTTL: DefaultIDTokenTTL * 2}.ttl())
}
