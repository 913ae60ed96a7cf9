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
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
)

// DefaultIDTokenTTL is the validity of issued ID tokens and JWT secured responses if none is configured.
const DefaultIDTokenTTL = 10 * time.Minute

// HolderInfo contains claims about the holder that are added to issued ID tokens.
type HolderInfo struct {
	Email string
	Name  string
}

// WalletConfiguration describes the capabilities of the wallet.
// It's constructed once at startup and must not be modified afterwards, so it can be shared by concurrent flows.
type WalletConfiguration struct {
	// SubjectSyntaxTypesSupported lists the subject syntax types of the wallet,
	// e.g. urn:ietf:params:oauth:jwk-thumbprint or did:web.
	SubjectSyntaxTypesSupported []string
	// PreferredSubjectSyntaxType determines how the wallet identifies itself as subject/issuer of tokens.
	PreferredSubjectSyntaxType string
	// DecentralizedIdentifier is the DID of the wallet, used when the preferred subject syntax type is a DID method.
	DecentralizedIdentifier string
	// SigningKey is the private key used to sign ID tokens and JWT secured responses.
	SigningKey jwk.Key
	// IDTokenTTL is the validity of issued ID tokens.
	IDTokenTTL time.Duration
	// PresentationDefinitionURISupported indicates whether presentation_definition_uri may be used by verifiers.
	PresentationDefinitionURISupported bool
	// SupportedClientIDSchemes lists the accepted client_id_scheme values. An empty list accepts all schemes.
	SupportedClientIDSchemes []string
	// VPFormatsSupported lists the VP formats the wallet can produce, e.g. jwt_vp or ldp_vp.
	VPFormatsSupported []string
	// KnownPresentationDefinitions holds the presentation definitions the wallet knows by scope.
	KnownPresentationDefinitions DefinitionStore
	// VerifyRequestObjects enables verification of request object signatures against the client metadata's jwks.
	VerifyRequestObjects bool
	// HolderInfo is optional.
	HolderInfo *HolderInfo
}

// Validate checks the configuration for consistency.
func (c WalletConfiguration) Validate() error {
	if len(c.SubjectSyntaxTypesSupported) == 0 {
		return errors.New("at least one subject syntax type must be supported")
	}
	if !slices.Contains(c.SubjectSyntaxTypesSupported, c.PreferredSubjectSyntaxType) {
		return fmt.Errorf("preferred subject syntax type '%s' is not supported", c.PreferredSubjectSyntaxType)
	}
	if isDIDSyntaxType(c.PreferredSubjectSyntaxType) {
		if _, err := did.ParseDID(c.DecentralizedIdentifier); err != nil {
			return fmt.Errorf("invalid decentralized identifier: %w", err)
		}
	}
	if c.IDTokenTTL < 0 {
		return errors.New("ID token TTL must be positive")
	}
	for _, scheme := range c.SupportedClientIDSchemes {
		switch scheme {
		case oauth.PreRegisteredClientIDScheme, oauth.RedirectURIClientIDScheme, oauth.EntityIDClientIDScheme, oauth.DIDClientIDScheme:
		default:
			return fmt.Errorf("unsupported client_id_scheme: %s", scheme)
		}
	}
	return nil
}

// SubjectIdentifier returns the identifier of the wallet as subject of issued tokens:
// the DID, or the JWK thumbprint URI of the signing key.
func (c WalletConfiguration) SubjectIdentifier() (string, error) {
	if isDIDSyntaxType(c.PreferredSubjectSyntaxType) {
		if c.DecentralizedIdentifier == "" {
			return "", errors.New("no decentralized identifier configured")
		}
		return c.DecentralizedIdentifier, nil
	}
	if c.SigningKey == nil {
		return "", ErrMissingSigningConfiguration
	}
	return crypto.ThumbprintURI(c.SigningKey)
}

func (c WalletConfiguration) ttl() time.Duration {
	if c.IDTokenTTL == 0 {
		return DefaultIDTokenTTL
	}
	return c.IDTokenTTL
}

func (c WalletConfiguration) supportsClientIDScheme(scheme string) bool {
	return len(c.SupportedClientIDSchemes) == 0 || slices.Contains(c.SupportedClientIDSchemes, scheme)
}

// usesThumbprint returns true if the wallet identifies itself by JWK thumbprint.
func (c WalletConfiguration) usesThumbprint() bool {
	return !isDIDSyntaxType(c.PreferredSubjectSyntaxType)
}

func isDIDSyntaxType(syntaxType string) bool {
	return syntaxType == oauth.DIDSubjectSyntaxTypePrefix || strings.HasPrefix(syntaxType, oauth.DIDSubjectSyntaxTypePrefix+":")
}
