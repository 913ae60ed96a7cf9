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
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// ClientConsent is the holder's decision on an authorization request:
// IDTokenConsensus, VPTokenConsensus, IDAndVPTokenConsensus or NegativeConsensus.
type ClientConsent interface {
	clientConsent()
}

// IDTokenConsensus approves an ID token request with the given (signed) ID token.
type IDTokenConsensus struct {
	IDToken string
}

// VPTokenConsensus approves a VP token request. ApprovedClaims maps the input descriptors of the
// presentation definition onto the verifiable presentation(s) in VPToken.
type VPTokenConsensus struct {
	VPToken        string
	ApprovedClaims []pe.InputDescriptorMappingObject
}

// IDAndVPTokenConsensus approves a combined ID and VP token request.
type IDAndVPTokenConsensus struct {
	IDToken        string
	VPToken        string
	ApprovedClaims []pe.InputDescriptorMappingObject
}

// NegativeConsensus denies the request. The message is reported to the verifier.
type NegativeConsensus struct {
	Message string
}

func (IDTokenConsensus) clientConsent()      {}
func (VPTokenConsensus) clientConsent()      {}
func (IDAndVPTokenConsensus) clientConsent() {}
func (NegativeConsensus) clientConsent()     {}
