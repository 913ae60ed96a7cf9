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
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// RequestSource is where the request object comes from: RequestByValue or RequestByReference.
type RequestSource interface {
	requestSource()
}

// RequestByValue is a request object passed in the request parameter.
type RequestByValue struct {
	JWT string
}

// RequestByReference is a request object that must be fetched from the request_uri.
type RequestByReference struct {
	URL string
}

func (RequestByValue) requestSource()     {}
func (RequestByReference) requestSource() {}

// ClientMetadataSource is where the verifier's metadata comes from: ClientMetadataByValue or ClientMetadataByReference.
type ClientMetadataSource interface {
	clientMetadataSource()
}

// ClientMetadataByValue is client metadata passed in the client_metadata parameter.
type ClientMetadataByValue struct {
	Metadata oauth.ClientMetadata
}

// ClientMetadataByReference is client metadata that must be fetched from the client_metadata_uri.
type ClientMetadataByReference struct {
	URL string
}

func (ClientMetadataByValue) clientMetadataSource()     {}
func (ClientMetadataByReference) clientMetadataSource() {}

// PresentationDefinitionSource is where the presentation definition comes from:
// PresentationDefinitionByValue, PresentationDefinitionByReference or PresentationDefinitionImplied.
type PresentationDefinitionSource interface {
	presentationDefinitionSource()
}

// PresentationDefinitionByValue is a presentation definition passed in the presentation_definition parameter.
type PresentationDefinitionByValue struct {
	Definition pe.PresentationDefinition
}

// PresentationDefinitionByReference is a presentation definition that must be fetched from the presentation_definition_uri.
type PresentationDefinitionByReference struct {
	URL string
}

// PresentationDefinitionImplied is a presentation definition the wallet knows by the requested scope.
type PresentationDefinitionImplied struct {
	Scope string
}

func (PresentationDefinitionByValue) presentationDefinitionSource()     {}
func (PresentationDefinitionByReference) presentationDefinitionSource() {}
func (PresentationDefinitionImplied) presentationDefinitionSource()     {}
