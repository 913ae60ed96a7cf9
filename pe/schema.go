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
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/santhosh-tekuri/jsonschema"
)

const presentationDefinitionSchemaURL = "http://identity.foundation/presentation-exchange/schemas/presentation-definition.json"

//go:embed presentation_definition.schema.json
var presentationDefinitionSchemaData []byte

// PresentationDefinitionSchema is the JSON schema for a presentation definition.
var PresentationDefinitionSchema *jsonschema.Schema

func init() {
	PresentationDefinitionSchema = core.MustCompileSchema(presentationDefinitionSchemaURL, map[string][]byte{
		presentationDefinitionSchemaURL: presentationDefinitionSchemaData,
	})
}

// ParsePresentationDefinition validates the given JSON and parses it into a PresentationDefinition.
// It returns an error if the JSON is invalid or doesn't match the JSON schema for a PresentationDefinition.
func ParsePresentationDefinition(raw []byte) (*PresentationDefinition, error) {
	if err := core.ValidateJSON(PresentationDefinitionSchema, raw); err != nil {
		return nil, fmt.Errorf("presentation definition does not conform to schema: %w", err)
	}
	var result PresentationDefinition
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
