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
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/santhosh-tekuri/jsonschema"
)

const clientMetadataSchemaURL = "https://openid.net/schemas/openid4vp/client-metadata.json"

//go:embed client_metadata.json
var clientMetadataSchemaData []byte

// ClientMetadataSchema is the JSON schema client metadata documents must conform to.
var ClientMetadataSchema *jsonschema.Schema

func init() {
	ClientMetadataSchema = core.MustCompileSchema(clientMetadataSchemaURL, map[string][]byte{
		clientMetadataSchemaURL: clientMetadataSchemaData,
	})
}

// ParseClientMetadata validates the given JSON document against the client metadata schema and unmarshals it.
func ParseClientMetadata(data []byte) (*ClientMetadata, error) {
	if err := core.ValidateJSON(ClientMetadataSchema, data); err != nil {
		return nil, fmt.Errorf("client metadata does not conform to schema: %w", err)
	}
	var result ClientMetadata
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal client metadata: %w", err)
	}
	return &result, nil
}
