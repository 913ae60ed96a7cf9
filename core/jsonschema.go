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

package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/loader"
)

func init() {
	// By default, it loads from filesystem or network, but that sounds unsafe.
	// All schemas are embedded and registered as resources, so loading is never needed.
	loader.Load = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("refusing to load unknown schema: %s", url)
	}
}

// MustCompileSchema compiles the schema identified by schemaURL, resolving references from the given resources (URL to JSON document).
// It panics if the schema can't be compiled, so it should only be called with embedded schemas.
func MustCompileSchema(schemaURL string, resources map[string][]byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	for u, data := range resources {
		if err := compiler.AddResource(u, bytes.NewReader(data)); err != nil {
			panic(fmt.Errorf("error compiling schema %s: %w", u, err))
		}
	}
	return compiler.MustCompile(schemaURL)
}

// ValidateJSON validates the given JSON document against the schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	return schema.Validate(bytes.NewReader(data))
}
