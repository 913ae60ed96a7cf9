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
	"encoding/json"
	"fmt"
	"os"
)

// DefinitionResolver is a store for presentation definitions.
// It maps OAuth2 scopes to presentation definitions that are known to the wallet upfront,
// so verifiers can request credentials by scope instead of sending a definition.
// It's read-only after loading, so it's safe for concurrent use.
type DefinitionResolver struct {
	// mapping holds the oauth scope to presentation definition mapping
	mapping map[string]PresentationDefinition
}

// NewDefinitionResolver creates a DefinitionResolver from the given scope to definition mapping.
func NewDefinitionResolver(mapping map[string]PresentationDefinition) *DefinitionResolver {
	copied := make(map[string]PresentationDefinition, len(mapping))
	for scope, definition := range mapping {
		copied[scope] = definition
	}
	return &DefinitionResolver{mapping: copied}
}

// LoadFromFile loads the mapping from the given file, which contains a JSON object with scopes as keys and definitions as values.
// Every definition is validated against the presentation definition JSON schema.
func (s *DefinitionResolver) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var rawMapping map[string]json.RawMessage
	if err = json.Unmarshal(data, &rawMapping); err != nil {
		return fmt.Errorf("unable to parse presentation definition mapping: %w", err)
	}
	mapping := make(map[string]PresentationDefinition, len(rawMapping))
	for scope, raw := range rawMapping {
		definition, err := ParsePresentationDefinition(raw)
		if err != nil {
			return fmt.Errorf("invalid presentation definition for scope %s: %w", scope, err)
		}
		mapping[scope] = *definition
	}
	s.mapping = mapping
	return nil
}

// ByScope returns the presentation definition for the given scope.
// Returns nil if it doesn't exist or if no mappings are loaded.
func (s *DefinitionResolver) ByScope(scope string) *PresentationDefinition {
	if s == nil {
		return nil
	}
	mapping, ok := s.mapping[scope]
	if !ok {
		return nil
	}
	return &mapping
}

// Len returns the number of scopes with a known presentation definition.
func (s *DefinitionResolver) Len() int {
	if s == nil {
		return 0
	}
	return len(s.mapping)
}
