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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"github.com/nuts-foundation/go-did/vc"
)

// ErrUnsupportedFilter is returned when a filter uses unsupported features.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// ErrNoMatch is returned when the credentials can't satisfy all input descriptors of the presentation definition.
var ErrNoMatch = errors.New("credentials do not satisfy presentation definition")

// Match selects a credential for each input descriptor of the presentation definition.
// It supports:
// - ldp_vc and jwt_vc formats
// - pattern, const and enum only on string fields
// - number, boolean, array and string JSON schema types
// Submission requirements are not evaluated: every input descriptor must be satisfied.
// The resulting PresentationSubmission has paths relative to a presentation containing the returned credentials in order.
// ErrNoMatch is returned when an input descriptor can't be satisfied, ErrUnsupportedFilter when a filter uses unsupported features.
// Other errors can be returned for faulty JSON paths or regex patterns.
func (presentationDefinition PresentationDefinition) Match(credentials []vc.VerifiableCredential) (PresentationSubmission, []vc.VerifiableCredential, error) {
	submission := PresentationSubmission{
		Id:           uuid.NewString(),
		DefinitionId: presentationDefinition.Id,
	}
	documents := make([]interface{}, len(credentials))
	for i, credential := range credentials {
		document, err := credentialDocument(credential)
		if err != nil {
			return PresentationSubmission{}, nil, fmt.Errorf("credential %d: %w", i, err)
		}
		documents[i] = document
	}
	var selected []vc.VerifiableCredential
	for _, inputDescriptor := range presentationDefinition.InputDescriptors {
		found := false
		for i, credential := range credentials {
			if !matchFormat(presentationDefinition.Format, credential) || !matchFormat(inputDescriptor.Format, credential) {
				continue
			}
			isMatch, err := matchConstraints(inputDescriptor.Constraints, documents[i])
			if err != nil {
				return PresentationSubmission{}, nil, err
			}
			if !isMatch {
				continue
			}
			submission.DescriptorMap = append(submission.DescriptorMap, InputDescriptorMappingObject{
				Id:     inputDescriptor.Id,
				Format: credential.Format(),
				Path:   fmt.Sprintf("$.verifiableCredential[%d]", len(selected)),
			})
			selected = append(selected, credential)
			found = true
			break
		}
		if !found {
			return PresentationSubmission{}, nil, fmt.Errorf("%w: no credential for input descriptor %s", ErrNoMatch, inputDescriptor.Id)
		}
	}
	return submission, selected, nil
}

// credentialDocument returns the JSON structure of the credential that JSONPath expressions are evaluated against.
// For JWT credentials these are the JWT claims, with the contents of the "vc" claim also available at the root.
func credentialDocument(credential vc.VerifiableCredential) (interface{}, error) {
	if credential.Format() == vc.JWTCredentialProofFormat {
		parts := strings.Split(credential.Raw(), ".")
		if len(parts) != 3 {
			return nil, errors.New("invalid JWT credential")
		}
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid JWT credential: %w", err)
		}
		claims := make(map[string]interface{})
		if err = json.Unmarshal(payload, &claims); err != nil {
			return nil, fmt.Errorf("invalid JWT credential: %w", err)
		}
		if vcClaim, ok := claims["vc"].(map[string]interface{}); ok {
			for key, value := range vcClaim {
				if _, exists := claims[key]; !exists {
					claims[key] = value
				}
			}
		}
		return claims, nil
	}
	// jsonpath works on interfaces, so convert the VC to an interface
	asJSON, err := json.Marshal(credential)
	if err != nil {
		return nil, err
	}
	var asInterface interface{}
	err = json.Unmarshal(asJSON, &asInterface)
	return asInterface, err
}

// matchFormat checks whether the credential's format is allowed by the format designations.
// Designations that don't mention jwt_vc nor ldp_vc don't restrict credentials.
func matchFormat(format *PresentationDefinitionClaimFormatDesignations, credential vc.VerifiableCredential) bool {
	if format == nil {
		return true
	}
	asMap := map[string]map[string][]string(*format)
	if asMap[vc.JWTCredentialProofFormat] == nil && asMap[vc.JSONLDCredentialProofFormat] == nil {
		return true
	}
	return asMap[credential.Format()] != nil
}

func matchConstraints(constraints *Constraints, document interface{}) (bool, error) {
	if constraints == nil {
		return true, nil
	}
	// a credential must match every field
	for _, field := range constraints.Fields {
		match, err := matchField(field, document)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

func matchField(field Field, document interface{}) (bool, error) {
	// a credential must match one of the paths
	var optionalInvalid int
	for _, path := range field.Path {
		value, err := getValueAtPath(path, document)
		if err != nil {
			return false, err
		}
		if value == nil {
			continue
		}
		if field.Filter == nil {
			return true, nil
		}
		match, err := matchFilter(*field.Filter, value)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
		optionalInvalid++
	}
	// Optional is only valid if all paths returned no results, not if a filter did not match
	if field.Optional != nil && *field.Optional && optionalInvalid == 0 {
		return true, nil
	}
	return false, nil
}

func getValueAtPath(path string, document interface{}) (interface{}, error) {
	value, err := jsonpath.Get(path, document)
	// jsonpath.Get returns some errors if the path is not found, or it has a different type as expected
	if err != nil && (strings.HasPrefix(err.Error(), "unknown key") || strings.HasPrefix(err.Error(), "unsupported value type")) {
		return nil, nil
	}
	return value, err
}

// matchFilter matches the value against the filter.
// Supported schema types: string, number, boolean, array, enum.
// Supported schema properties: const, enum, pattern. These only work for strings.
func matchFilter(filter Filter, value interface{}) (bool, error) {
	if filter.Enum != nil {
		for _, enum := range filter.Enum {
			f := Filter{
				Type:  "string",
				Const: &enum,
			}
			match, _ := matchFilter(f, value)
			if match {
				return true, nil
			}
		}
		return false, nil
	}

	switch typedValue := value.(type) {
	case string:
		if filter.Type != "string" {
			return false, nil
		}
	case float64, int:
		return filter.Type == "number", nil
	case bool:
		return filter.Type == "boolean", nil
	case []interface{}:
		for _, v := range typedValue {
			match, err := matchFilter(filter, v)
			if err != nil {
				return false, err
			}
			if match {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, ErrUnsupportedFilter
	}

	if filter.Const != nil && value != *filter.Const {
		return false, nil
	}
	if filter.Pattern != nil {
		re, err := regexp2.Compile(*filter.Pattern, regexp2.ECMAScript)
		if err != nil {
			return false, err
		}
		return re.MatchString(value.(string))
	}
	return true, nil
}
