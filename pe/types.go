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
// Package pe implements the parts of DIF Presentation Exchange v2 the wallet needs:
// parsing and validating presentation definitions, mapping OAuth2 scopes to known definitions
// and selecting credentials that satisfy a definition.
package pe

import "slices"

// PresentationDefinition describes the credentials a verifier requests.
// See https://identity.foundation/presentation-exchange/#presentation-definition
type PresentationDefinition struct {
	Id                     string                                         `json:"id"`
	Name                   string                                         `json:"name,omitempty"`
	Purpose                string                                         `json:"purpose,omitempty"`
	Format                 *PresentationDefinitionClaimFormatDesignations `json:"format,omitempty"`
	InputDescriptors       []*InputDescriptor                             `json:"input_descriptors"`
	SubmissionRequirements []*SubmissionRequirement                       `json:"submission_requirements,omitempty"`
}

// PresentationDefinitionClaimFormatDesignations maps a claim format (e.g. jwt_vc, ldp_vc) to its algorithm or proof type designations.
type PresentationDefinitionClaimFormatDesignations map[string]map[string][]string

// InputDescriptor describes a single credential that is requested.
type InputDescriptor struct {
	Id          string                                         `json:"id"`
	Name        string                                         `json:"name,omitempty"`
	Purpose     string                                         `json:"purpose,omitempty"`
	Group       []string                                       `json:"group,omitempty"`
	Format      *PresentationDefinitionClaimFormatDesignations `json:"format,omitempty"`
	Constraints *Constraints                                   `json:"constraints,omitempty"`
}

// Constraints lists the fields a credential must contain.
type Constraints struct {
	Fields          []Field `json:"fields,omitempty"`
	LimitDisclosure *string `json:"limit_disclosure,omitempty"`
}

// Field selects a value in a credential by JSONPath and optionally filters it.
type Field struct {
	Id             *string  `json:"id,omitempty"`
	Name           *string  `json:"name,omitempty"`
	Path           []string `json:"path"`
	Purpose        *string  `json:"purpose,omitempty"`
	Filter         *Filter  `json:"filter,omitempty"`
	Optional       *bool    `json:"optional,omitempty"`
	IntentToRetain *bool    `json:"intent_to_retain,omitempty"`
}

// Filter is the subset of JSON schema that can be used to filter field values.
type Filter struct {
	Type    string   `json:"type"`
	Const   *string  `json:"const,omitempty"`
	Enum    []string `json:"enum,omitempty"`
	Pattern *string  `json:"pattern,omitempty"`
}

// SubmissionRequirement groups input descriptors, of which a number must be submitted.
type SubmissionRequirement struct {
	Name       string                   `json:"name,omitempty"`
	Purpose    string                   `json:"purpose,omitempty"`
	Rule       string                   `json:"rule"`
	Count      *int                     `json:"count,omitempty"`
	Min        *int                     `json:"min,omitempty"`
	Max        *int                     `json:"max,omitempty"`
	From       string                   `json:"from,omitempty"`
	FromNested []*SubmissionRequirement `json:"from_nested,omitempty"`
}

// PresentationSubmission describes how the submitted presentation satisfies a presentation definition.
type PresentationSubmission struct {
	Id            string                         `json:"id"`
	DefinitionId  string                         `json:"definition_id"`
	DescriptorMap []InputDescriptorMappingObject `json:"descriptor_map"`
}

// InputDescriptorMappingObject maps an input descriptor to the location of the credential in the submitted presentation.
type InputDescriptorMappingObject struct {
	Id         string                        `json:"id"`
	Path       string                        `json:"path"`
	Format     string                        `json:"format"`
	PathNested *InputDescriptorMappingObject `json:"path_nested,omitempty"`
}

// InputDescriptorByID returns the input descriptor with the given ID, or nil if it doesn't exist.
func (presentationDefinition PresentationDefinition) InputDescriptorByID(id string) *InputDescriptor {
	idx := slices.IndexFunc(presentationDefinition.InputDescriptors, func(descriptor *InputDescriptor) bool {
		return descriptor != nil && descriptor.Id == id
	})
	if idx < 0 {
		return nil
	}
	return presentationDefinition.InputDescriptors[idx]
}
