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
	"context"
	"net/http"

	"github.com/nuts-foundation/siop-openid4vp/pe"
)

// Fetcher retrieves documents passed by reference.
type Fetcher interface {
	// Fetch GETs the document at the given URL and returns its body. A single attempt is made.
	Fetch(ctx context.Context, url string, accept string) ([]byte, error)
}

// Poster delivers authorization responses to the verifier.
type Poster interface {
	// Post sends the request and returns the body of a 2xx response.
	Post(request *http.Request) ([]byte, error)
	// Check sends the request and returns the value of the given key in the JSON body of a 2xx response.
	Check(key string, request *http.Request) (string, bool, error)
}

// DefinitionStore holds the presentation definitions the wallet knows by scope.
type DefinitionStore interface {
	// ByScope returns the presentation definition for the given scope, or nil if it's unknown.
	ByScope(scope string) *pe.PresentationDefinition
}
