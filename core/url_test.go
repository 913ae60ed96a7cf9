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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsoluteURL(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		actual, err := ParseAbsoluteURL("https://verifier.example.com/response?x=y")
		require.NoError(t, err)
		assert.Equal(t, "verifier.example.com", actual.Host)
	})
	t.Run("ok - custom scheme", func(t *testing.T) {
		_, err := ParseAbsoluteURL("openid4vp://authorize")
		assert.NoError(t, err)
	})
	t.Run("error - empty", func(t *testing.T) {
		_, err := ParseAbsoluteURL("")
		assert.Error(t, err)
	})
	t.Run("error - whitespace", func(t *testing.T) {
		_, err := ParseAbsoluteURL(" https://example.com")
		assert.Error(t, err)
	})
	t.Run("error - no scheme", func(t *testing.T) {
		_, err := ParseAbsoluteURL("example.com/path")
		assert.EqualError(t, err, "URL missing scheme")
	})
	t.Run("error - no host", func(t *testing.T) {
		_, err := ParseAbsoluteURL("mailto:someone@example.com")
		assert.EqualError(t, err, "URL missing host")
	})
	t.Run("error - invalid", func(t *testing.T) {
		_, err := ParseAbsoluteURL("ht tp://::")
		assert.Error(t, err)
	})
}

func TestParseHTTPURL(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		_, err := ParseHTTPURL("http://localhost:8080/request.jwt")
		assert.NoError(t, err)
	})
	t.Run("error - other scheme", func(t *testing.T) {
		_, err := ParseHTTPURL("ftp://example.com/request.jwt")
		assert.EqualError(t, err, "URL scheme must be http or https")
	})
}
