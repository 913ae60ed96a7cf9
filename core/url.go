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
	"errors"
	"net/url"
	"strings"
)

// ParseAbsoluteURL parses the given input string as URL and asserts that it has a scheme and a host.
// Relative references and opaque URIs (e.g. "mailto:") are rejected, since they can't be fetched or posted to.
func ParseAbsoluteURL(input string) (*url.URL, error) {
	if strings.TrimSpace(input) != input || input == "" {
		return nil, errors.New("URL is empty or contains surrounding whitespace")
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" {
		return nil, errors.New("URL missing scheme")
	}
	if parsed.Host == "" {
		return nil, errors.New("URL missing host")
	}
	return parsed, nil
}

// ParseHTTPURL acts like ParseAbsoluteURL, but only accepts the http and https schemes.
func ParseHTTPURL(input string) (*url.URL, error) {
	parsed, err := ParseAbsoluteURL(input)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("URL scheme must be http or https")
	}
	return parsed, nil
}
