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
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"
	// LogFieldURL is the log field key for a remote URL that is fetched or posted to.
	LogFieldURL = "url"
	// LogFieldClientID is the log field key for the client_id of the verifier that sent the authorization request.
	LogFieldClientID = "clientID"
	// LogFieldResponseMode is the log field key for the response mode of an authorization response.
	LogFieldResponseMode = "responseMode"
	// LogFieldStage is the log field key for the pipeline stage that failed.
	LogFieldStage = "stage"
)

// ConfigureLogger sets the level and formatter of the standard logger.
// Supported formats are "text" and "json".
func ConfigureLogger(verbosity string, format string) error {
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	switch format {
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid loggerformat: %s", format)
	}
	return nil
}
