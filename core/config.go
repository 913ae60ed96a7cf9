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
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is the config file that is loaded when none is specified. It's fine if it doesn't exist.
const DefaultConfigFile = "siop.yaml"

// ConfigFileFlag is the name of the flag (and config key) pointing to the config file.
const ConfigFileFlag = "configfile"

const defaultPrefix = "SIOP_"
const defaultDelimiter = "."
const configValueListSeparator = ","

// LoadConfig loads configuration into target. Sources are applied in the following order, later ones overriding earlier ones:
// the given defaults, the config file, environment variables (prefixed with SIOP_) and finally the command line flags.
// It returns the resulting koanf instance, so callers can print the effective configuration.
func LoadConfig(flags *pflag.FlagSet, defaults interface{}, target interface{}) (*koanf.Koanf, error) {
	configMap := koanf.New(defaultDelimiter)
	if defaults != nil {
		if err := configMap.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return nil, fmt.Errorf("unable to load default config: %w", err)
		}
	}
	if err := loadFromFile(configMap, resolveConfigFilePath(flags)); err != nil {
		return nil, err
	}
	if err := loadFromEnv(configMap); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := configMap.Load(posflag.Provider(flags, defaultDelimiter, configMap), nil); err != nil {
			return nil, fmt.Errorf("unable to load flags: %w", err)
		}
	}
	if err := configMap.UnmarshalWithConf("", target, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return configMap, nil
}

// resolveConfigFilePath returns the config file path from the flags or environment, or the default if neither specifies it.
func resolveConfigFilePath(flags *pflag.FlagSet) string {
	if flags != nil {
		if flag := flags.Lookup(ConfigFileFlag); flag != nil && flag.Changed {
			return flag.Value.String()
		}
	}
	if value, ok := os.LookupEnv(defaultPrefix + strings.ToUpper(ConfigFileFlag)); ok {
		return value
	}
	return DefaultConfigFile
}

func loadFromFile(configMap *koanf.Koanf, filepath string) error {
	if filepath == "" {
		return nil
	}
	if err := configMap.Load(file.Provider(filepath), yaml.Parser()); err != nil {
		// a missing default config file is fine, a missing explicitly specified one isn't
		if errors.Is(err, os.ErrNotExist) && filepath == DefaultConfigFile {
			return nil
		}
		return fmt.Errorf("unable to load config file (%s): %w", filepath, err)
	}
	return nil
}

func loadFromEnv(configMap *koanf.Koanf) error {
	e := env.ProviderWithValue(defaultPrefix, defaultDelimiter, func(rawKey string, rawValue string) (string, interface{}) {
		key := strings.Replace(strings.ToLower(strings.TrimPrefix(rawKey, defaultPrefix)), "_", defaultDelimiter, -1)

		// Support multiple values separated by a comma
		if strings.Contains(rawValue, configValueListSeparator) {
			values := strings.Split(rawValue, configValueListSeparator)
			for i, value := range values {
				values[i] = strings.TrimSpace(value)
			}
			return key, values
		}

		return key, rawValue
	})
	// errors can't occur for this provider
	return configMap.Load(e, nil)
}
