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

package cmd

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp"
	"github.com/nuts-foundation/siop-openid4vp/pe"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Config holds the configuration of the wallet CLI.
type Config struct {
	ConfigFile   string       `koanf:"configfile"`
	Verbosity    string       `koanf:"verbosity"`
	LoggerFormat string       `koanf:"loggerformat"`
	StrictMode   bool         `koanf:"strictmode"`
	HTTP         HTTPConfig   `koanf:"http"`
	Wallet       WalletConfig `koanf:"wallet"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	Cache   CacheConfig   `koanf:"cache"`
}

// CacheConfig configures caching of documents fetched by reference.
type CacheConfig struct {
	MaxBytes int `koanf:"maxbytes"`
}

// WalletConfig describes the wallet's identity and capabilities.
type WalletConfig struct {
	SubjectSyntaxTypes                 []string      `koanf:"subjectsyntaxtypes"`
	PreferredSubjectSyntaxType         string        `koanf:"preferredsubjectsyntaxtype"`
	DID                                string        `koanf:"did"`
	IDTokenTTL                         time.Duration `koanf:"idtokenttl"`
	PresentationDefinitionURISupported bool          `koanf:"presentationdefinitionurisupported"`
	SigningKeyFile                     string        `koanf:"signingkeyfile"`
	ClientIDSchemes                    []string      `koanf:"clientidschemes"`
	VPFormats                          []string      `koanf:"vpformats"`
	DefinitionsFile                    string        `koanf:"definitionsfile"`
	VerifyRequestObjects               bool          `koanf:"verifyrequestobjects"`
	Holder                             HolderConfig  `koanf:"holder"`
}

// HolderConfig contains optional claims about the holder.
type HolderConfig struct {
	Name  string `koanf:"name"`
	Email string `koanf:"email"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Verbosity:    "info",
		LoggerFormat: "text",
		StrictMode:   true,
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
			Cache:   CacheConfig{MaxBytes: 10 * 1024 * 1024},
		},
		Wallet: WalletConfig{
			SubjectSyntaxTypes:         []string{oauth.JWKThumbprintSubjectSyntaxType},
			PreferredSubjectSyntaxType: oauth.JWKThumbprintSubjectSyntaxType,
			IDTokenTTL:                 openid4vp.DefaultIDTokenTTL,
			VPFormats:                  []string{"jwt_vp", "ldp_vp"},
			VerifyRequestObjects:       true,
		},
	}
}

// FlagSet returns the flags for all configuration keys.
func FlagSet() *pflag.FlagSet {
	defs := DefaultConfig()
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.String(core.ConfigFileFlag, core.DefaultConfigFile, "Wallet config file")
	flags.String("verbosity", defs.Verbosity, "Log level (trace, debug, info, warn, error)")
	flags.String("loggerformat", defs.LoggerFormat, "Log format (text, json)")
	flags.Bool("strictmode", defs.StrictMode, "When enabled, only HTTPS is allowed for outbound requests.")
	flags.Duration("http.timeout", defs.HTTP.Timeout, "Timeout of outbound HTTP requests.")
	flags.Int("http.cache.maxbytes", defs.HTTP.Cache.MaxBytes, "Maximum size of cached documents fetched by reference. 0 disables caching.")
	flags.StringSlice("wallet.subjectsyntaxtypes", defs.Wallet.SubjectSyntaxTypes, "Subject syntax types supported by the wallet.")
	flags.String("wallet.preferredsubjectsyntaxtype", defs.Wallet.PreferredSubjectSyntaxType, "Subject syntax type used to identify the wallet in issued tokens.")
	flags.String("wallet.did", defs.Wallet.DID, "DID of the wallet, used when the preferred subject syntax type is a DID method.")
	flags.Duration("wallet.idtokenttl", defs.Wallet.IDTokenTTL, "Validity of issued ID tokens and JWT secured responses.")
	flags.Bool("wallet.presentationdefinitionurisupported", defs.Wallet.PresentationDefinitionURISupported, "Whether verifiers may pass presentation definitions by reference.")
	flags.String("wallet.signingkeyfile", defs.Wallet.SigningKeyFile, "File containing the wallet's private signing key as JWK. If not set, an ephemeral key is generated.")
	flags.StringSlice("wallet.clientidschemes", defs.Wallet.ClientIDSchemes, "Accepted client_id_scheme values. Empty accepts all.")
	flags.StringSlice("wallet.vpformats", defs.Wallet.VPFormats, "VP formats the wallet can produce.")
	flags.String("wallet.definitionsfile", defs.Wallet.DefinitionsFile, "JSON file mapping scopes to presentation definitions.")
	flags.Bool("wallet.verifyrequestobjects", defs.Wallet.VerifyRequestObjects, "Verify request object signatures against the verifier's jwks.")
	flags.String("wallet.holder.name", defs.Wallet.Holder.Name, "Name of the holder, added to issued ID tokens.")
	flags.String("wallet.holder.email", defs.Wallet.Holder.Email, "Email address of the holder, added to issued ID tokens.")
	return flags
}

// LoadConfig loads the configuration from defaults, config file, environment and flags, and configures the logger.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	config := DefaultConfig()
	if _, err := core.LoadConfig(flags, config, &config); err != nil {
		return nil, err
	}
	if err := core.ConfigureLogger(config.Verbosity, config.LoggerFormat); err != nil {
		return nil, err
	}
	return &config, nil
}

// WalletConfiguration converts the configuration into the wallet's configuration, loading the signing key and known presentation definitions.
func (c Config) WalletConfiguration() (openid4vp.WalletConfiguration, error) {
	signingKey, err := c.signingKey()
	if err != nil {
		return openid4vp.WalletConfiguration{}, err
	}
	definitions := pe.NewDefinitionResolver(nil)
	if c.Wallet.DefinitionsFile != "" {
		if err = definitions.LoadFromFile(c.Wallet.DefinitionsFile); err != nil {
			return openid4vp.WalletConfiguration{}, fmt.Errorf("unable to load presentation definitions: %w", err)
		}
	}
	result := openid4vp.WalletConfiguration{
		SubjectSyntaxTypesSupported:        c.Wallet.SubjectSyntaxTypes,
		PreferredSubjectSyntaxType:         c.Wallet.PreferredSubjectSyntaxType,
		DecentralizedIdentifier:            c.Wallet.DID,
		SigningKey:                         signingKey,
		IDTokenTTL:                         c.Wallet.IDTokenTTL,
		PresentationDefinitionURISupported: c.Wallet.PresentationDefinitionURISupported,
		SupportedClientIDSchemes:           c.Wallet.ClientIDSchemes,
		VPFormatsSupported:                 c.Wallet.VPFormats,
		KnownPresentationDefinitions:       definitions,
		VerifyRequestObjects:               c.Wallet.VerifyRequestObjects,
	}
	if c.Wallet.Holder.Name != "" || c.Wallet.Holder.Email != "" {
		result.HolderInfo = &openid4vp.HolderInfo{Name: c.Wallet.Holder.Name, Email: c.Wallet.Holder.Email}
	}
	return result, result.Validate()
}

func (c Config) signingKey() (jwk.Key, error) {
	if c.Wallet.SigningKeyFile != "" {
		key, err := crypto.LoadKeyFromFile(c.Wallet.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("unable to load signing key: %w", err)
		}
		return key, nil
	}
	logrus.Warn("No signing key configured, generating an ephemeral ES256 key")
	return crypto.GenerateKey("ES256")
}
