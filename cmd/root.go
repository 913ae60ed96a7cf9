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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/crypto"
	"github.com/nuts-foundation/siop-openid4vp/http/client"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var stdOutWriter io.Writer = os.Stdout

// Allows overriding the metrics registry to aid testing
var registererCreator = func() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "siop",
		Short: "Self-issued OpenID provider wallet, responding to OpenID4VP and SIOPv2 authorization requests.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
		SilenceUsage: true,
	}
}

func createPrintConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := DefaultConfig()
			configMap, err := core.LoadConfig(cmd.Flags(), config, &config)
			if err != nil {
				return err
			}
			cmd.Println("Current config")
			cmd.Print(configMap.Sprint())
			return nil
		},
	}
}

func createAuthorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize [uri]",
		Short: "Resolves and validates an authorization request and prints it",
		Long: "Resolves the authorization request in the given URI (e.g. openid4vp://?request_uri=...) or request object JWT: " +
			"request object, client metadata and presentation definition are fetched when passed by reference.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := createWallet(cmd)
			if err != nil {
				return err
			}
			outcome, err := wallet.Authorize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, describeOutcome(outcome))
		},
	}
}

// createWallet loads the config and creates the wallet it describes.
func createWallet(cmd *cobra.Command, opts ...openid4vp.BuilderOption) (*openid4vp.Wallet, error) {
	config, err := LoadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	walletConfig, err := config.WalletConfiguration()
	if err != nil {
		return nil, err
	}
	httpClient := client.New(client.Config{
		StrictMode:    config.StrictMode,
		Timeout:       config.HTTP.Timeout,
		CacheMaxBytes: config.HTTP.Cache.MaxBytes,
	})
	return openid4vp.NewWallet(walletConfig, client.NewFetcher(httpClient), client.NewPoster(httpClient), crypto.NewJOSE(), registererCreator(), opts...)
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to print output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// CreateCommand creates the root command with all subcommands and flags.
func CreateCommand() *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	command.PersistentFlags().AddFlagSet(FlagSet())
	command.AddCommand(createAuthorizeCommand())
	command.AddCommand(createRespondCommand())
	command.AddCommand(createPrintConfigCommand())
	return command
}

// Execute creates and executes the root command.
func Execute(ctx context.Context) error {
	return CreateCommand().ExecuteContext(ctx)
}
