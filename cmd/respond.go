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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nuts-foundation/go-did/vc"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp"
	"github.com/nuts-foundation/siop-openid4vp/pe"
	"github.com/spf13/cobra"
)

const (
	positiveConsent = "positive"
	negativeConsent = "negative"
)

type respondOptions struct {
	consent          string
	message          string
	idToken          string
	vpToken          string
	credentialsFile  string
	explicitNegative bool
}

func createRespondCommand() *cobra.Command {
	options := respondOptions{}
	command := &cobra.Command{
		Use:   "respond [uri]",
		Short: "Resolves an authorization request, responds to it and dispatches the response to the verifier",
		Long: "Resolves the authorization request like 'authorize' does, builds the authorization response from the given consent " +
			"and delivers it. For query and fragment response modes, the redirect URI carrying the response is printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.consent != positiveConsent && options.consent != negativeConsent {
				return fmt.Errorf("invalid consent '%s', must be '%s' or '%s'", options.consent, positiveConsent, negativeConsent)
			}
			var opts []openid4vp.BuilderOption
			if options.explicitNegative {
				opts = append(opts, openid4vp.WithExplicitNegativeConsent())
			}
			wallet, err := createWallet(cmd, opts...)
			if err != nil {
				return err
			}
			outcome, err := wallet.Authorize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			consent, err := options.clientConsent(wallet, outcome.Resolved())
			if err != nil {
				return err
			}
			response, err := wallet.Respond(outcome.Resolved(), consent)
			if errors.Is(err, openid4vp.ErrNegativeConsent) {
				// not dispatched, reporting is up to the caller
				return printJSON(cmd, openid4vp.ToOAuth2Error(err).Params())
			}
			if err != nil {
				return err
			}
			dispatched, err := wallet.Dispatch(cmd.Context(), response)
			if err != nil {
				return err
			}
			return printJSON(cmd, describeDispatch(response, dispatched))
		},
	}
	flags := command.Flags()
	flags.StringVar(&options.consent, "consent", positiveConsent, "Consent of the holder: positive or negative.")
	flags.StringVar(&options.message, "message", "user_cancelled", "Message sent to the verifier on negative consent.")
	flags.StringVar(&options.idToken, "id-token", "", "ID token to respond with. If not set, the wallet issues one.")
	flags.StringVar(&options.vpToken, "vp-token", "", "VP token to respond with, required for VP token requests.")
	flags.StringVar(&options.credentialsFile, "credentials", "", "JSON file with the credentials in the VP token, used to build the presentation submission.")
	flags.BoolVar(&options.explicitNegative, "explicit-negative", false, "Don't send a response on negative consent, print the error instead.")
	return command
}

func (o respondOptions) clientConsent(wallet *openid4vp.Wallet, resolved openid4vp.ResolvedRequestData) (openid4vp.ClientConsent, error) {
	if o.consent == negativeConsent {
		return openid4vp.NegativeConsensus{Message: o.message}, nil
	}
	switch data := resolved.(type) {
	case openid4vp.IDTokenData:
		idToken, err := o.issueIDToken(wallet, resolved)
		if err != nil {
			return nil, err
		}
		return openid4vp.IDTokenConsensus{IDToken: idToken}, nil
	case openid4vp.VPTokenData:
		claims, err := o.approvedClaims(data.PresentationDefinition)
		if err != nil {
			return nil, err
		}
		return openid4vp.VPTokenConsensus{VPToken: o.vpToken, ApprovedClaims: claims}, nil
	case openid4vp.IDAndVPTokenData:
		idToken, err := o.issueIDToken(wallet, resolved)
		if err != nil {
			return nil, err
		}
		claims, err := o.approvedClaims(data.PresentationDefinition)
		if err != nil {
			return nil, err
		}
		return openid4vp.IDAndVPTokenConsensus{IDToken: idToken, VPToken: o.vpToken, ApprovedClaims: claims}, nil
	default:
		return nil, fmt.Errorf("unsupported request: %T", resolved)
	}
}

func (o respondOptions) issueIDToken(wallet *openid4vp.Wallet, resolved openid4vp.ResolvedRequestData) (string, error) {
	if o.idToken != "" {
		return o.idToken, nil
	}
	idToken, err := wallet.IssueIDToken(resolved)
	if err != nil {
		return "", fmt.Errorf("unable to issue ID token: %w", err)
	}
	return idToken, nil
}

// approvedClaims matches the credentials against the presentation definition, returning the descriptor map of the submission.
func (o respondOptions) approvedClaims(definition pe.PresentationDefinition) ([]pe.InputDescriptorMappingObject, error) {
	if o.vpToken == "" {
		return nil, errors.New("--vp-token is required for VP token requests")
	}
	if o.credentialsFile == "" {
		return nil, errors.New("--credentials is required for VP token requests")
	}
	data, err := os.ReadFile(o.credentialsFile)
	if err != nil {
		return nil, err
	}
	var credentials []vc.VerifiableCredential
	if err = json.Unmarshal(data, &credentials); err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	submission, _, err := definition.Match(credentials)
	if err != nil {
		return nil, err
	}
	return submission.DescriptorMap, nil
}
