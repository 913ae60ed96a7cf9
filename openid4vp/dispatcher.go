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
	"errors"
	"fmt"
	"net/url"

	"github.com/nuts-foundation/siop-openid4vp/core"
	"github.com/nuts-foundation/siop-openid4vp/http/client"
	"github.com/nuts-foundation/siop-openid4vp/oauth"
	"github.com/nuts-foundation/siop-openid4vp/openid4vp/log"
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchOutcome is the result of dispatching an authorization response: AcceptedOutcome, RejectedOutcome or ErroredOutcome.
type DispatchOutcome interface {
	outcome() string
}

// AcceptedOutcome means the verifier accepted the response.
// RedirectURI is where the user agent should be sent next, if anything; for query and fragment responses, it's the URI carrying the response.
type AcceptedOutcome struct {
	RedirectURI *url.URL
}

// RejectedOutcome means the verifier responded with a non-2xx status code.
type RejectedOutcome struct {
	StatusCode int
	Reason     string
}

// ErroredOutcome means the response couldn't be delivered.
type ErroredOutcome struct {
	Cause error
}

func (AcceptedOutcome) outcome() string { return "accepted" }
func (RejectedOutcome) outcome() string { return "rejected" }
func (ErroredOutcome) outcome() string  { return "error" }

// Dispatcher delivers authorization responses to the verifier. It makes exactly one attempt per response.
type Dispatcher struct {
	poster   Poster
	outcomes *prometheus.CounterVec
}

// NewDispatcher creates a Dispatcher that POSTs responses using the given Poster.
// Dispatch outcomes are counted in a metric registered with the given registerer (or the default registerer if nil).
func NewDispatcher(poster Poster, registerer prometheus.Registerer) (*Dispatcher, error) {
	outcomes, err := core.RegisterCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: core.MetricsNamespace,
		Name:      "dispatch_outcomes_total",
		Help:      "Number of dispatched authorization responses by response mode and outcome.",
	}, []string{"response_mode", "outcome"}))
	if err != nil {
		return nil, fmt.Errorf("unable to register dispatch metrics: %w", err)
	}
	return &Dispatcher{poster: poster, outcomes: outcomes}, nil
}

// Dispatch delivers the response. direct_post(.jwt) responses are POSTed to the response URI;
// for query and fragment responses the redirect URI is constructed and delivery is up to the caller.
// Transport failures are reported as ErroredOutcome, a DispatchError is returned if the response can't be sent at all.
func (d Dispatcher) Dispatch(ctx context.Context, response AuthorizationResponse) (DispatchOutcome, error) {
	var outcome DispatchOutcome
	var err error
	switch r := response.(type) {
	case DirectPostResponse:
		outcome, err = d.post(ctx, r.ResponseURI, r.Params())
	case DirectPostJWTResponse:
		outcome, err = d.post(ctx, r.ResponseURI, r.Params())
	case QueryResponse:
		outcome, err = redirect(r.RedirectURI, r.Params(), false)
	case FragmentResponse:
		outcome, err = redirect(r.RedirectURI, r.Params(), true)
	default:
		return nil, DispatchError{Cause: fmt.Errorf("unsupported response %T", response)}
	}
	if err != nil {
		return nil, err
	}
	d.outcomes.WithLabelValues(response.ResponseMode(), outcome.outcome()).Inc()
	return outcome, nil
}

func (d Dispatcher) post(ctx context.Context, responseURI *url.URL, params url.Values) (DispatchOutcome, error) {
	if responseURI == nil {
		return nil, DispatchError{Cause: errors.New("no response URI")}
	}
	request, err := client.NewFormRequest(ctx, responseURI.String(), params)
	if err != nil {
		return nil, DispatchError{Cause: err}
	}
	logger := log.Logger().WithField(core.LogFieldURL, responseURI.String())
	redirectURI, _, err := d.poster.Check(oauth.RedirectURIParam, request)
	var postErr client.PostError
	switch {
	case err == nil:
		parsed, parseErr := core.ParseAbsoluteURL(redirectURI)
		if parseErr != nil {
			logger.WithError(parseErr).Warn("Verifier returned an invalid redirect_uri, ignoring it")
			return AcceptedOutcome{}, nil
		}
		return AcceptedOutcome{RedirectURI: parsed}, nil
	case errors.Is(err, client.ErrKeyNotPresent), errors.Is(err, client.ErrUnexpectedEmptyAnswer), errors.Is(err, client.ErrInvalidResponse):
		// the verifier accepted the response, but doesn't redirect the user agent
		return AcceptedOutcome{}, nil
	case errors.Is(err, client.ErrInvalidStatusCode) && errors.As(err, &postErr):
		logger.Infof("Verifier rejected authorization response (status=%d)", postErr.StatusCode)
		return RejectedOutcome{StatusCode: postErr.StatusCode, Reason: fmt.Sprintf("HTTP %d: %s", postErr.StatusCode, string(postErr.Body))}, nil
	default:
		logger.WithError(err).Info("Unable to deliver authorization response")
		return ErroredOutcome{Cause: err}, nil
	}
}

// redirect constructs the redirect URI carrying the response parameters in its query or fragment.
func redirect(redirectURI *url.URL, params url.Values, fragment bool) (DispatchOutcome, error) {
	if redirectURI == nil {
		return nil, DispatchError{Cause: errors.New("no redirect URI")}
	}
	result := *redirectURI
	if fragment {
		result.Fragment = ""
		result.RawFragment = ""
		parsed, err := url.Parse(result.String() + "#" + params.Encode())
		if err != nil {
			return nil, DispatchError{Cause: err}
		}
		return AcceptedOutcome{RedirectURI: parsed}, nil
	}
	query := result.Query()
	for key, values := range params {
		query[key] = values
	}
	result.RawQuery = query.Encode()
	return AcceptedOutcome{RedirectURI: &result}, nil
}
