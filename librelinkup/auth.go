package librelinkup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// Login statuses returned in the "status" field of the login reply
const (
	statusOK                = 0
	statusRejected          = 2
	statusPrivacyPolicyTerm = 4
)

// Authenticator exchanges credentials for a bearer token
type Authenticator struct {
	loginURL   string
	region     string
	httpClient *http.Client
	profile    Profile
	logger     zerolog.Logger
}

// NewAuthenticator creates an Authenticator. The region only affects the
// BaseURL of the returned Session; login always goes to the global host.
func NewAuthenticator(region string, logger zerolog.Logger, opts ...Option) *Authenticator {
	return newAuthenticator(defaultHost, region, logger, opts)
}

// NewRegionalAuthenticator logs in at the region's own host. Use it to follow
// a *RedirectError from the global host.
func NewRegionalAuthenticator(region string, logger zerolog.Logger, opts ...Option) *Authenticator {
	return newAuthenticator(BaseURL(region), region, logger, opts)
}

func newAuthenticator(host, region string, logger zerolog.Logger, opts []Option) *Authenticator {
	o := buildOptions(opts)
	return &Authenticator{
		loginURL:   fmt.Sprintf("%s/%s", host, loginPath),
		region:     region,
		httpClient: o.httpClient,
		profile:    o.profile,
		logger:     logger,
	}
}

// Authenticate performs a single login request
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidConfig)
	}
	if !ValidRegion(a.region) {
		return nil, fmt.Errorf("%w: invalid region %q", ErrInvalidConfig, a.region)
	}

	payload, err := json.Marshal(loginRequest{Email: creds.Username, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	a.profile.apply(req.Header)

	a.logger.Debug().
		Str("url", a.loginURL).
		Str("profile", a.profile.Name).
		Msg("Logging in to LibreLinkUp")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, URL: a.loginURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, URL: a.loginURL, Err: err}
	}

	session, err := decodeLogin(body)
	if err != nil {
		return nil, err
	}
	session.Region = a.region
	session.BaseURL = BaseURL(a.region)

	a.logger.Debug().
		Str("user_id", session.UserID).
		Time("expires", session.Expires).
		Msg("Logged in to LibreLinkUp")

	return session, nil
}

// decodeLogin turns a raw login reply into a Session or a typed error.
// The status field is read first and selects the shape of the rest.
func decodeLogin(body []byte) (*Session, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "{}" {
		return nil, ErrEmptyResponse
	}

	var head loginStatus
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return nil, &DecodeError{Endpoint: loginPath, Body: string(trimmed), Err: err}
	}
	if head.Status == nil {
		return nil, &DecodeError{Endpoint: loginPath, Body: string(trimmed), Err: errors.New("missing status")}
	}

	status := *head.Status
	switch status {
	case statusOK:
		// A status 0 reply without a usable ticket falls back to the error shape
		var ok loginSuccess
		if err := json.Unmarshal(trimmed, &ok); err != nil {
			return nil, &StatusError{Status: status}
		}
		if ok.Data.Redirect {
			if !ValidRegion(ok.Data.Region) {
				return nil, &DecodeError{Endpoint: loginPath, Body: string(trimmed), Err: fmt.Errorf("invalid redirect region %q", ok.Data.Region)}
			}
			return nil, &RedirectError{Region: ok.Data.Region}
		}
		if ok.Data.AuthTicket.Token == "" || ok.Data.User.ID == "" {
			return nil, &StatusError{Status: status}
		}
		return &Session{
			Token:   ok.Data.AuthTicket.Token,
			UserID:  ok.Data.User.ID,
			Expires: ok.Data.AuthTicket.ExpiresAt(),
		}, nil

	case statusPrivacyPolicyTerm:
		return nil, ErrPrivacyPolicyAcceptanceRequired

	case statusRejected:
		var failure loginFailure
		if err := json.Unmarshal(trimmed, &failure); err != nil {
			return nil, &DecodeError{Endpoint: loginPath, Body: string(trimmed), Err: err}
		}
		msg := fallbackRejectMessage
		if failure.Error != nil && failure.Error.Message != "" {
			msg = failure.Error.Message
		}
		return nil, &RejectedError{Message: msg}

	default:
		return nil, &StatusError{Status: status}
	}
}
