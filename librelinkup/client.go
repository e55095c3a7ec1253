package librelinkup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

// Client represents a LibreLinkUp API client. It holds no mutable state after
// construction and is safe for concurrent use.
type Client struct {
	baseURL    string
	region     string
	token      string
	userID     string
	httpClient *http.Client
	profile    Profile
	logger     zerolog.Logger
}

// NewClient logs in with the given credentials and returns a client bound to
// the resulting token.
func NewClient(ctx context.Context, creds Credentials, region string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	session, err := NewAuthenticator(region, logger, opts...).Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return NewClientFromToken(session.Token, session.UserID, region, logger, opts...)
}

// NewClientFromToken creates a client from a token obtained earlier, skipping
// login. userID may be empty when the profile does not send account-id.
func NewClientFromToken(token, userID, region string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidConfig)
	}
	if !ValidRegion(region) {
		return nil, fmt.Errorf("%w: invalid region %q", ErrInvalidConfig, region)
	}
	o := buildOptions(opts)

	return &Client{
		baseURL:    BaseURL(region),
		region:     region,
		token:      token,
		userID:     userID,
		httpClient: o.httpClient,
		profile:    o.profile,
		logger:     logger,
	}, nil
}

// BaseURL returns the host all data requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Region returns the region the client was created for
func (c *Client) Region() string {
	return c.region
}

// Profile returns the identification profile in use
func (c *Client) Profile() Profile {
	return c.profile
}

// doRequest performs an authenticated GET and decodes the JSON reply into out
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	requestURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.profile.apply(req.Header)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.profile.SendAccountID && c.userID != "" {
		req.Header.Set("account-id", AccountID(c.userID))
	}

	c.logger.Debug().
		Str("method", http.MethodGet).
		Str("url", requestURL).
		Msg("Making LibreLinkUp API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: http.MethodGet, URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: http.MethodGet, URL: requestURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Body: string(body), Err: err}
	}
	return nil
}

// newAPIError extracts a message from the common error shapes of the service
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var shape struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &shape) == nil {
		apiErr.Message = shape.Message
		if apiErr.Message == "" && shape.Error != nil {
			apiErr.Message = shape.Error.Message
		}
	}
	return apiErr
}

// GetConnections lists the patients sharing data with the account
func (c *Client) GetConnections(ctx context.Context) (*ConnectionsResponse, error) {
	var out ConnectionsResponse
	if err := c.doRequest(ctx, "llu/connections", nil, &out); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(out.Data)).Msg("Retrieved connections from LibreLinkUp")
	return &out, nil
}

// GetConnectionGraph returns the last hours of readings for a connection
func (c *Client) GetConnectionGraph(ctx context.Context, connectionID string) (*GraphResponse, error) {
	var out GraphResponse
	endpoint := fmt.Sprintf("llu/connections/%s/graph", url.PathEscape(connectionID))
	if err := c.doRequest(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("connection", connectionID).
		Int("points", len(out.Data.GraphData)).
		Msg("Retrieved connection graph")
	return &out, nil
}

// GetGlucoseHistory returns aggregated history for the account's own sensor
func (c *Client) GetGlucoseHistory(ctx context.Context, numPeriods, period int) (*GlucoseHistory, error) {
	params := url.Values{}
	params.Set("numPeriods", strconv.Itoa(numPeriods))
	params.Set("period", strconv.Itoa(period))

	var out GlucoseHistory
	if err := c.doRequest(ctx, "glucoseHistory", params, &out); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("periods", len(out.Data.Periods)).Msg("Retrieved glucose history")
	return &out, nil
}

// GetLogBook returns alarm and scan events for a connection
func (c *Client) GetLogBook(ctx context.Context, connectionID string) (*LogBook, error) {
	var out LogBook
	endpoint := fmt.Sprintf("llu/connections/%s/logbook", url.PathEscape(connectionID))
	if err := c.doRequest(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("connection", connectionID).
		Int("entries", len(out.Data)).
		Msg("Retrieved log book")
	return &out, nil
}
