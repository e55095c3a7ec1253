package librelinkup

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Option configures a Client or an Authenticator.
type Option func(*clientOptions)

// clientOptions holds configuration options shared by Client and Authenticator.
type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	profile    Profile
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout: defaultTimeout,
		profile: DefaultProfile,
	}
}

func buildOptions(opts []Option) clientOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	return o
}

// WithHTTPClient sets a custom HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithProfile selects the identification headers sent with each request.
func WithProfile(p Profile) Option {
	return func(o *clientOptions) {
		o.profile = p
	}
}
