package fetcher

import (
	"time"

	"resty.dev/v3"
)

const (
	// DefaultTimeout bounds a single provider request
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent is sent to providers that reject non-browser clients
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// ClientOptions configures the HTTP client shared by the adapters.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Accept    string
}

// NewHTTPClient creates an HTTP client for a single best-effort attempt
// against baseURL. Retries are disabled; the timeout bounds how long one
// unresponsive provider can hold up a collection.
func NewHTTPClient(baseURL string, opts ClientOptions) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Accept == "" {
		opts.Accept = "application/json"
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", opts.Accept).
		SetHeader("User-Agent", opts.UserAgent)
}

// CheckResponse converts a transport error or a non-2xx response into a FetchError.
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return ClassifyHTTPError(resp.StatusCode())
	}
	return nil
}
