package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{429, ErrorTypeRateLimit, true},
		{500, ErrorTypeServer, true},
		{503, ErrorTypeServer, true},
		{404, ErrorTypeClient, false},
		{302, ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	deadline := fmt.Errorf("get: %w", context.DeadlineExceeded)
	if got := ClassifyTransportError(deadline); got.Type != ErrorTypeTimeout {
		t.Errorf("deadline classified as %q, want timeout", got.Type)
	}

	refused := errors.New("connection refused")
	got := ClassifyTransportError(refused)
	if got.Type != ErrorTypeNetwork {
		t.Errorf("refused classified as %q, want network", got.Type)
	}
	if !errors.Is(got, refused) {
		t.Error("network error does not unwrap to its cause")
	}

	existing := NewValidationError("bad")
	if ClassifyTransportError(fmt.Errorf("wrapped: %w", existing)) != existing {
		t.Error("existing FetchError was not passed through")
	}
}

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{"validation", NewValidationError("close column missing"), "validation error: close column missing"},
		{"server", NewServerError(502), "server error (status 502): server returned an error"},
		{"parse", NewParseError("bad date", errors.New("oops")), "validation error: bad date: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
