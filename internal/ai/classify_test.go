package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	atscanErrors "atscan/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

var _ net.Error = fakeTimeoutError{}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "net timeout maps to network",
			err:      fakeTimeoutError{},
			wantCode: atscanErrors.ErrCodeNetwork,
		},
		{
			name:     "wrapped net error maps to network",
			err:      fmt.Errorf("operation 'analyze_resume' failed after 2 retries: %w", fakeTimeoutError{}),
			wantCode: atscanErrors.ErrCodeNetwork,
		},
		{
			name:     "deadline exceeded maps to network",
			err:      context.DeadlineExceeded,
			wantCode: atscanErrors.ErrCodeNetwork,
		},
		{
			name:     "googleapi 500 maps to service",
			err:      &googleapi.Error{Code: 500, Message: "internal"},
			wantCode: atscanErrors.ErrCodeService,
		},
		{
			name:     "googleapi 429 maps to service",
			err:      &googleapi.Error{Code: 429, Message: "quota"},
			wantCode: atscanErrors.ErrCodeService,
		},
		{
			name:     "genai api error maps to service",
			err:      genai.APIError{Code: 503, Message: "unavailable"},
			wantCode: atscanErrors.ErrCodeService,
		},
		{
			name:     "open breaker maps to service",
			err:      gobreaker.ErrOpenState,
			wantCode: atscanErrors.ErrCodeService,
		},
		{
			name:     "anything else maps to unknown",
			err:      errors.New("mystery"),
			wantCode: atscanErrors.ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := classifyFailure(tt.err)
			if appErr.Code != tt.wantCode {
				t.Errorf("classifyFailure(%v) code = %s, want %s", tt.err, appErr.Code, tt.wantCode)
			}
			if got := atscanErrors.CodeOf(appErr); got != tt.wantCode {
				t.Errorf("CodeOf round trip = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net error", fakeTimeoutError{}, true},
		{"googleapi 429", &googleapi.Error{Code: 429}, true},
		{"googleapi 503", &googleapi.Error{Code: 503}, true},
		{"googleapi 400", &googleapi.Error{Code: 400}, false},
		{"googleapi 401", &googleapi.Error{Code: 401}, false},
		{"genai 502", genai.APIError{Code: 502}, true},
		{"plain error", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
