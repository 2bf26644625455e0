package ai

import (
	"context"
	"errors"
	"net"
	"net/http"

	atscanErrors "atscan/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// classifyFailure wraps a raw service-call failure into an AppError carrying
// exactly one of the NETWORK / SERVICE / UNKNOWN codes. Parse failures are
// classified at the parse site as MALFORMED_RESPONSE, not here.
func classifyFailure(err error) *atscanErrors.AppError {
	switch classifyCode(err) {
	case atscanErrors.ErrCodeNetwork:
		return atscanErrors.NewNetworkError(atscanErrors.ErrCodeNetwork,
			"Failed to reach the analysis service", err)
	case atscanErrors.ErrCodeService:
		return atscanErrors.NewAIError(atscanErrors.ErrCodeService,
			"The analysis service returned a failure response", err)
	default:
		return atscanErrors.NewAIError(atscanErrors.ErrCodeUnknown,
			"Resume analysis failed", err)
	}
}

// classifyCode maps a raw error to a failure kind
func classifyCode(err error) string {
	if err == nil {
		return atscanErrors.ErrCodeUnknown
	}

	// Transport-level failures: timeouts, refused connections, cancelled
	// deadlines while waiting on the wire
	var netErr net.Error
	if errors.As(err, &netErr) {
		return atscanErrors.ErrCodeNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return atscanErrors.ErrCodeNetwork
	}

	// The service was reachable and answered with an error status
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return atscanErrors.ErrCodeService
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return atscanErrors.ErrCodeService
	}

	// An open breaker means recent service failures; report it as such
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return atscanErrors.ErrCodeService
	}

	return atscanErrors.ErrCodeUnknown
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		// Timeouts and connection failures are both worth retrying
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.Code)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return isRetryableStatus(genaiErr.Code)
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
