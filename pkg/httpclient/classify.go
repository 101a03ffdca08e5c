package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"

	apperrors "github.com/coreforge/storefront/pkg/errors"
)

// IsConnectivityError reports whether an error belongs to the connectivity
// class: the server could not be reached at all. Only these failures are
// retried. Anything derived from a valid HTTP response, and caller
// cancellation, is application-class.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	// Caller-side cancellation is not a connectivity problem.
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Per-attempt timeout.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// A URL error that wraps none of the above is still a transport failure
	// (the request never produced a response).
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return errors.Is(err, apperrors.ErrUnreachable)
}

// CheckResponse maps a non-2xx HTTP response to an application-class error and
// fully consumes the body. For 2xx responses it returns nil and leaves the
// body untouched. These errors are never retried by the wrapper.
func CheckResponse(resp *http.Response, target string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		body = nil
	}

	message := string(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperrors.NotFound(target, resp.Request.URL.Path)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case http.StatusForbidden:
		return apperrors.Forbidden(message)
	case http.StatusConflict:
		return &apperrors.AppError{
			Code:    "CONFLICT",
			Message: message,
			Status:  http.StatusConflict,
			Err:     apperrors.ErrConflict,
		}
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: message,
			Status:  resp.StatusCode,
		}
	}
}
