package common

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
	ErrDatabase           = errors.New("database error")
	ErrValidation         = errors.New("validation failed")
	ErrBoundaryNotFound   = errors.New("table boundary not found")
	ErrCatalogUnavailable = errors.New("catalog store unavailable")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// FetchErrorKind says which network condition ended a fetch.
type FetchErrorKind string

const (
	FetchTimeout FetchErrorKind = "timeout"
	FetchStatus  FetchErrorKind = "status"
	FetchTLS     FetchErrorKind = "tls"
	FetchNetwork FetchErrorKind = "network"
)

// FetchError is terminal for the single page or document being fetched.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError classifies a transport error from an HTTP client call.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Kind: classifyTransport(err), Cause: err}
}

// NewStatusError reports a non-2xx response.
func NewStatusError(url string, code int) *FetchError {
	return &FetchError{URL: url, Kind: FetchStatus, StatusCode: code, Cause: errors.New(http.StatusText(code))}
}

func classifyTransport(err error) FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}
	var (
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		certErr     x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
		verifyErr   *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &unknownAuth), errors.As(err, &hostErr), errors.As(err, &certErr),
		errors.As(err, &recordErr), errors.As(err, &verifyErr):
		return FetchTLS
	}
	return FetchNetwork
}

// IsTimeout reports whether err is a fetch that ran out of time.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTimeout
}

// BoundaryNotFoundError means the start-of-table signature never appeared.
type BoundaryNotFoundError struct {
	Lines int
}

func (e *BoundaryNotFoundError) Error() string {
	return fmt.Sprintf("%v: scanned %d lines", ErrBoundaryNotFound, e.Lines)
}

func (e *BoundaryNotFoundError) Unwrap() error {
	return ErrBoundaryNotFound
}

// RejectedError is a block that did not survive record assembly. It is counted, never fatal.
type RejectedError struct {
	Reason string
	Block  int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("block %d rejected: %s", e.Block, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return ErrValidation
}

// IsRejected reports whether err is a validation rejection.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// StoreError is a catalog store failure. Conflict marks an existing name+address pair.
type StoreError struct {
	Op         string
	StatusCode int
	Detail     string
	Conflict   bool
	Cause      error
}

func (e *StoreError) Error() string {
	switch {
	case e.Conflict:
		return fmt.Sprintf("store %s: already exists: %s", e.Op, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("store %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	case e.Cause != nil:
		return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
	default:
		return fmt.Sprintf("store %s: %s", e.Op, e.Detail)
	}
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.Code classify store failures.
func (e *StoreError) GRPCStatus() *status.Status {
	return status.New(e.code(), e.Error())
}

func (e *StoreError) code() codes.Code {
	if e.Conflict {
		return codes.AlreadyExists
	}
	switch e.StatusCode {
	case 0:
		if e.Cause != nil {
			return codes.Unavailable
		}
		return codes.Internal
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// IsConflict reports whether err is a store-side "already exists".
func IsConflict(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.code() == codes.AlreadyExists
	}
	return status.Code(err) == codes.AlreadyExists
}
