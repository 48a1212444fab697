package common

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFetchErrorKinds(t *testing.T) {
	to := NewFetchError("https://x", fmt.Errorf("get: %w", context.DeadlineExceeded))
	assert.Equal(t, FetchTimeout, to.Kind)
	assert.True(t, IsTimeout(to))

	tlsErr := NewFetchError("https://x", fmt.Errorf("get: %w", x509.UnknownAuthorityError{}))
	assert.Equal(t, FetchTLS, tlsErr.Kind)

	netErr := NewFetchError("https://x", errors.New("connection refused"))
	assert.Equal(t, FetchNetwork, netErr.Kind)

	st := NewStatusError("https://x", http.StatusNotFound)
	assert.Equal(t, FetchStatus, st.Kind)
	assert.Contains(t, st.Error(), "404")
	assert.False(t, IsTimeout(st))
}

func TestBoundaryNotFoundError(t *testing.T) {
	err := error(&BoundaryNotFoundError{Lines: 12})
	assert.ErrorIs(t, err, ErrBoundaryNotFound)
	assert.Contains(t, err.Error(), "12 lines")
}

func TestRejectedError(t *testing.T) {
	err := fmt.Errorf("assemble: %w", &RejectedError{Reason: "name missing", Block: 3})
	assert.True(t, IsRejected(err))
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, IsRejected(errors.New("other")))
}

func TestStoreErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *StoreError
		want codes.Code
	}{
		{"conflict flag", &StoreError{Op: "create", Conflict: true}, codes.AlreadyExists},
		{"409", &StoreError{Op: "create", StatusCode: http.StatusConflict}, codes.AlreadyExists},
		{"400", &StoreError{Op: "create", StatusCode: http.StatusBadRequest}, codes.InvalidArgument},
		{"403", &StoreError{Op: "create", StatusCode: http.StatusForbidden}, codes.PermissionDenied},
		{"503", &StoreError{Op: "create", StatusCode: http.StatusServiceUnavailable}, codes.Unavailable},
		{"500", &StoreError{Op: "create", StatusCode: http.StatusInternalServerError}, codes.Internal},
		{"transport", &StoreError{Op: "create", Cause: errors.New("dial")}, codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(tt.err))
			assert.Equal(t, tt.want == codes.AlreadyExists, IsConflict(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}
