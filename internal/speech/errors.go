package speech

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindValidation          Kind = iota // Bad inbound request
	KindUnsupportedProvider             // Provider key not registered
	KindUpstreamTransport               // Network, timeout or TLS failure talking to a provider
	KindUpstreamRejected                // Provider answered with a non-2xx status
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnsupportedProvider:
		return "unsupported_provider"
	case KindUpstreamTransport:
		return "upstream_transport"
	case KindUpstreamRejected:
		return "upstream_rejected"
	}
	return "unknown"
}

// Error is the single error shape every stage of a synthesis call reports.
type Error struct {
	Kind Kind

	// Message is the human readable description sent to the caller
	Message string

	// Provider is set for unsupported-provider and upstream failures
	Provider string

	// Status and Body describe an upstream rejection
	Status int
	Body   string

	// Cause is the underlying transport or decode error, if any
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error onto the status the gateway answers with.
// Upstream statuses are never reflected; they travel in the message instead.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindUnsupportedProvider:
		return http.StatusBadRequest
	case KindUpstreamTransport, KindUpstreamRejected:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// NewValidationError reports a malformed inbound request.
func NewValidationError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewUnsupportedProviderError reports a provider key with no registered adapter.
func NewUnsupportedProviderError(provider string) *Error {
	return &Error{
		Kind:     KindUnsupportedProvider,
		Message:  fmt.Sprintf("unsupported provider: %s", provider),
		Provider: provider,
	}
}

// NewUpstreamTransportError reports a failure to complete the upstream exchange.
func NewUpstreamTransportError(provider string, cause error) *Error {
	return &Error{
		Kind:     KindUpstreamTransport,
		Message:  fmt.Sprintf("failed to reach %s", provider),
		Provider: provider,
		Cause:    cause,
	}
}

// NewUpstreamRejectedError reports a non-2xx answer from a provider.
func NewUpstreamRejectedError(provider string, status int, body string) *Error {
	return &Error{
		Kind:     KindUpstreamRejected,
		Message:  fmt.Sprintf("upstream %s returned status %d: %s", provider, status, body),
		Provider: provider,
		Status:   status,
		Body:     body,
	}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsKind reports whether err carries a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Kind == kind
}
