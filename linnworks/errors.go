package linnworks

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse marks a response that is absent or not shaped like
	// an <Operation>Result mapping.
	ErrInvalidResponse = errors.New("linnworks: invalid response from transport")
	// ErrEndpointUnreachable marks a WSDL that could not be fetched or parsed
	// while building a client.
	ErrEndpointUnreachable = errors.New("linnworks: endpoint unreachable")
	// ErrNotImplemented is matched by every UnsupportedError.
	ErrNotImplemented = errors.New("linnworks: operation not implemented")
)

// TransportError reports a call that did not produce a usable result.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	if e.Operation == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("linnworks: %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a result the service flagged with IsError.
type RemoteError struct {
	Operation string
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("linnworks: %s: %s", e.Operation, e.Message)
}

// UnsupportedError is returned by operations this client does not implement.
// No request is sent.
type UnsupportedError struct {
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("linnworks: %s is not implemented", e.Operation)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrNotImplemented
}

func unsupported(operation string) error {
	return &UnsupportedError{Operation: operation}
}

func invalidResponse(operation, format string, args ...interface{}) error {
	return &TransportError{
		Operation: operation,
		Err:       fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...)),
	}
}
