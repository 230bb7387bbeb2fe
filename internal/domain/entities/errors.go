package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a gateway failure so callers can branch on it.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindUnavailable ErrorKind = "unavailable"
	KindInvalid     ErrorKind = "invalid"
	KindUnknown     ErrorKind = "unknown"
)

// GatewayError is returned by every remote store operation.
type GatewayError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps err with op and a kind inferred from the error chain.
// notFound replaces sql.ErrNoRows so callers can use errors.Is with a domain error.
func NewGatewayError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}

	kind := KindUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		kind = KindNotFound
		if notFound != nil {
			err = notFound
		}
	case errors.Is(err, ErrNotFound), errors.Is(err, notFound) && notFound != nil:
		kind = KindNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDate):
		kind = KindInvalid
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sql.ErrConnDone), errors.As(err, &netErr):
		kind = KindUnavailable
	}

	return &GatewayError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first GatewayError in err's chain.
func KindOf(err error) ErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindUnknown
}
