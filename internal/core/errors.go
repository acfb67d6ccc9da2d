package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup that matched nothing, e.g. an unknown
// Kundennummer. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// UpstreamError wraps a failed call to the Ledger Store or File Store.
// Timeout distinguishes a deadline hit from other upstream failures so the
// HTTP layer can report 504 instead of 502.
type UpstreamError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: upstream timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: upstream error: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError, flagging context deadline
// expiry as a timeout. A nil err passes through.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{
		Op:      op,
		Err:     err,
		Timeout: errors.Is(err, context.DeadlineExceeded),
	}
}
