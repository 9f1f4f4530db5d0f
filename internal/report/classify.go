package report

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

// Classify maps any failure observed by a command into exactly one
// ReportableError. Classification is total: every error lands in a
// category, and an already-classified error passes through unchanged.
func Classify(err error) *ReportableError {
	if err == nil {
		return nil
	}

	var reportable *ReportableError
	if errors.As(err, &reportable) {
		return reportable
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return &ReportableError{
			Category: RemoteRejected,
			Code:     remote.Code,
			Message:  remote.Message,
		}
	}

	if errors.Is(err, ErrSlotsExceeded) {
		return &ReportableError{Category: CapacityExceeded, Detail: err.Error()}
	}
	if errors.Is(err, ErrInvalidSubscription) {
		return &ReportableError{Category: SubscriptionInvalid, Detail: err.Error()}
	}

	if isTimeout(err) {
		return &ReportableError{Category: RequestTimeout, Detail: err.Error()}
	}

	if isDecode(err) {
		return &ReportableError{Category: ProtocolDecode, Detail: err.Error()}
	}

	// Everything else escaped the transport layer untyped: connection
	// refused, DNS failure, TLS, unexpected EOF.
	return &ReportableError{Category: Transport, Detail: err.Error()}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDecode(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}
