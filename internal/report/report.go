// Package report defines the client's error taxonomy. Every failure a
// command can hit is classified into exactly one Category and rendered
// in a stable form.
package report

import (
	"encoding/json"
	"fmt"
)

// Category identifies one arm of the error taxonomy.
type Category int

const (
	// LocalValidation: structurally invalid input caught before any
	// network call (bad fee rate, empty batch, bad hex).
	LocalValidation Category = iota
	// Transport: connection, DNS, or any other failure reaching the
	// endpoint.
	Transport
	// RequestTimeout: the transport gave up waiting for a response.
	RequestTimeout
	// ProtocolDecode: the response body does not match the expected
	// structure.
	ProtocolDecode
	// RemoteRejected: the service returned a well-formed application
	// level rejection with a numeric code and message.
	RemoteRejected
	// CapacityExceeded: the local in-flight slot limit was reached
	// before the request was sent.
	CapacityExceeded
	// SubscriptionInvalid: a streaming subscription identifier was
	// invalid. Reserved for future streaming calls.
	SubscriptionInvalid
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case LocalValidation:
		return "local_validation"
	case Transport:
		return "transport"
	case RequestTimeout:
		return "request_timeout"
	case ProtocolDecode:
		return "protocol_decode"
	case RemoteRejected:
		return "remote_rejected"
	case CapacityExceeded:
		return "capacity_exceeded"
	case SubscriptionInvalid:
		return "subscription_invalid"
	default:
		return "unknown"
	}
}

// ReportableError is the single error shape surfaced to the user.
// Constructed once at the point a failure is observed, never mutated
// afterwards except for the endpoint context the dispatcher attaches.
type ReportableError struct {
	Category Category
	// Code and Message are set for RemoteRejected.
	Code    int
	Message string
	// Detail is free text for the remaining categories.
	Detail string
	// Endpoint and Network are attached by the dispatcher so transport
	// failures point at the misconfigured target.
	Endpoint string
	Network  string
}

func (e *ReportableError) Error() string {
	switch e.Category {
	case RemoteRejected:
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Category, e.Detail)
	}
}

// Render returns the user-facing representation: a pretty-printed JSON
// object for remote rejections, prefixed text for everything else.
func (e *ReportableError) Render() string {
	switch e.Category {
	case RemoteRejected:
		out, err := json.MarshalIndent(struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}{e.Code, e.Message}, "", "  ")
		if err != nil {
			return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
		}
		return string(out)
	case Transport:
		if e.Endpoint != "" {
			return fmt.Sprintf("Transport error: %s: Rpc url: %s (network: %s)", e.Detail, e.Endpoint, e.Network)
		}
		return fmt.Sprintf("Transport error: %s", e.Detail)
	case RequestTimeout:
		if e.Endpoint != "" {
			return fmt.Sprintf("Request timeout: Rpc url: %s (network: %s)", e.Endpoint, e.Network)
		}
		return "Request timeout"
	case ProtocolDecode:
		return fmt.Sprintf("Parse error: %s", e.Detail)
	case CapacityExceeded:
		return "Max concurrent requests exceeded"
	case SubscriptionInvalid:
		return "Invalid subscription ID"
	default:
		return e.Detail
	}
}

// LocalValidationf constructs a LocalValidation error before any
// network call is made.
func LocalValidationf(format string, args ...interface{}) *ReportableError {
	return &ReportableError{
		Category: LocalValidation,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// RemoteError is the application-level rejection returned by the wallet
// service. The transport adapter returns it verbatim; Classify maps it
// to RemoteRejected.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrSlotsExceeded is returned when the in-flight request limit is hit
// before a request is sent.
var ErrSlotsExceeded = &slotError{}

type slotError struct{}

func (*slotError) Error() string { return "max concurrent requests exceeded" }

// ErrInvalidSubscription is reserved for streaming calls.
var ErrInvalidSubscription = &subscriptionError{}

type subscriptionError struct{}

func (*subscriptionError) Error() string { return "invalid subscription id" }
