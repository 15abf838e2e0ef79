// Package errs defines the error-kind taxonomy shared by the arbiter, the
// shard nodes, and the fan-out consumer, and maps each kind to a gRPC code
// so the RPC layer can translate errors mechanically.
package errs

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Kind classifies an error the way callers need to react to it: retry,
// surface to the caller, or crash.
type Kind string

const (
	// InvalidArgument: malformed ids, unknown enum values, an inconsistent
	// role transition. Returned to the caller; never retried.
	InvalidArgument Kind = "invalid_argument"
	// NotFound: unknown node_addr or group_id for an operation requiring
	// existence. Returned to the caller.
	NotFound Kind = "not_found"
	// InvalidTransition: a lifecycle transition outside the permitted arrow
	// set, or a role change involving Owner. Returned to the caller; may be
	// retried by an upstream orchestrator after corrective action.
	InvalidTransition Kind = "invalid_transition"
	// Retry: epoch mismatch, CAS contention, or transient peer
	// unavailability. The caller retries with backoff up to the retry
	// helper's cap; exceeding it surfaces as a transient error.
	Retry Kind = "retry"
	// Unavailable: arbiter unreachable, Kafka broker unreachable, peer
	// shard unreachable. Retried with exponential backoff by the lifecycle
	// runner or the consumer.
	Unavailable Kind = "unavailable"
	// Fatal: a local invariant violation (e.g. online_uids not a subset of
	// members). Logged; the node transitions to Failed and stops serving.
	Fatal Kind = "fatal"
)

// Error wraps an underlying error with a Kind so callers can branch on
// classification without string matching.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a Kind-classified error.
func New(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a Kind to an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, defaulting to Fatal for an
// unclassified error — an unexpected error is treated as the most severe
// case rather than silently retried or surfaced as the caller's fault.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Fatal
}

// Code maps a Kind to the gRPC status code the API layer returns.
func Code(kind Kind) codes.Code {
	switch kind {
	case InvalidArgument:
		return codes.InvalidArgument
	case NotFound:
		return codes.NotFound
	case InvalidTransition:
		return codes.FailedPrecondition
	case Retry:
		return codes.Aborted
	case Unavailable:
		return codes.Unavailable
	case Fatal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// GRPCCode is a convenience wrapper combining KindOf and Code.
func GRPCCode(err error) codes.Code {
	return Code(KindOf(err))
}

// IsRetryable reports whether the caller should retry with backoff: both
// Retry (epoch contention) and Unavailable (transient peer/broker outage)
// kinds are retryable, everything else is not.
func IsRetryable(err error) bool {
	k := KindOf(err)
	return k == Retry || k == Unavailable
}
