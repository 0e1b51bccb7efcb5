// Package xl30 implements the host-side protocol engine for a Philips/FEI
// XL-series scanning electron microscope over RS-232: framing, typed
// opcode operations, retry-with-reconnect reliability, and the session's
// capability-backed device state.
package xl30

import (
	"errors"
	"fmt"
)

// Kind distinguishes the failure modes a caller needs to branch on.
type Kind int

const (
	// KindNotConnected: operation attempted without a live port.
	KindNotConnected Kind = iota
	// KindInvalidUsage: a caller protocol error — mixing context and
	// explicit connect usage, or violating a declared bound before a
	// frame would even be built.
	KindInvalidUsage
	// KindValue: an argument is out of range or the wrong enum value.
	KindValue
	// KindCommunication: a wire-level fault. Retryable.
	KindCommunication
	// KindDeviceError: a well-formed reply with the device's error bit
	// set. Never retried — the device has definitively refused.
	KindDeviceError
	// KindIO: a composite, multi-frame operation did not reach its
	// target state (e.g. a high-tension ramp timed out). Retryable via
	// reconnect.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotConnected:
		return "NotConnected"
	case KindInvalidUsage:
		return "InvalidUsage"
	case KindValue:
		return "Value"
	case KindCommunication:
		return "Communication"
	case KindDeviceError:
		return "DeviceError"
	case KindIO:
		return "IO"
	default:
		return "Unknown"
	}
}

// Error is the unified error type every xl30 operation returns.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "set_hightension".
	Op string
	// ErrorCode carries the device's 32-bit error code when Kind is
	// KindDeviceError.
	ErrorCode uint32
	Err       error
}

func (e *Error) Error() string {
	if e.Kind == KindDeviceError {
		return fmt.Sprintf("xl30: %s: device refused (code %d)", e.Op, e.ErrorCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("xl30: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("xl30: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func notConnectedErr(op string) *Error {
	return newError(KindNotConnected, op, errors.New("microscope is not connected"))
}

func invalidUsageErr(op string, err error) *Error {
	return newError(KindInvalidUsage, op, err)
}

func valueErr(op string, err error) *Error {
	return newError(KindValue, op, err)
}

func communicationErr(op string, err error) *Error {
	return newError(KindCommunication, op, err)
}

func ioErr(op string, err error) *Error {
	return newError(KindIO, op, err)
}

func deviceErrorErr(op string, code uint32) *Error {
	return &Error{Kind: KindDeviceError, Op: op, ErrorCode: code}
}

// IsRetryable reports whether the reliability wrapper should retry this
// failure: wire-level faults and stalled composite operations are, caller
// bugs and definitive device refusals are not.
func IsRetryable(err error) bool {
	var xerr *Error
	if !errors.As(err, &xerr) {
		return false
	}
	switch xerr.Kind {
	case KindCommunication, KindIO, KindNotConnected:
		return true
	default:
		return false
	}
}

// IsDeviceError reports whether err is a well-formed device refusal.
func IsDeviceError(err error) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Kind == KindDeviceError
}
