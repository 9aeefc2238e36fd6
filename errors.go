package network

import "github.com/canitude/libaltcoin-network/codes"

// Code, Error and the error constructors are re-exported from the codes
// package so callers outside this module write network.Code / network.Err*
// as the public API, while internal packages depend on codes directly to
// avoid importing this root package (which itself depends on session,
// which depends on those internal packages).
type Code = codes.Code

type Error = codes.Error

const (
	ErrSuccess         = codes.ErrSuccess
	ErrServiceStopped  = codes.ErrServiceStopped
	ErrChannelStopped  = codes.ErrChannelStopped
	ErrChannelTimeout  = codes.ErrChannelTimeout
	ErrResolveFailed   = codes.ErrResolveFailed
	ErrAddressInUse    = codes.ErrAddressInUse
	ErrAddressBlocked  = codes.ErrAddressBlocked
	ErrBadStream       = codes.ErrBadStream
	ErrOversubscribed  = codes.ErrOversubscribed
	ErrPeerThrottling  = codes.ErrPeerThrottling
	ErrOperationFailed = codes.ErrOperationFailed
	ErrNotFound        = codes.ErrNotFound
)

// NewError builds an *Error from a code and optional context string.
func NewError(code Code, context string) *Error {
	return codes.New(code, context)
}

// CodeOf extracts the Code from err, defaulting to ErrOperationFailed for
// errors that did not originate in this module.
func CodeOf(err error) Code {
	return codes.CodeOf(err)
}

// IsTerminal reports whether ec short-circuits per-channel state machines.
func IsTerminal(ec Code) bool {
	return codes.IsTerminal(ec)
}
