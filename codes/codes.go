// Package codes holds the error taxonomy and protocol-version-level
// constants shared by every layer of this module. It exists as its own
// leaf package (rather than living in the root package) so that session,
// protocol, peer, connect, and pending can all depend on it without
// creating an import cycle back through the root p2p facade, which in
// turn depends on session.
package codes

import "fmt"

// Code is the error taxonomy shared by every component in this module.
// Callers switch on Code rather than on error string content.
type Code int

const (
	// ErrSuccess is the zero value and never appears on a non-nil error.
	ErrSuccess Code = iota

	// ErrServiceStopped indicates the enclosing p2p instance is shutting
	// down; recipients should abort whatever they were doing.
	ErrServiceStopped

	// ErrChannelStopped indicates this channel is stopping but the
	// wider service continues operating.
	ErrChannelStopped

	// ErrChannelTimeout indicates a timer (inactivity, expiration,
	// handshake, or ping) fired.
	ErrChannelTimeout

	// ErrResolveFailed indicates DNS resolution of a dial target failed.
	ErrResolveFailed

	// ErrAddressInUse indicates pending-close rejected a duplicate
	// authority during channel adoption.
	ErrAddressInUse

	// ErrAddressBlocked indicates a blacklist hit.
	ErrAddressBlocked

	// ErrBadStream indicates protocol-level framing or nonce mismatch.
	ErrBadStream

	// ErrOversubscribed indicates the inbound connection cap was
	// exceeded.
	ErrOversubscribed

	// ErrPeerThrottling indicates the seed phase failed to acquire a
	// sufficient number of addresses.
	ErrPeerThrottling

	// ErrOperationFailed indicates start was called on a non-stopped
	// component, or a configuration invariant was violated.
	ErrOperationFailed

	// ErrNotFound indicates an empty host store on fetch.
	ErrNotFound
)

var codeText = map[Code]string{
	ErrSuccess:         "success",
	ErrServiceStopped:  "service stopped",
	ErrChannelStopped:  "channel stopped",
	ErrChannelTimeout:  "channel timeout",
	ErrResolveFailed:   "resolve failed",
	ErrAddressInUse:    "address in use",
	ErrAddressBlocked:  "address blocked",
	ErrBadStream:       "bad stream",
	ErrOversubscribed:  "oversubscribed",
	ErrPeerThrottling:  "peer throttling",
	ErrOperationFailed: "operation failed",
	ErrNotFound:        "not found",
}

func (c Code) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error wraps a Code with optional free-form context, satisfying the error
// interface while remaining switchable via CodeOf.
type Error struct {
	Code    Code
	Context string
}

func (e *Error) Error() string {
	if e.Context == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Context)
}

// New builds an *Error from a code and optional context string.
func New(code Code, context string) *Error {
	return &Error{Code: code, Context: context}
}

// CodeOf extracts the Code from err, defaulting to ErrOperationFailed for
// errors that did not originate in this module (the caller still gets a
// concrete code to switch on rather than an opaque wrapped error).
func CodeOf(err error) Code {
	if err == nil {
		return ErrSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrOperationFailed
}

// IsTerminal reports whether ec short-circuits per-channel state machines:
// service_stopped and channel_stopped both are.
func IsTerminal(ec Code) bool {
	return ec == ErrServiceStopped || ec == ErrChannelStopped
}

// Protocol version levels referenced throughout session/protocol
// selection logic, named after the BIPs that introduced each tier's
// behavior.
const (
	LevelMinimum uint32 = 31402
	LevelBIP31   uint32 = 60001
	LevelBIP61   uint32 = 70002

	// MinSupportedVersion and MaxSupportedVersion bound the configured
	// protocol_minimum/protocol_maximum a handshake will accept; outside
	// this range the configuration itself is invalid.
	MinSupportedVersion = LevelMinimum
	MaxSupportedVersion = LevelBIP61
)
