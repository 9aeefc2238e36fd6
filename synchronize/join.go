// Package synchronize implements the join/synchronizer combinator used
// throughout this core to race or collect several asynchronous outcomes
// into one completion callback.
//
// Grounded on original_source's synchronize()/synchronizer<Handler> (see
// sessions/session_batch.cpp's batch-of-N connect fan-out and
// sessions/session_seed.cpp's per-seed fan-out), reimplemented as a plain
// mutex+counter rather than a templated handler wrapper, since Go has no
// direct equivalent of the C++ variadic completion-handler template.
package synchronize

import "sync"

// Policy selects when a Join's completion handler fires relative to the
// N participants it was constructed with.
type Policy int

const (
	// OnCount fires only once all N participants have reported, always
	// delivering the last-reported code (session_seed's per-seed fan-out
	// uses this: every seed attempt is allowed to fail independently,
	// the outer handler.cpp's handle_complete decides success from
	// address-count growth, not from individual seed codes).
	OnCount Policy = iota

	// OnFirstSuccess fires as soon as any participant reports a zero
	// (success) code, or once all N participants have reported non-zero
	// codes (session_batch.cpp's connect fan-out: the first established
	// channel wins the round).
	OnFirstSuccess

	// OnFirstError fires as soon as any participant reports a non-zero
	// code, or once all N participants have reported success
	// (protocol_version's 2-of-2 join: version-received and
	// verack-received must both succeed, and any single failure aborts
	// the handshake immediately).
	OnFirstError
)

// Join collects exactly N reports before or as soon as Policy is
// satisfied, then invokes its completion handler exactly once.
type Join[C comparable] struct {
	mu       sync.Mutex
	remain   int
	done     bool
	policy   Policy
	zero     C
	onDone   func(C)
	lastCode C
}

// New returns a Join expecting n reports, invoking onDone exactly once
// according to policy. zero is the value representing "success" (the
// caller's equivalent of error::success).
func New[C comparable](n int, policy Policy, zero C, onDone func(C)) *Join[C] {
	return &Join[C]{remain: n, policy: policy, zero: zero, onDone: onDone}
}

// Report records one participant's outcome. The first call that
// satisfies the Join's policy (or exhausts its count) invokes onDone;
// every call after that is a no-op.
func (j *Join[C]) Report(code C) {
	j.mu.Lock()
	if j.done {
		j.mu.Unlock()
		return
	}

	j.remain--
	j.lastCode = code
	remain := j.remain

	fire := false
	switch j.policy {
	case OnFirstSuccess:
		fire = code == j.zero || remain <= 0
	case OnFirstError:
		fire = code != j.zero || remain <= 0
	case OnCount:
		fire = remain <= 0
	}

	if fire {
		j.done = true
	}
	result := j.lastCode
	j.mu.Unlock()

	if fire {
		j.onDone(result)
	}
}
