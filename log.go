package network

import "github.com/btcsuite/btclog"

// log is the package-wide subsystem logger, following the lnd-style
// convention of a package-level btclog.Logger swapped in by the
// host application via UseLogger. It defaults to a disabled backend so
// importing this package is silent until a caller wires one up.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by this package and its
// children that accept one at construction time.
func UseLogger(logger btclog.Logger) {
	log = logger
}
