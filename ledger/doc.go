// Package ledger records allocations that crossed a boundary outward.
//
// Every owned text or opaque handle handed to a caller is acquired in a
// Ledger and must come back exactly once through its release operation:
//
//	texts := ledger.New[uintptr]("c", metrics)
//	texts.Acquire(addr, ledger.KindText, size)
//	...
//	alloc := texts.Release("release_owned_text", addr) // fails fast on a second call
//
// A release of an unknown key or a second release of the same key is a
// contract violation and panics with an *errors.Error. Live and Stats expose
// the outstanding set so tests can verify there is no leak.
//
// Metrics mirrors the ledger into Prometheus counters labelled by boundary
// and allocation kind.
package ledger
