// SPDX-License-Identifier: EPL-2.0

// Package mixbus holds the set of active queues and mixes them into the
// output buffer.
//
// Membership changes are serialized on a mutex and published as a fresh,
// immutable snapshot through an atomic pointer. Drain loads the snapshot
// once per period, so it never waits for a writer and never sees a half
// updated set.
package mixbus
