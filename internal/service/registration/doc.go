// Package registration implements the optimistic read-check-write loop that
// adds and removes keyed entries in a list field of a parent document.
//
// Every cycle reads the parent document together with its revision, checks
// the key against the current entries, and writes the new list back with a
// replace conditioned on that revision. A writer that lost the race gets
// store.ErrRevisionConflict and the whole cycle runs again after a jittered
// exponential backoff, so a concurrent registration of the same key is seen
// on the next read and reported as domain.ErrAlreadyRegistered. No entry is
// ever lost or duplicated, and no in-process lock is involved.
package registration
