package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and feed adapters return
// these (optionally wrapped) so services can translate them into soft
// "no match" outcomes instead of failures.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row does not exist in store
// - ErrConflict: uniqueness invariant would be violated
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: collaborator temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
