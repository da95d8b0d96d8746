package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores and clients.
// Services translate them into coded domain errors.
//
//   - ErrNotFound: row or item does not exist
//   - ErrConflict: concurrent writer changed the row first
//   - ErrInvalidState: entity is in the wrong lifecycle state for the operation
//   - ErrUnavailable: backing service temporarily unreachable
//
// Input validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
