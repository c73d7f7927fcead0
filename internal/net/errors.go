package net

import "errors"

// Approval and connection failures. Reason strings sent in
// S_OPCODE_DISCONNECT are the error texts, so a client can map them back.
var (
	ErrServerFull   = errors.New("server full")
	ErrBadApproval  = errors.New("bad approval")
	ErrRejected     = errors.New("rejected by server")
	ErrTimeout      = errors.New("connection timed out")
	ErrNotConnected = errors.New("not connected")
	ErrNoSession    = errors.New("no such session")
)

// reasonError maps a disconnect reason back to its sentinel.
func reasonError(reason string) error {
	switch reason {
	case ErrServerFull.Error():
		return ErrServerFull
	case ErrBadApproval.Error():
		return ErrBadApproval
	default:
		return ErrRejected
	}
}
