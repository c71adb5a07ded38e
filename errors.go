package uvgrtp

import "errors"

// Error codes surfaced by the public API, per the RFC 3550 control plane
// error taxonomy: structural failures are rejected before any table
// mutation, policy rejections are silent, and only self-collision after
// SSRC regeneration bubbles up as ErrSsrcCollision.
var (
	ErrInvalidValue     = errors.New("uvgrtp: invalid value")
	ErrMemory           = errors.New("uvgrtp: memory error")
	ErrSend             = errors.New("uvgrtp: send error")
	ErrNotFound         = errors.New("uvgrtp: not found")
	ErrSsrcCollision    = errors.New("uvgrtp: ssrc collision")
	ErrGeneric          = errors.New("uvgrtp: generic error")
	ErrPacketNotHandled = errors.New("uvgrtp: packet not handled")
)
