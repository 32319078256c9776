package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInquiryClosed     = errors.New("inquiry is closed")
	ErrAgentUnavailable  = errors.New("negotiation agent unavailable")
	ErrNoCandidates      = errors.New("no matching influencers")
)
