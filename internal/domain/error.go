package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotSignedIn        = errors.New("no signed-in identity")
	ErrEntitlementBlocked = errors.New("generation quota exhausted or renewal due")
	ErrGenerationBusy     = errors.New("a generation is already in flight for this user")
	ErrStorage            = errors.New("durable storage write failed")
	ErrNetwork            = errors.New("profile backend unreachable")
	ErrPromptTooLong      = errors.New("prompt exceeds provider character limit")
	ErrInvalidExecContext = errors.New("invalid executor passed to repository")
)
