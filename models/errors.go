package models

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrSlugConflict      = errors.New("slug is already taken")
	ErrLocked            = errors.New("story is locked by another user")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrNoListingPage     = errors.New("no live listing page")
)
