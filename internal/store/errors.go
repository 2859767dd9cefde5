package store

import "errors"

var (
	// ErrNotFound is returned when a lookup by ID or key misses.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateHash is returned by Insert when the content hash is already stored.
	ErrDuplicateHash = errors.New("duplicate content hash")

	// ErrDuplicateGroup is returned by CreateGroup when the name is taken.
	ErrDuplicateGroup = errors.New("group already exists")

	// ErrUnknownContentType is returned when decoding an unrecognized content type.
	ErrUnknownContentType = errors.New("unknown content type")
)
