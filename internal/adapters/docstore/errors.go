package docstore

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("document id must not be empty")
)
