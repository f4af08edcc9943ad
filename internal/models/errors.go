package models

import "errors"

// Failure classes. Messages in result errors/warnings are wrapped from these,
// so callers holding an error value can test them with errors.Is.
var (
	ErrDetection  = errors.New("detection failure")
	ErrExtraction = errors.New("extraction failure")
	ErrService    = errors.New("service failure")
	ErrValidation = errors.New("validation failure")
)
