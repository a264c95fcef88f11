package service

import "errors"

var (
	// ErrInvalidInput is returned for blank queries and missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a category or question id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrDataUnavailable is returned when the corpus cannot be loaded.
	ErrDataUnavailable = errors.New("faq data unavailable")

	// ErrDuplicateID is returned when a new question reuses an existing id.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrCorpusFull is returned when metadata.maxQuestions would be exceeded.
	ErrCorpusFull = errors.New("corpus question limit reached")
)
