package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyCorpus     = errors.New("no analyzed files under root path")
	ErrPlanning        = errors.New("folder plan generation failed")
	ErrExtraction      = errors.New("text or metadata extraction failed")
	ErrCompletion      = errors.New("completion stream failed")
)
