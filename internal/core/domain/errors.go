package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrHandoffNotFound     = errors.New("handoff not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

type ExtractionErrorKind string

const (
	ExtractionUnreadable     ExtractionErrorKind = "unreadable"
	ExtractionOCRUnavailable ExtractionErrorKind = "ocr_unavailable"
	ExtractionNoText         ExtractionErrorKind = "no_text"
)

// ExtractionError is returned by text extractors. Callers degrade to an empty
// extraction instead of failing the request.
type ExtractionError struct {
	Kind     ExtractionErrorKind
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return "extraction error"
	}
	if e.Err == nil {
		return fmt.Sprintf("extract %s: %s", e.Filename, e.Kind)
	}
	return fmt.Sprintf("extract %s: %s: %v", e.Filename, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewExtractionError(kind ExtractionErrorKind, filename string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Filename: filename, Err: err}
}

// AsExtractionError reports whether err carries an *ExtractionError.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr, true
	}
	return nil, false
}
