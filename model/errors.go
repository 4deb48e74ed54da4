package model

import (
	"errors"
)

type ErrorKind int

const (
	ErrInternal ErrorKind = iota
	ErrMissingField
	ErrDecodeFailure
)

const (
	MissingFieldMessage  = "Fayl topilmadi: 'image' kerak"
	DecodeFailureMessage = "OpenCV decode qila olmadi"
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingField:
		return "missingField"
	case ErrDecodeFailure:
		return "decodeFailure"
	default:
		return "internal"
	}
}

// DetectError is the only error type that crosses the inference boundary.
// Message is what the client sees.
type DetectError struct {
	Kind    ErrorKind
	Message string
	Inner   error
}

func (e *DetectError) Error() string {
	return e.Message
}

func (e *DetectError) Unwrap() error {
	return e.Inner
}

func NewMissingFieldError(inner error) error {
	return &DetectError{
		Kind:    ErrMissingField,
		Message: MissingFieldMessage,
		Inner:   inner,
	}
}

func NewDecodeFailureError(inner error) error {
	return &DetectError{
		Kind:    ErrDecodeFailure,
		Message: DecodeFailureMessage,
		Inner:   inner,
	}
}

func NewInternalError(inner error) error {
	msg := "internal error"
	if inner != nil {
		msg = inner.Error()
	}
	return &DetectError{
		Kind:    ErrInternal,
		Message: msg,
		Inner:   inner,
	}
}

// KindOf reports ErrInternal for anything that is not a DetectError
func KindOf(err error) ErrorKind {
	var de *DetectError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrInternal
}
