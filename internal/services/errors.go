package services

import (
	"errors"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDuplicate        = errors.New("duplicate")
)

// Error is the typed failure returned by Catalog operations.
type Error struct {
	Kind   error
	Msg    string
	Fields validate.Errs
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Msg + ": " + e.Fields.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func validationErr(err error) error {
	var fields validate.Errs
	if errors.As(err, &fields) {
		return &Error{Kind: ErrValidation, Msg: "validation failed", Fields: fields}
	}
	return &Error{Kind: ErrValidation, Msg: err.Error()}
}

func invalidField(field, msg string) error {
	return &Error{Kind: ErrValidation, Msg: "validation failed", Fields: validate.Errs{{Field: field, Msg: msg}}}
}

func notFound(entity string) error {
	return &Error{Kind: ErrNotFound, Msg: entity + " not found"}
}

func denied(msg string) error {
	return &Error{Kind: ErrPermissionDenied, Msg: msg}
}

func duplicate(msg string) error {
	return &Error{Kind: ErrDuplicate, Msg: msg}
}
