// Package errs holds the business error kinds shared by the model layer.
// Storage and services return these for expected conditions; anything else
// is treated as an internal failure by the transport layer.
package errs

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthentication
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Authentication(msg string) error {
	return &Error{Kind: KindAuthentication, Msg: msg}
}

// KindOf reports the kind of err, unwrapping as needed. Errors that do not
// carry a kind are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
