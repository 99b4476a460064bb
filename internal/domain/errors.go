package domain

import "errors"

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindForbidden
	KindConfiguration
	KindConflict
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConfiguration:
		return "configuration"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error 业务错误，Msg 原样返回给用户
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func ValidationError(msg string) error    { return &Error{Kind: KindValidation, Msg: msg} }
func PreconditionError(msg string) error  { return &Error{Kind: KindPrecondition, Msg: msg} }
func NotFoundError(msg string) error      { return &Error{Kind: KindNotFound, Msg: msg} }
func ForbiddenError(msg string) error     { return &Error{Kind: KindForbidden, Msg: msg} }
func ConfigurationError(msg string) error { return &Error{Kind: KindConfiguration, Msg: msg} }
func ConflictError(msg string) error      { return &Error{Kind: KindConflict, Msg: msg} }
func UnauthorizedError(msg string) error  { return &Error{Kind: KindUnauthorized, Msg: msg} }

// KindOf 非业务错误（存储故障等）一律视为 KindInternal
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ErrDuplicateEmail 唯一索引冲突，由 repo 返回
var ErrDuplicateEmail = errors.New("servicecircle: email already registered")
