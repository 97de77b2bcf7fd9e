package domain

import "errors"

// ErrorKind is the closed set of failures the join and token paths can
// report. The HTTP boundary decides which of them are distinguishable
// to callers.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindExpired
	KindBadPassword
	KindTokenInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindBadPassword:
		return "bad_password"
	case KindTokenInvalid:
		return "token_invalid"
	default:
		return "unknown"
	}
}

// Error carries one ErrorKind. Two Errors match under errors.Is when
// their kinds are equal.
type Error struct {
	Kind ErrorKind
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "room not found"
	case KindExpired:
		return "room has expired"
	case KindBadPassword:
		return "incorrect password"
	case KindTokenInvalid:
		return "join token invalid"
	default:
		return "unknown error"
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrRoomNotFound = &Error{Kind: KindNotFound}
	ErrRoomExpired  = &Error{Kind: KindExpired}
	ErrBadPassword  = &Error{Kind: KindBadPassword}
	ErrTokenInvalid = &Error{Kind: KindTokenInvalid}
)

// KindOf returns the kind carried by err, or 0 if err is not a domain
// error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
