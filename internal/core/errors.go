package core

import "fmt"

// Error is the single failure type raised by the engine core. Callers tell
// causes apart by Op and message, not by type.
type Error struct {
	Op    string // Operation that failed, e.g. "fsm.NewTransition"
	Msg   string
	Cause error
}

// Errorf creates an Error for op with a formatted message.
func Errorf(op, format string, args ...any) *Error {
	return &Error{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error for op that carries cause.
func Wrap(cause error, op, format string, args ...any) *Error {
	return &Error{Op: op, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}
