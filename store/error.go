package store

import "fmt"

// Error is a stable failure code scoped to the module that raised it.
// Callers branch with errors.Is against the exported sentinels.
type Error struct {
	Module string
	Code   int
	Msg    string
}

func NewError(module string, code int, msg string) *Error {
	return &Error{Module: module, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s(%d): %s", e.Module, e.Code, e.Msg)
}

var (
	ErrAlreadyExists     = NewError("store", 1, "component already exists")
	ErrNotFound          = NewError("store", 2, "component not found")
	ErrInsufficientFunds = NewError("store", 3, "insufficient funds")
)
