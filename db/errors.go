package db

import (
	"errors"
	"fmt"
)

// Kind groups errors the way callers react to them.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindValidationFailed   Kind = "VALIDATION_FAILED"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindStorageFailure     Kind = "STORAGE_FAILURE"
)

// Error is the typed failure every Repo write returns. Code narrows the Kind
// (e.g. TOOL_OUT_OF_STOCK) and is stable for API clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinels compare equal to errors carrying extra detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrEmployeeNotFound = &Error{Kind: KindNotFound, Code: "EMPLOYEE_NOT_FOUND", Message: "employee not found"}
	ErrCategoryNotFound = &Error{Kind: KindNotFound, Code: "CATEGORY_NOT_FOUND", Message: "category not found"}
	ErrToolNotFound     = &Error{Kind: KindNotFound, Code: "TOOL_NOT_FOUND", Message: "tool not found"}
	ErrLoanNotFound     = &Error{Kind: KindNotFound, Code: "LOAN_NOT_FOUND", Message: "loan not found"}

	ErrToolInactive   = &Error{Kind: KindPreconditionFailed, Code: "TOOL_INACTIVE", Message: "tool is not in service"}
	ErrToolOutOfStock = &Error{Kind: KindPreconditionFailed, Code: "TOOL_OUT_OF_STOCK", Message: "no units available"}
	ErrLoanNotActive  = &Error{Kind: KindPreconditionFailed, Code: "LOAN_NOT_ACTIVE", Message: "loan is already returned or cancelled"}

	ErrDuplicateEmail   = &Error{Kind: KindValidationFailed, Code: "DUPLICATE_EMAIL", Message: "email already registered"}
	ErrDuplicateCode    = &Error{Kind: KindValidationFailed, Code: "DUPLICATE_CODE", Message: "internal code already in use"}
	ErrUnknownCategory  = &Error{Kind: KindValidationFailed, Code: "UNKNOWN_CATEGORY", Message: "category does not exist"}
	ErrInvalidDueDate   = &Error{Kind: KindValidationFailed, Code: "INVALID_DUE_DATE", Message: "due date is before loan date"}
	ErrInvalidReturn    = &Error{Kind: KindValidationFailed, Code: "INVALID_RETURN_DATE", Message: "return date is before loan date"}
	ErrInvalidQuantity  = &Error{Kind: KindValidationFailed, Code: "INVALID_QUANTITY", Message: "quantity must be >= 0"}
	ErrCodeSpaceExhaust = &Error{Kind: KindStorageFailure, Code: "CODE_GENERATION_FAILED", Message: "could not allocate a unique code"}
)

func invalid(field, msg string) *Error {
	return &Error{Kind: KindValidationFailed, Code: "INVALID_ARGUMENT", Message: field + ": " + msg}
}

func storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorageFailure, Code: "STORAGE_FAILURE", Message: op, Err: err}
}

// KindOf returns the Kind of err, or "" for errors that did not come from Repo.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
