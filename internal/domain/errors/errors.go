package errors

import (
	"errors"
	"fmt"
)

// Kind classifies business outcomes so callers can branch without matching messages.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindForbidden  Kind = "FORBIDDEN"
	KindValidation Kind = "VALIDATION"
	KindExternal   Kind = "EXTERNAL"
	KindUnverified Kind = "UNVERIFIED"
)

// Error is a typed business error carrying a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels and errors sharing the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Kind sentinels. errors.Is(err, ErrConflict) holds for every conflict.
var (
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict"}
	ErrForbidden  = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrExternal   = &Error{Kind: KindExternal, Message: "external failure"}
	ErrUnverified = &Error{Kind: KindUnverified, Message: "unverified"}
)

// Code sentinels for outcomes callers commonly single out.
var (
	ErrOutOfStock         = &Error{Kind: KindConflict, Code: "OUT_OF_STOCK", Message: "out of stock"}
	ErrAlreadyClaimed     = &Error{Kind: KindConflict, Code: "ALREADY_CLAIMED", Message: "item already claimed"}
	ErrInvalidTransition  = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "invalid status transition"}
	ErrOrderNotPending    = &Error{Kind: KindConflict, Code: "ORDER_NOT_PENDING", Message: "order is not pending"}
	ErrDuplicatePayment   = &Error{Kind: KindConflict, Code: "DUPLICATE_PAYMENT", Message: "payment already settled for order"}
	ErrPromotionCodeTaken = &Error{Kind: KindConflict, Code: "PROMOTION_CODE_TAKEN", Message: "promotion code already in use"}
)

// New builds an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf reports the kind of err, or an empty kind for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As exposes the typed error when present.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func UserNotFound(id int64) *Error {
	return New(KindNotFound, "USER_NOT_FOUND", fmt.Sprintf("user %d not found", id))
}

func ProductNotFound(id int64) *Error {
	return New(KindNotFound, "PRODUCT_NOT_FOUND", fmt.Sprintf("product %d not found", id))
}

func OrderNotFound(id int64) *Error {
	return New(KindNotFound, "ORDER_NOT_FOUND", fmt.Sprintf("order %d not found", id))
}

func OrderItemNotFound(id int64) *Error {
	return New(KindNotFound, "ORDER_ITEM_NOT_FOUND", fmt.Sprintf("order item %d not found", id))
}

func PromotionNotFound(id int64) *Error {
	return New(KindNotFound, "PROMOTION_NOT_FOUND", fmt.Sprintf("promotion %d not found", id))
}

func PaymentNotFound(orderID int64) *Error {
	return New(KindNotFound, "PAYMENT_NOT_FOUND", fmt.Sprintf("payment for order %d not found", orderID))
}

func OutOfStock(productID int64) *Error {
	return New(KindConflict, "OUT_OF_STOCK", fmt.Sprintf("product %d is out of stock", productID))
}

func ProductUnavailable(productID int64) *Error {
	return New(KindConflict, "PRODUCT_UNAVAILABLE", fmt.Sprintf("product %d is not available", productID))
}

func AlreadyClaimed(itemID int64) *Error {
	return New(KindConflict, "ALREADY_CLAIMED", fmt.Sprintf("order item %d is claimed by another cook", itemID))
}

func InvalidTransition(from, to string) *Error {
	return New(KindConflict, "INVALID_TRANSITION", fmt.Sprintf("invalid transition %s -> %s", from, to))
}

func OrderNotPending(id int64) *Error {
	return New(KindConflict, "ORDER_NOT_PENDING", fmt.Sprintf("order %d is not pending", id))
}

func OrderNotInKitchen(id int64) *Error {
	return New(KindConflict, "ORDER_NOT_IN_KITCHEN", fmt.Sprintf("order %d is not in the kitchen queue", id))
}

func Forbidden(message string) *Error {
	return New(KindForbidden, "FORBIDDEN", message)
}

func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION_ERROR", message)
}

func ExternalFailure(message string, err error) *Error {
	e := New(KindExternal, "EXTERNAL_FAILURE", message)
	e.Err = err
	return e
}

func Unverified(err error) *Error {
	e := New(KindUnverified, "UNVERIFIED", "payload failed verification")
	e.Err = err
	return e
}
