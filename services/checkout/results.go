package main

import "errors"

// CheckoutErrorCode classifies the domain errors a checkout operation can
// surface to its caller.
type CheckoutErrorCode string

const (
	CodeBadRequest CheckoutErrorCode = "BAD_REQUEST"
	CodeNotFound   CheckoutErrorCode = "NOT_FOUND"
	CodeConflict   CheckoutErrorCode = "CONFLICT"
)

// CheckoutError is a structured domain error. Use cases return these for
// client-fixable, not-found, and contention outcomes; infrastructure failures
// (storage, gateway transport) are wrapped and propagated untranslated.
type CheckoutError struct {
	Code    CheckoutErrorCode `json:"code"`
	Message string            `json:"message"`
}

func (e *CheckoutError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// BadRequest creates a BAD_REQUEST checkout error
func BadRequest(message string) *CheckoutError {
	return &CheckoutError{Code: CodeBadRequest, Message: message}
}

// NotFound creates a NOT_FOUND checkout error
func NotFound(message string) *CheckoutError {
	return &CheckoutError{Code: CodeNotFound, Message: message}
}

// Conflict creates a CONFLICT checkout error
func Conflict(message string) *CheckoutError {
	return &CheckoutError{Code: CodeConflict, Message: message}
}

// AsCheckoutError extracts a CheckoutError from an error chain, if any
func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// CreateTransactionResult is the outcome of a successful create call
type CreateTransactionResult struct {
	TransactionID string            `json:"transactionId"`
	Status        TransactionStatus `json:"status"`
	TotalAmount   int64             `json:"totalAmount"`
}

// GetTransactionResult is the outcome of a status read
type GetTransactionResult struct {
	TransactionID  string            `json:"transactionId"`
	Status         TransactionStatus `json:"status"`
	TotalAmount    int64             `json:"totalAmount"`
	WompiReference *string           `json:"wompiReference"`
	ErrorMessage   *string           `json:"errorMessage"`
}

// PayTransactionResult is the outcome of a successful pay call
type PayTransactionResult struct {
	TransactionID  string            `json:"transactionId"`
	Status         TransactionStatus `json:"status"`
	WompiReference *string           `json:"wompiReference"`
	ErrorMessage   *string           `json:"errorMessage"`
}

// nullable converts an optional string column into a JSON null when empty
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
