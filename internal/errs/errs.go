// Package errs defines the domain error taxonomy and its mapping to
// HTTP status codes, so handlers translate failures in one place.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation indicates missing or malformed client input.
	CodeValidation Code = "VALIDATION"

	// CodeBadCredentials indicates a failed login attempt.
	CodeBadCredentials Code = "BAD_CREDENTIALS"

	// CodeDuplicate indicates a uniqueness conflict (re-registration).
	CodeDuplicate Code = "DUPLICATE"

	// CodeNotFound indicates a missing resource.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthorized indicates an invalid, expired or unresolvable token.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeRateLimited indicates the client exceeded the admission window.
	CodeRateLimited Code = "RATE_LIMITED"

	// CodeOTPCooldown indicates a resend attempt inside the cooldown window.
	CodeOTPCooldown Code = "OTP_COOLDOWN"

	// CodeOTPNotFound indicates no challenge exists for the composite key.
	CodeOTPNotFound Code = "OTP_NOT_FOUND_OR_EXPIRED"

	// CodeOTPExpired indicates the challenge outlived its TTL.
	CodeOTPExpired Code = "OTP_EXPIRED"

	// CodeOTPMismatch indicates a wrong code; the challenge is retained.
	CodeOTPMismatch Code = "OTP_MISMATCH"

	// CodeFraud indicates a positive fraud verdict.
	CodeFraud Code = "FRAUD_DETECTED"

	// CodeHighRisk indicates the amount exceeds the manual-verification ceiling.
	CodeHighRisk Code = "MANUAL_VERIFICATION_REQUIRED"

	// CodeIntegrity indicates an AEAD authentication failure on decryption.
	CodeIntegrity Code = "INTEGRITY"

	// CodeTransactionFailed indicates a processed but failed transaction.
	CodeTransactionFailed Code = "TRANSACTION_FAILED"

	// CodeInternal indicates an unexpected server-side failure.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error carrying a code, a client-safe message and,
// for fraud verdicts, the triggered reasons.
type Error struct {
	Code    Code
	Message string
	Reasons []string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Reasons) > 0 {
		msg += ": " + strings.Join(e.Reasons, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a client-correctable input error.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// BadCredentials creates a failed-login error.
func BadCredentials(message string) *Error {
	return &Error{Code: CodeBadCredentials, Message: message}
}

// Duplicate creates a uniqueness-conflict error.
func Duplicate(message string) *Error {
	return &Error{Code: CodeDuplicate, Message: message}
}

// NotFound creates a missing-resource error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Unauthorized creates an authentication error.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// RateLimited creates an admission-control rejection.
func RateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Message: message}
}

// OTPCooldown creates a resend-too-soon error.
func OTPCooldown(message string) *Error {
	return &Error{Code: CodeOTPCooldown, Message: message}
}

// OTPNotFound creates a missing-or-expired challenge error.
func OTPNotFound(message string) *Error {
	return &Error{Code: CodeOTPNotFound, Message: message}
}

// OTPExpired creates a challenge-expired error.
func OTPExpired(message string) *Error {
	return &Error{Code: CodeOTPExpired, Message: message}
}

// OTPMismatch creates a wrong-code error.
func OTPMismatch(message string) *Error {
	return &Error{Code: CodeOTPMismatch, Message: message}
}

// Fraud creates a positive-verdict error carrying the triggered reasons.
func Fraud(reasons []string) *Error {
	return &Error{
		Code:    CodeFraud,
		Message: "Potential Fraud Detected!",
		Reasons: reasons,
	}
}

// HighRisk creates a manual-verification rejection.
func HighRisk(message string) *Error {
	return &Error{Code: CodeHighRisk, Message: message}
}

// Integrity creates an AEAD authentication failure. The message must
// never contain plaintext material.
func Integrity(message string, err error) *Error {
	return &Error{Code: CodeIntegrity, Message: message, Err: err}
}

// TransactionFailed creates a processed-but-failed transaction error.
func TransactionFailed(message string) *Error {
	return &Error{Code: CodeTransactionFailed, Message: message}
}

// Internal creates an unexpected server-side error.
func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the domain code from err, or CodeInternal for
// errors outside the taxonomy.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a domain error onto its HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeBadCredentials, CodeDuplicate,
		CodeOTPCooldown, CodeOTPNotFound, CodeOTPExpired, CodeOTPMismatch,
		CodeTransactionFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeFraud, CodeHighRisk:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
