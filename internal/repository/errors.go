// Package repository provides PostgreSQL persistence for users, cards,
// transactions, fraud audit logs and OTP challenges.
package repository

import "errors"

// Sentinel errors shared by the repositories.
var (
	// ErrUserNotFound is returned when no account matches an identifier.
	ErrUserNotFound = errors.New("repository: user not found")
	// ErrCardNotFound is returned when no cardholder matches a card number.
	ErrCardNotFound = errors.New("repository: card not found")
)
