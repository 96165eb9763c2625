// Package models defines the core data structures for users, cards,
// transactions and fraud audit records.
package models

import "time"

// PaymentMethod is the closed set of supported payment instruments.
type PaymentMethod string

const (
	// MethodCard is a debit/credit card payment.
	MethodCard PaymentMethod = "card"
	// MethodUPI is a UPI handle payment.
	MethodUPI PaymentMethod = "upi"
	// MethodNetBanking is a net-banking payment routed by bank code.
	MethodNetBanking PaymentMethod = "netbanking"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodNetBanking:
		return true
	}
	return false
}

// Code returns the numeric feature code used by the fraud classifier
// (0: card, 1: upi, 2: netbanking). Unknown methods map to -1.
func (m PaymentMethod) Code() int {
	switch m {
	case MethodCard:
		return 0
	case MethodUPI:
		return 1
	case MethodNetBanking:
		return 2
	}
	return -1
}

// Transaction statuses.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// User represents a registered account. The password is stored as an
// AEAD ciphertext together with the nonce and key that produced it.
type User struct {
	// Name is the display name chosen at registration.
	Name string
	// Email is one of the two unique login identifiers.
	Email string
	// Mobile is the other unique login identifier.
	Mobile string
	// Password is the base64 AEAD ciphertext of the password.
	Password string
	// Nonce is the base64 nonce used to produce Password.
	Nonce string
	// EncryptionKey is the base64 key used to produce Password.
	EncryptionKey string
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time
}

// Cardholder links a payment card to the mobile number that receives
// step-up OTP challenges.
type Cardholder struct {
	CardNumber     string
	CardholderName string
	Expiry         string
	Mobile         string
	UserEmail      string
}

// Transaction is the immutable record persisted once per accepted
// payment attempt, successful or failed.
type Transaction struct {
	// TransactionID is the unique identifier returned to the client.
	TransactionID string
	// UserIdentifier is the login identifier of the paying user.
	UserIdentifier string
	Amount         float64
	Method         PaymentMethod
	// Status is StatusSuccess or StatusFailed.
	Status   string
	BankCode string
	// EncryptedData is the AEAD-encrypted human-readable descriptor.
	EncryptedData string
	CreatedAt     time.Time
}

// FraudLog is the audit record persisted for every positive fraud verdict.
type FraudLog struct {
	UserIdentifier string
	Amount         float64
	Method         PaymentMethod
	Location       string
	Device         string
	IPAddress      string
	Reasons        []string
	CreatedAt      time.Time
}

// Bank is an entry in the static net-banking directory.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
