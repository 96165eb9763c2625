package service

import (
	"context"

	"github.com/google/uuid"
)

// CardLookup resolves the mobile number registered for a card.
type CardLookup interface {
	MobileForCard(ctx context.Context, cardNumber string) (string, error)
}

// ChallengeManager issues and verifies step-up challenges.
type ChallengeManager interface {
	Send(ctx context.Context, mobile, transactionID string) error
	Verify(ctx context.Context, mobile, transactionID, code string) error
}

// OTPService ties card lookups to challenge issuance.
type OTPService struct {
	cards     CardLookup
	challenge ChallengeManager
}

// NewOTPService constructs an OTPService.
func NewOTPService(cards CardLookup, challenge ChallengeManager) *OTPService {
	return &OTPService{cards: cards, challenge: challenge}
}

// Send resolves the registered mobile number for the card and issues a
// challenge bound to the transaction. When the client provides no
// transaction ID a fresh one is generated so the challenge stays scoped.
func (s *OTPService) Send(ctx context.Context, cardNumber, transactionID string) (mobile, txnID string, err error) {
	mobile, err = s.cards.MobileForCard(ctx, cardNumber)
	if err != nil {
		return "", "", err
	}

	txnID = transactionID
	if txnID == "" {
		txnID = uuid.NewString()
	}

	if err := s.challenge.Send(ctx, mobile, txnID); err != nil {
		return "", "", err
	}
	return mobile, txnID, nil
}

// Verify checks the code for the (mobile, transaction) pair.
func (s *OTPService) Verify(ctx context.Context, mobile, transactionID, code string) error {
	return s.challenge.Verify(ctx, mobile, transactionID, code)
}
