package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/repository"
)

// CardRepository defines the persistence operations required by the
// card service.
type CardRepository interface {
	ExistsByNumber(ctx context.Context, cardNumber string) (bool, error)
	Create(ctx context.Context, c models.Cardholder) error
	MobileByCard(ctx context.Context, cardNumber string) (string, error)
}

// CardService manages cardholder records and mobile-number lookups for
// step-up verification.
type CardService struct {
	cards CardRepository
	log   *zap.Logger
}

// NewCardService constructs a CardService.
func NewCardService(cards CardRepository, log *zap.Logger) *CardService {
	return &CardService{cards: cards, log: log}
}

// Register stores a new card, rejecting duplicates.
func (s *CardService) Register(ctx context.Context, c models.Cardholder) error {
	c.CardNumber = normalizeCardNumber(c.CardNumber)
	if c.CardNumber == "" {
		return errs.Validation("card number is required")
	}

	exists, err := s.cards.ExistsByNumber(ctx, c.CardNumber)
	if err != nil {
		return errs.Internal("failed to check existing cards", err)
	}
	if exists {
		return errs.Duplicate("Card is already registered")
	}

	if err := s.cards.Create(ctx, c); err != nil {
		return errs.Internal("failed to save card", err)
	}
	s.log.Info("card registered", zap.String("user_email", c.UserEmail))
	return nil
}

// MobileForCard returns the mobile number registered for a card.
func (s *CardService) MobileForCard(ctx context.Context, cardNumber string) (string, error) {
	cardNumber = normalizeCardNumber(cardNumber)
	if cardNumber == "" {
		return "", errs.Validation("card number is required")
	}

	mobile, err := s.cards.MobileByCard(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return "", errs.NotFound("Card not found")
		}
		return "", errs.Internal("failed to look up card", err)
	}
	if mobile == "" {
		return "", errs.Validation("Mobile number not linked to this card")
	}
	return mobile, nil
}

// normalizeCardNumber strips spaces so formatted and unformatted card
// numbers address the same record.
func normalizeCardNumber(cardNumber string) string {
	return strings.TrimSpace(strings.ReplaceAll(cardNumber, " ", ""))
}
