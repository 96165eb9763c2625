package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/models"
)

// CardService defines the card operations required by the HTTP handlers.
type CardService interface {
	Register(ctx context.Context, c models.Cardholder) error
	MobileForCard(ctx context.Context, cardNumber string) (string, error)
}

// CardHandler handles card registration and mobile-number lookups.
type CardHandler struct {
	CardService CardService
}

// CardRegisterRequest represents the JSON payload for card registration.
type CardRegisterRequest struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	Expiry         string `json:"expiry"`
	Mobile         string `json:"mobile_number"`
	UserEmail      string `json:"user_email"`
}

// CardNumberRequest represents the JSON payload for a mobile lookup.
type CardNumberRequest struct {
	CardNumber string `json:"card_number"`
}

// Register handles card registration requests.
func (h *CardHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CardRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	err := h.CardService.Register(r.Context(), models.Cardholder{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		Expiry:         req.Expiry,
		Mobile:         req.Mobile,
		UserEmail:      req.UserEmail,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card registered successfully"})
}

// GetMobileNumber returns the mobile number registered for a card.
func (h *CardHandler) GetMobileNumber(w http.ResponseWriter, r *http.Request) {
	var req CardNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	mobile, err := h.CardService.MobileForCard(r.Context(), req.CardNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mobile_number": mobile})
}
