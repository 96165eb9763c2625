package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qpay/securegate/internal/errs"
)

// OTPService defines the step-up verification operations required by
// the HTTP handlers.
type OTPService interface {
	// Send resolves the card's registered mobile number and issues a
	// challenge bound to the transaction.
	Send(ctx context.Context, cardNumber, transactionID string) (mobile, txnID string, err error)
	// Verify checks the code for the (mobile, transaction) pair.
	Verify(ctx context.Context, mobile, transactionID, code string) error
}

// OTPHandler handles challenge issuance and verification.
type OTPHandler struct {
	OTPService OTPService
}

// OTPSendRequest represents the JSON payload for sending a code.
type OTPSendRequest struct {
	CardNumber    string `json:"card_number"`
	TransactionID string `json:"transaction_id"`
}

// OTPVerifyRequest represents the JSON payload for verifying a code.
type OTPVerifyRequest struct {
	TransactionID string `json:"transaction_id"`
	Mobile        string `json:"mobile_number"`
	OTP           string `json:"otp"`
}

// Send fetches the registered mobile number linked to the card and
// dispatches a one-time code bound to the transaction.
func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req OTPSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardNumber == "" {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	mobile, txnID, err := h.OTPService.Send(r.Context(), req.CardNumber, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "OTP sent successfully",
		"mobile_number":  mobile,
		"transaction_id": txnID,
	})
}

// Verify checks the submitted code for the (mobile, transaction) pair.
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	if err := h.OTPService.Verify(r.Context(), req.Mobile, req.TransactionID, req.OTP); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "OTP verified successfully",
		"transaction_id": req.TransactionID,
	})
}
