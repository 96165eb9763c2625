package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/fraud"
	"github.com/qpay/securegate/internal/middleware"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/service"
)

// PaymentService defines the orchestration operations required by the
// HTTP handlers.
type PaymentService interface {
	Process(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error)
	Check(ctx context.Context, identifier string, t fraud.Transaction) (fraud.Verdict, error)
}

// TransactionHandler handles transaction processing and the standalone
// fraud check.
type TransactionHandler struct {
	PaymentService PaymentService
}

// TransactionRequest represents the JSON payload for processing a
// transaction. Exactly one method-specific field is required, selected
// by the payment method.
type TransactionRequest struct {
	Amount     float64 `json:"amount"`
	Method     string  `json:"payment_method"`
	CardNumber string  `json:"card_number"`
	UPIID      string  `json:"upi_id"`
	BankCode   string  `json:"bank_code"`
	Location   string  `json:"location"`
	Device     string  `json:"device"`
}

// FraudCheckRequest represents the JSON payload for the standalone
// fraud check.
type FraudCheckRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"payment_method"`
	Location  string  `json:"location"`
	Device    string  `json:"device"`
	IPAddress string  `json:"ip_address"`
}

// Process runs one authenticated transaction attempt through the
// security pipeline.
func (h *TransactionHandler) Process(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, errs.Unauthorized("authentication required"))
		return
	}

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	result, err := h.PaymentService.Process(r.Context(), service.PaymentRequest{
		Identifier: user.Email,
		Amount:     req.Amount,
		Method:     models.PaymentMethod(req.Method),
		CardNumber: req.CardNumber,
		UPIID:      req.UPIID,
		BankCode:   req.BankCode,
		Location:   req.Location,
		Device:     req.Device,
		IPAddress:  r.RemoteAddr,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":         "Transaction Processed Successfully!",
		"transaction_id":  result.TransactionID,
		"processing_time": fmt.Sprintf("%.1f seconds", result.Latency.Seconds()),
	})
}

// Check runs the fraud engine without processing a payment. A positive
// verdict is audited and rejected with 403.
func (h *TransactionHandler) Check(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, errs.Unauthorized("authentication required"))
		return
	}

	var req FraudCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request"))
		return
	}

	verdict, err := h.PaymentService.Check(r.Context(), user.Email, fraud.Transaction{
		Amount:   req.Amount,
		Method:   models.PaymentMethod(req.Method),
		Location: req.Location,
		Device:   req.Device,
		IP:       req.IPAddress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if verdict.IsFraud {
		writeError(w, errs.Fraud(verdict.Reasons))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction is Secure!"})
}
