package http

import (
	"net/http"

	"github.com/qpay/securegate/internal/models"
)

// banks is the static net-banking directory.
var banks = []models.Bank{
	{Name: "HDFC Bank", Code: "HDFC123"},
	{Name: "State Bank of India", Code: "SBI456"},
	{Name: "ICICI Bank", Code: "ICICI789"},
	{Name: "Axis Bank", Code: "AXIS321"},
	{Name: "Kotak Mahindra Bank", Code: "KOTAK654"},
	{Name: "Punjab National Bank", Code: "PNB987"},
}

// BankHandler serves the static bank roster.
type BankHandler struct{}

// List returns the supported net-banking institutions.
func (h *BankHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.Bank{"banks": banks})
}
