// Package fraud scores transactions by combining a learned classifier
// signal with deterministic business rules into a verdict plus reasons.
package fraud

import "github.com/qpay/securegate/internal/models"

// Rule thresholds and denylists, matching the production rule set.
const highAmountThreshold = 10000

// Reasons attached by the deterministic rules.
const (
	ReasonHighAmount      = "High transaction amount"
	ReasonUnusualLocation = "Unusual location"
	ReasonUnknownDevice   = "Unrecognized device"
)

// Transaction is the feature set a verdict is computed from.
type Transaction struct {
	Amount   float64
	Method   models.PaymentMethod
	Location string
	Device   string
	IP       string
}

// Verdict is the scoring outcome: a binary decision and the
// human-readable reasons from every triggered rule. The classifier
// contributes no textual reason on its own.
type Verdict struct {
	IsFraud bool     `json:"is_fraud"`
	Reasons []string `json:"reasons"`
}

// Classifier is a pluggable scoring function over the (amount,
// method code) feature vector. Implementations must be safe for
// concurrent use after construction.
type Classifier interface {
	Predict(amount float64, methodCode int) bool
}

// Engine combines the classifier with the deterministic rules. The rule
// set is immutable after construction and the engine may be shared by
// reference across requests without locking.
type Engine struct {
	classifier       Classifier
	deniedLocations  map[string]struct{}
	highAmount       float64
	suspiciousDevice string
}

// NewEngine creates an Engine around the given classifier.
func NewEngine(classifier Classifier) *Engine {
	return &Engine{
		classifier: classifier,
		deniedLocations: map[string]struct{}{
			"Russia":      {},
			"North Korea": {},
			"Iran":        {},
		},
		highAmount:       highAmountThreshold,
		suspiciousDevice: "Unknown",
	}
}

// Score computes the verdict for a transaction. The final decision is
// the logical OR of the classifier signal and every rule; reasons
// accumulate from the triggered rules in a fixed order.
func (e *Engine) Score(t Transaction) Verdict {
	v := Verdict{
		IsFraud: e.classifier.Predict(t.Amount, t.Method.Code()),
	}

	if t.Amount > e.highAmount {
		v.IsFraud = true
		v.Reasons = append(v.Reasons, ReasonHighAmount)
	}
	if _, denied := e.deniedLocations[t.Location]; denied {
		v.IsFraud = true
		v.Reasons = append(v.Reasons, ReasonUnusualLocation)
	}
	if t.Device == e.suspiciousDevice {
		v.IsFraud = true
		v.Reasons = append(v.Reasons, ReasonUnknownDevice)
	}

	return v
}
