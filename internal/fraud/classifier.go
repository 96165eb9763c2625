package fraud

import "math"

// sample is one labelled observation in the reference training set.
type sample struct {
	amount     float64
	methodCode int
	fraud      bool
}

// referenceSet is the fixed training data the production model was
// fitted on. Method codes: 0 card, 1 upi, 2 netbanking.
var referenceSet = []sample{
	{100, 0, false},
	{5000, 1, true},
	{12000, 1, true},
	{200, 0, false},
	{7500, 2, true},
	{30000, 2, true},
}

// NearestNeighbor is a 1-NN classifier over the reference training set.
// It is constructed explicitly and immutable afterwards, so a single
// instance can be shared by reference across requests.
type NearestNeighbor struct {
	samples []sample
}

// NewNearestNeighbor builds the classifier from the reference set.
func NewNearestNeighbor() *NearestNeighbor {
	samples := make([]sample, len(referenceSet))
	copy(samples, referenceSet)
	return &NearestNeighbor{samples: samples}
}

// Predict returns the label of the closest training sample in the
// (amount, method code) feature space.
func (c *NearestNeighbor) Predict(amount float64, methodCode int) bool {
	best := math.MaxFloat64
	fraud := false
	for _, s := range c.samples {
		da := amount - s.amount
		dm := float64(methodCode - s.methodCode)
		d := da*da + dm*dm
		if d < best {
			best = d
			fraud = s.fraud
		}
	}
	return fraud
}
