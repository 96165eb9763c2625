// Package sms dispatches one-time codes to mobile numbers. Delivery
// mechanics are external; the simulated dispatcher only logs the event
// and never logs the message body.
package sms

import (
	"context"

	"go.uber.org/zap"
)

// SimDispatcher is a dispatcher for environments without an SMS
// provider. It records the dispatch with a masked destination.
type SimDispatcher struct {
	log *zap.Logger
}

// NewSimDispatcher creates a SimDispatcher.
func NewSimDispatcher(log *zap.Logger) *SimDispatcher {
	return &SimDispatcher{log: log}
}

// SendCode simulates SMS delivery.
func (d *SimDispatcher) SendCode(_ context.Context, mobile, _ string) error {
	masked := "****"
	if len(mobile) > 4 {
		masked = "******" + mobile[len(mobile)-4:]
	}
	d.log.Info("SMS dispatched", zap.String("mobile", masked))
	return nil
}
