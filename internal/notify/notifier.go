// Package notify delivers the user-facing confirmations emitted after every
// successful shipment transition. The workflow engine treats delivery as
// best-effort: a failing sink never fails the transition.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is the sink the workflow engine calls after each transition.
type Notifier interface {
	Notify(ctx context.Context, shipmentID, message string) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a Notifier backed by the given logger.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, shipmentID, message string) error {
	n.log.Info("shipment notification",
		zap.String("shipment_id", shipmentID),
		zap.String("message", message))
	return nil
}

type multiNotifier struct {
	sinks []Notifier
}

// Multi fans a notification out to every sink, returning the first error.
func Multi(sinks ...Notifier) Notifier {
	return &multiNotifier{sinks: sinks}
}

func (m *multiNotifier) Notify(ctx context.Context, shipmentID, message string) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, shipmentID, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
