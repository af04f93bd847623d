// Package workflow implements the shipment-processing pipeline:
//
//	Received -> Accepted -> Invoice Generated -> Payment Received
//	         -> Ready to Ship -> Dispatched
//
// Each transition updates the status and its companion flag as one atomic
// persisted write, enforces the pipeline's forward-only ordering, and emits
// a user-facing confirmation notification.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dropshipManagement/internal/notify"
	"dropshipManagement/models"
	"dropshipManagement/repository"
)

// Engine advances shipments through the processing pipeline.
type Engine struct {
	shipments repository.ShipmentRepositoryI
	notifier  notify.Notifier
	log       *zap.Logger
}

// NewEngine creates a transition engine over the given store and sink.
func NewEngine(shipments repository.ShipmentRepositoryI, notifier notify.Notifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &Engine{shipments: shipments, notifier: notifier, log: log}
}

// Accept moves a shipment from Received to Accepted.
func (e *Engine) Accept(ctx context.Context, id string) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusReceived {
			return e.reject("accept", s)
		}
		s.Status = models.StatusAccepted
		return nil
	})
}

// SavePriceDetails records the price-entry form on an Accepted shipment.
// The status is unchanged; the shipment becomes eligible for invoicing.
func (e *Engine) SavePriceDetails(ctx context.Context, id string, form models.PriceDetailsForm) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusAccepted {
			return e.reject("save price details", s)
		}
		f := form
		s.PriceDetails = &f
		s.PriceDetailsAdded = true
		if form.TrackingID != "" {
			s.TrackingNumber = form.TrackingID
		}
		return nil
	})
}

// ConfirmInvoice moves an Accepted shipment with recorded price details to
// Invoice Generated.
func (e *Engine) ConfirmInvoice(ctx context.Context, id string, form models.InvoiceForm) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusAccepted || !s.PriceDetailsAdded {
			return e.reject("confirm invoice", s)
		}
		f := form
		s.Invoice = &f
		s.Status = models.StatusInvoiceGenerated
		s.InvoiceGenerated = true
		return nil
	})
}

// RequestPay flags an invoiced shipment as awaiting payment. The status is
// unchanged.
func (e *Engine) RequestPay(ctx context.Context, id string) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusInvoiceGenerated || s.PaymentRequested {
			return e.reject("request payment", s)
		}
		s.PaymentRequested = true
		return nil
	})
}

// SavePayment verifies payment on an invoiced shipment with a pending
// payment request and moves it to Payment Received. A proof artifact
// reference is assigned.
func (e *Engine) SavePayment(ctx context.Context, id string, form models.PaymentForm) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusInvoiceGenerated || !s.PaymentRequested {
			return e.reject("save payment", s)
		}
		f := form
		s.Payment = &f
		s.Status = models.StatusPaymentReceived
		s.PaymentReceived = true
		s.PaymentProof = "proof-" + uuid.NewString()
		return nil
	})
}

// Ready moves a paid shipment to Ready to Ship.
func (e *Engine) Ready(ctx context.Context, id string) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusPaymentReceived {
			return e.reject("mark ready", s)
		}
		s.Status = models.StatusReadyToShip
		s.ReadyToShip = true
		return nil
	})
}

// Dispatch moves a ready shipment to the terminal Dispatched state.
func (e *Engine) Dispatch(ctx context.Context, id string) (*models.Shipment, error) {
	return e.transition(ctx, id, func(s *models.Shipment) error {
		if s.Status != models.StatusReadyToShip {
			return e.reject("dispatch", s)
		}
		s.Status = models.StatusDispatched
		s.Dispatched = true
		return nil
	})
}

// transition loads the shipment, applies mutate, and persists the result as
// one version-guarded write. mutate must only ever move the status forward.
func (e *Engine) transition(ctx context.Context, id string, mutate func(*models.Shipment) error) (*models.Shipment, error) {
	s, err := e.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	before := s.Status
	if err := mutate(s); err != nil {
		return nil, err
	}
	if s.Status.Rank() < before.Rank() {
		// Guards against a future mutate regression; transitions never
		// move a shipment backward.
		return nil, fmt.Errorf("%w: %s cannot move from %q back to %q", ErrInvalidTransition, s.ID, before, s.Status)
	}

	if err := e.shipments.UpdateTransition(ctx, s); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, fmt.Errorf("%w: %s", ErrConflict, id)
		default:
			return nil, fmt.Errorf("update shipment: %w", err)
		}
	}

	msg := fmt.Sprintf("Shipment %s status changed to %s", s.ID, models.DisplayStatus(s))
	if err := e.notifier.Notify(ctx, s.ID, msg); err != nil {
		e.log.Warn("notify failed", zap.String("shipment_id", s.ID), zap.Error(err))
	}
	return s, nil
}

func (e *Engine) reject(op string, s *models.Shipment) error {
	return fmt.Errorf("%w: cannot %s shipment %s while %q", ErrInvalidTransition, op, s.ID, models.DisplayStatus(s))
}
