package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dropshipManagement/models"
)

// ErrVersionConflict is returned when a transition write loses against a
// concurrent update of the same shipment.
var ErrVersionConflict = errors.New("shipment version conflict")

const shipmentColumns = `id, tracking_number, request_date, customer_name, destination, estimated_delivery,
status, submitted_by, price_details_added, invoice_generated, payment_requested, payment_received,
ready_to_ship, dispatched, payment_proof, version, sender_name, sender_phone, receiver_name,
receiver_phone, courier, package_method, weight_kg, payment_mode, notes,
price_details, invoice_info, payment_info`

// ShipmentRepository is the SQLite-backed store for Shipment entities.
type ShipmentRepository struct {
	db *sql.DB
}

// NewShipmentRepository creates a new ShipmentRepository.
func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// NewShipmentID returns a fresh back-office shipment identifier, e.g. "SP-4F21A8C0".
func NewShipmentID() string {
	return "SP-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create inserts a new shipment. Status defaults to 'Received' and an ID is
// generated if empty.
func (r *ShipmentRepository) Create(ctx context.Context, s *models.Shipment) (*models.Shipment, error) {
	if s == nil {
		return nil, errors.New("shipment is nil")
	}
	if s.ID == "" {
		s.ID = NewShipmentID()
	}
	if s.Status == "" {
		s.Status = models.StatusReceived
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Insert and query back to capture request_date and defaults.
	_, err := r.db.ExecContext(ctx, `INSERT INTO shipments
(id, tracking_number, customer_name, destination, estimated_delivery, status, submitted_by,
 sender_name, sender_phone, receiver_name, receiver_phone, courier, package_method, weight_kg, payment_mode, notes)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.TrackingNumber, s.CustomerName, s.Destination, s.EstimatedDelivery, string(s.Status), s.SubmittedBy,
		s.Details.SenderName, s.Details.SenderPhone, s.Details.ReceiverName, s.Details.ReceiverPhone,
		s.Details.Courier, s.Details.PackageMethod, s.Details.WeightKG, s.Details.PaymentMode, s.Details.Notes)
	if err != nil {
		return nil, err
	}
	s2, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if s2 == nil {
		return nil, fmt.Errorf("created shipment not found: id=%s", s.ID)
	}
	return s2, nil
}

// GetByID fetches a shipment by its ID. Returns (nil, nil) when not found.
func (r *ShipmentRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`, id)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// UpdateTransition writes the shipment's transition state (status, flags,
// proof, captured forms) in a single UPDATE guarded by the version the
// caller read. On success s.Version reflects the stored version.
func (r *ShipmentRepository) UpdateTransition(ctx context.Context, s *models.Shipment) error {
	if s == nil {
		return errors.New("shipment is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	priceJSON, err := marshalNullable(s.PriceDetails)
	if err != nil {
		return err
	}
	invoiceJSON, err := marshalNullable(s.Invoice)
	if err != nil {
		return err
	}
	paymentJSON, err := marshalNullable(s.Payment)
	if err != nil {
		return err
	}
	var proof sql.NullString
	if s.PaymentProof != "" {
		proof = sql.NullString{String: s.PaymentProof, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `UPDATE shipments SET
status = ?, tracking_number = ?, price_details_added = ?, invoice_generated = ?, payment_requested = ?,
payment_received = ?, ready_to_ship = ?, dispatched = ?, payment_proof = ?,
price_details = ?, invoice_info = ?, payment_info = ?, version = version + 1
WHERE id = ? AND version = ?`,
		string(s.Status), s.TrackingNumber, s.PriceDetailsAdded, s.InvoiceGenerated, s.PaymentRequested,
		s.PaymentReceived, s.ReadyToShip, s.Dispatched, proof,
		priceJSON, invoiceJSON, paymentJSON, s.ID, s.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or someone else updated it first.
		cur, err := r.GetByID(ctx, s.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return sql.ErrNoRows
		}
		return ErrVersionConflict
	}
	s.Version++
	return nil
}

// marshalNullable JSON-encodes v for a nullable TEXT column; nil pointers
// become SQL NULL.
func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *models.PriceDetailsForm:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *models.InvoiceForm:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *models.PaymentForm:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// rowScanner lets scanShipment work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var s models.Shipment
	var status string
	var proof, priceJSON, invoiceJSON, paymentJSON sql.NullString
	err := row.Scan(
		&s.ID, &s.TrackingNumber, &s.RequestDate, &s.CustomerName, &s.Destination, &s.EstimatedDelivery,
		&status, &s.SubmittedBy, &s.PriceDetailsAdded, &s.InvoiceGenerated, &s.PaymentRequested, &s.PaymentReceived,
		&s.ReadyToShip, &s.Dispatched, &proof, &s.Version, &s.Details.SenderName, &s.Details.SenderPhone,
		&s.Details.ReceiverName, &s.Details.ReceiverPhone, &s.Details.Courier, &s.Details.PackageMethod,
		&s.Details.WeightKG, &s.Details.PaymentMode, &s.Details.Notes,
		&priceJSON, &invoiceJSON, &paymentJSON)
	if err != nil {
		return nil, err
	}
	s.Status = models.ShipmentStatus(status)
	if proof.Valid {
		s.PaymentProof = proof.String
	}
	if priceJSON.Valid {
		var f models.PriceDetailsForm
		if err := json.Unmarshal([]byte(priceJSON.String), &f); err != nil {
			return nil, fmt.Errorf("decode price_details for %s: %w", s.ID, err)
		}
		s.PriceDetails = &f
	}
	if invoiceJSON.Valid {
		var f models.InvoiceForm
		if err := json.Unmarshal([]byte(invoiceJSON.String), &f); err != nil {
			return nil, fmt.Errorf("decode invoice_info for %s: %w", s.ID, err)
		}
		s.Invoice = &f
	}
	if paymentJSON.Valid {
		var f models.PaymentForm
		if err := json.Unmarshal([]byte(paymentJSON.String), &f); err != nil {
			return nil, fmt.Errorf("decode payment_info for %s: %w", s.ID, err)
		}
		s.Payment = &f
	}
	return &s, nil
}
