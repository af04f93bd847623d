package models

// ShipmentStatus represents where a shipment sits in the processing pipeline.
type ShipmentStatus string

const (
	StatusReceived         ShipmentStatus = "Received"
	StatusAccepted         ShipmentStatus = "Accepted"
	StatusInvoiceGenerated ShipmentStatus = "Invoice Generated"
	StatusPaymentReceived  ShipmentStatus = "Payment Received"
	StatusReadyToShip      ShipmentStatus = "Ready to Ship"
	StatusDispatched       ShipmentStatus = "Dispatched"
)

// statusRank orders the pipeline. Transitions only move to a higher rank.
var statusRank = map[ShipmentStatus]int{
	StatusReceived:         0,
	StatusAccepted:         1,
	StatusInvoiceGenerated: 2,
	StatusPaymentReceived:  3,
	StatusReadyToShip:      4,
	StatusDispatched:       5,
}

// Rank returns the position of s in the pipeline ordering, or -1 for an
// unknown status.
func (s ShipmentStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Valid reports whether s is one of the six defined statuses.
func (s ShipmentStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Shipment is one outbound package tracked by staff through the pipeline.
// It maps to the `shipments` table in SQLite.
type Shipment struct {
	ID                string         `db:"id" json:"id"`
	TrackingNumber    string         `db:"tracking_number" json:"tracking_number"`
	RequestDate       string         `db:"request_date" json:"request_date"`
	CustomerName      string         `db:"customer_name" json:"customer_name"`
	Destination       string         `db:"destination" json:"destination"`
	EstimatedDelivery string         `db:"estimated_delivery" json:"estimated_delivery"`
	Status            ShipmentStatus `db:"status" json:"status"`
	SubmittedBy       int64          `db:"submitted_by" json:"submitted_by"`

	// Processing flags. These are written together with Status at each
	// transition, never independently.
	PriceDetailsAdded bool `db:"price_details_added" json:"price_details_added"`
	InvoiceGenerated  bool `db:"invoice_generated" json:"invoice_generated"`
	PaymentRequested  bool `db:"payment_requested" json:"payment_requested"`
	PaymentReceived   bool `db:"payment_received" json:"payment_received"`
	ReadyToShip       bool `db:"ready_to_ship" json:"ready_to_ship"`
	Dispatched        bool `db:"dispatched" json:"dispatched"`

	// PaymentProof references the uploaded proof artifact once payment is
	// verified. Empty until then.
	PaymentProof string `db:"payment_proof" json:"payment_proof,omitempty"`

	// Version is bumped on every persisted transition and guards
	// concurrent updates to the same record.
	Version int64 `db:"version" json:"version"`

	Details ShipmentDetails `json:"details"`

	// Captured form payloads. Nil until the corresponding transition has
	// recorded one. Stored as JSON text columns; use pointers to
	// distinguish null vs zero.
	PriceDetails *PriceDetailsForm `db:"price_details" json:"price_details,omitempty"`
	Invoice      *InvoiceForm      `db:"invoice_info" json:"invoice_info,omitempty"`
	Payment      *PaymentForm      `db:"payment_info" json:"payment_info,omitempty"`
}

// ShipmentDetails carries the contact and package information captured when
// the shipment was requested. The workflow displays it but never mutates it.
type ShipmentDetails struct {
	SenderName    string  `db:"sender_name" json:"sender_name"`
	SenderPhone   string  `db:"sender_phone" json:"sender_phone"`
	ReceiverName  string  `db:"receiver_name" json:"receiver_name"`
	ReceiverPhone string  `db:"receiver_phone" json:"receiver_phone"`
	Courier       string  `db:"courier" json:"courier"`
	PackageMethod string  `db:"package_method" json:"package_method"`
	WeightKG      float64 `db:"weight_kg" json:"weight_kg"`
	PaymentMode   string  `db:"payment_mode" json:"payment_mode"`
	Notes         string  `db:"notes" json:"notes"`
}

// DisplayStatus derives the label shown for a shipment. It folds the two
// sub-flags into the stored status:
//
//	Accepted + price details   -> "Price Details Added"
//	Invoice Generated + pay req -> "Payment Requested"
//
// Every place that renders a shipment status must use this one function.
func DisplayStatus(s *Shipment) string {
	switch {
	case s.Status == StatusAccepted && s.PriceDetailsAdded:
		return "Price Details Added"
	case s.Status == StatusInvoiceGenerated && s.PaymentRequested:
		return "Payment Requested"
	default:
		return string(s.Status)
	}
}
