package models

// PriceDetailsForm carries the pricing fields captured before an invoice can
// be generated. None of the fields is mandatory; totals are entered by the
// operator, never computed.
type PriceDetailsForm struct {
	WeightKG       float64 `json:"weight_kg"`
	Quantity       int     `json:"quantity"`
	Courier        string  `json:"courier"`
	TrackingID     string  `json:"tracking_id"`
	PackingCharge  float64 `json:"packing_charge"`
	DeliveryCharge float64 `json:"delivery_charge"`
	OtherCharge    float64 `json:"other_charge"`
	TaxPercent     float64 `json:"tax_percent"`
	Discount       float64 `json:"discount"`
	AdvancePaid    float64 `json:"advance_paid"`
	ShipmentTotal  float64 `json:"shipment_total"`
	GrandTotal     float64 `json:"grand_total"`
}

// InvoiceForm carries the confirmation choices for invoice generation.
type InvoiceForm struct {
	Courier     string `json:"courier"`
	InvoiceType string `json:"invoice_type"`
}

// PaymentForm carries the verification fields recorded when payment is
// confirmed.
type PaymentForm struct {
	PaymentInfo string `json:"payment_info"`
	Remarks     string `json:"remarks"`
	ApprovedBy  string `json:"approved_by"`
}
