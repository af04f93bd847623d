package models

import "testing"

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		name string
		s    Shipment
		want string
	}{
		{"received", Shipment{Status: StatusReceived}, "Received"},
		{"accepted no price", Shipment{Status: StatusAccepted}, "Accepted"},
		{"accepted with price", Shipment{Status: StatusAccepted, PriceDetailsAdded: true}, "Price Details Added"},
		{"invoiced", Shipment{Status: StatusInvoiceGenerated, PriceDetailsAdded: true}, "Invoice Generated"},
		{"payment requested", Shipment{Status: StatusInvoiceGenerated, PaymentRequested: true}, "Payment Requested"},
		{"payment received", Shipment{Status: StatusPaymentReceived, PaymentRequested: true}, "Payment Received"},
		{"dispatched", Shipment{Status: StatusDispatched}, "Dispatched"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayStatus(&tc.s); got != tc.want {
				t.Errorf("DisplayStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStatusRankOrdering(t *testing.T) {
	order := []ShipmentStatus{
		StatusReceived, StatusAccepted, StatusInvoiceGenerated,
		StatusPaymentReceived, StatusReadyToShip, StatusDispatched,
	}
	for i, s := range order {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
		if s.Rank() != i {
			t.Errorf("%q rank = %d, want %d", s, s.Rank(), i)
		}
	}
	if ShipmentStatus("Lost").Valid() {
		t.Error("unknown status should not be valid")
	}
	if ShipmentStatus("Lost").Rank() != -1 {
		t.Error("unknown status rank should be -1")
	}
}
