package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dropshipManagement/internal/testutil"
	"dropshipManagement/models"
)

func newRepos(t *testing.T, name string) (*UserRepository, *ShipmentRepository) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	return NewUserRepository(d), NewShipmentRepository(d)
}

func createCustomer(t *testing.T, users *UserRepository, name string) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), name, models.RoleCustomer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateAndGetShipment(t *testing.T) {
	users, shipments := newRepos(t, "create_get")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u := createCustomer(t, users, "alice")

	s, err := shipments.Create(ctx, &models.Shipment{
		CustomerName: "Alice",
		Destination:  "Pune",
		SubmittedBy:  u.ID,
		Details: models.ShipmentDetails{
			Courier:  "Delhivery",
			WeightKG: 1.5,
		},
	})
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if s.ID == "" {
		t.Fatal("expected generated shipment id")
	}
	if s.Status != models.StatusReceived {
		t.Errorf("status = %q, want Received", s.Status)
	}
	if s.Version != 1 {
		t.Errorf("version = %d, want 1", s.Version)
	}
	if s.RequestDate == "" {
		t.Error("request_date should be set by the database")
	}
	if s.Details.Courier != "Delhivery" || s.Details.WeightKG != 1.5 {
		t.Errorf("details not persisted: %+v", s.Details)
	}

	missing, err := shipments.GetByID(ctx, "SP-MISSING")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing shipment")
	}
}

func TestUpdateTransitionVersioning(t *testing.T) {
	users, shipments := newRepos(t, "versioning")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u := createCustomer(t, users, "bob")
	s, err := shipments.Create(ctx, &models.Shipment{ID: "SP-0001", Destination: "Delhi", SubmittedBy: u.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	s.Status = models.StatusAccepted
	if err := shipments.UpdateTransition(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.Version != 2 {
		t.Errorf("version after update = %d, want 2", s.Version)
	}

	// A stale writer loses.
	stale := *s
	stale.Version = 1
	stale.Status = models.StatusInvoiceGenerated
	if err := shipments.UpdateTransition(ctx, &stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale update err = %v, want ErrVersionConflict", err)
	}

	// A vanished row reports no rows.
	gone := *s
	gone.ID = "SP-GONE"
	if err := shipments.UpdateTransition(ctx, &gone); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing update err = %v, want sql.ErrNoRows", err)
	}

	// The winning write stuck.
	got, err := shipments.GetByID(ctx, "SP-0001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusAccepted || got.Version != 2 {
		t.Errorf("stored = %q v%d, want Accepted v2", got.Status, got.Version)
	}
}

func TestTransitionPersistsFormsAndProof(t *testing.T) {
	users, shipments := newRepos(t, "forms")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u := createCustomer(t, users, "carol")
	s, err := shipments.Create(ctx, &models.Shipment{ID: "SP-0002", Destination: "Goa", SubmittedBy: u.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	s.Status = models.StatusPaymentReceived
	s.PriceDetailsAdded = true
	s.InvoiceGenerated = true
	s.PaymentRequested = true
	s.PaymentReceived = true
	s.PaymentProof = "proof-abc"
	s.PriceDetails = &models.PriceDetailsForm{WeightKG: 3, DeliveryCharge: 120, GrandTotal: 240}
	s.Invoice = &models.InvoiceForm{Courier: "DTDC", InvoiceType: "GST"}
	s.Payment = &models.PaymentForm{PaymentInfo: "NEFT 991", ApprovedBy: "ops"}
	if err := shipments.UpdateTransition(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := shipments.GetByID(ctx, "SP-0002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PaymentProof != "proof-abc" {
		t.Errorf("payment proof = %q", got.PaymentProof)
	}
	if got.PriceDetails == nil || got.PriceDetails.DeliveryCharge != 120 {
		t.Errorf("price details not round-tripped: %+v", got.PriceDetails)
	}
	if got.Invoice == nil || got.Invoice.Courier != "DTDC" {
		t.Errorf("invoice form not round-tripped: %+v", got.Invoice)
	}
	if got.Payment == nil || got.Payment.PaymentInfo != "NEFT 991" {
		t.Errorf("payment form not round-tripped: %+v", got.Payment)
	}
}

func TestListAdminFiltersAndPagination(t *testing.T) {
	users, shipments := newRepos(t, "list_admin")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u1 := createCustomer(t, users, "dev")
	u2 := createCustomer(t, users, "eve")

	mk := func(id, customer string, by int64, status models.ShipmentStatus) {
		t.Helper()
		s, err := shipments.Create(ctx, &models.Shipment{ID: id, CustomerName: customer, Destination: "X", SubmittedBy: by})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		if status != models.StatusReceived {
			s.Status = status
			if err := shipments.UpdateTransition(ctx, s); err != nil {
				t.Fatalf("update %s: %v", id, err)
			}
		}
	}
	mk("SP-A1", "Arun Kumar", u1.ID, models.StatusReceived)
	mk("SP-A2", "Priya Nair", u1.ID, models.StatusAccepted)
	mk("SP-A3", "Arun Kumar", u2.ID, models.StatusDispatched)
	mk("SP-A4", "Sam Jose", u2.ID, models.StatusReceived)

	// Status filter.
	got, err := shipments.ListAdmin(ctx, ListShipmentsParams{Statuses: []models.ShipmentStatus{models.StatusReceived}})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("status filter returned %d, want 2", len(got))
	}

	// Customer substring filter, case-insensitive.
	cust := "arun"
	got, err = shipments.ListAdmin(ctx, ListShipmentsParams{CustomerContains: &cust})
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("customer filter returned %d, want 2", len(got))
	}

	// Submitted-by filter.
	got, err = shipments.ListAdmin(ctx, ListShipmentsParams{SubmittedBy: &u1.ID})
	if err != nil {
		t.Fatalf("list by submitter: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("submitter filter returned %d, want 2", len(got))
	}

	// Page through everything two at a time; ids are unique across pages.
	page1, err := shipments.ListAdmin(ctx, ListShipmentsParams{PageSize: 2})
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page1 size = %d, want 2", len(page1))
	}
	last := page1[len(page1)-1]
	sec, err := time.Parse("2006-01-02 15:04:05", last.RequestDate)
	if err != nil {
		t.Fatalf("parse request_date %q: %v", last.RequestDate, err)
	}
	page2, err := shipments.ListAdmin(ctx, ListShipmentsParams{PageSize: 2, AfterSeconds: sec.Unix(), AfterID: last.ID})
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	seen := map[string]bool{}
	for _, s := range append(page1, page2...) {
		if seen[s.ID] {
			t.Errorf("shipment %s returned twice across pages", s.ID)
		}
		seen[s.ID] = true
	}
	if len(seen) != 4 {
		t.Errorf("paged through %d distinct shipments, want 4", len(seen))
	}
}

func TestListByUser(t *testing.T) {
	users, shipments := newRepos(t, "list_user")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u1 := createCustomer(t, users, "frank")
	u2 := createCustomer(t, users, "grace")
	for _, id := range []string{"SP-B1", "SP-B2"} {
		if _, err := shipments.Create(ctx, &models.Shipment{ID: id, Destination: "Y", SubmittedBy: u1.ID}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := shipments.Create(ctx, &models.Shipment{ID: "SP-B3", Destination: "Y", SubmittedBy: u2.ID}); err != nil {
		t.Fatalf("create SP-B3: %v", err)
	}

	got, err := shipments.ListByUser(ctx, u1.ID, 10, 0, "")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("user listing returned %d, want 2", len(got))
	}
	for _, s := range got {
		if s.SubmittedBy != u1.ID {
			t.Errorf("shipment %s belongs to %d", s.ID, s.SubmittedBy)
		}
	}
}
