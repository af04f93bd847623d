package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"dropshipManagement/internal/testutil"
)

const testSecret = "test-secret"

func TestParseFromRequest_ValidBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "alice", "customer")
	req := httptest.NewRequest("GET", "/v1/shipments", nil)
	testutil.AddBearer(req, tok)
	p, err := ParseFromRequest(req, testSecret)
	if err != nil {
		t.Fatalf("ParseFromRequest: %v", err)
	}
	if p.Name != "alice" || p.Kind != "customer" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromRequest_MissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/shipments", nil)
	if _, err := ParseFromRequest(req, testSecret); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestParseFromRequest_InvalidScheme(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob", "admin")
	req := httptest.NewRequest("GET", "/v1/shipments", nil)
	req.Header.Set("Authorization", "Basic "+tok)
	if _, err := ParseFromRequest(req, testSecret); err == nil {
		t.Fatal("expected error for non-Bearer scheme")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob", "admin")
	if _, err := parseJWT(tok, "wrong"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	// Missing name/kind -> invalid.
	tok := testutil.GenerateJWTHS256(t, testSecret, "", "")
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatal("expected invalid claims error")
	}
}

func TestSignTokenRoundTrip(t *testing.T) {
	tok, err := SignToken(testSecret, "carol", "Admin", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	p, err := parseJWT(tok, testSecret)
	if err != nil {
		t.Fatalf("parseJWT: %v", err)
	}
	if p.Name != "carol" || p.Kind != "admin" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}
