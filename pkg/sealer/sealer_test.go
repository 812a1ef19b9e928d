package sealer

import "testing"

func TestRoundTrip(t *testing.T) {
	token, err := CreateOpaqueToken("booking-123", "guard-456")
	if err != nil {
		t.Fatalf("CreateOpaqueToken failed: %v", err)
	}

	bookingID, guardID, err := ParseOpaqueToken(token)
	if err != nil {
		t.Fatalf("ParseOpaqueToken failed: %v", err)
	}

	if bookingID != "booking-123" {
		t.Errorf("expected booking-123, got %s", bookingID)
	}
	if guardID != "guard-456" {
		t.Errorf("expected guard-456, got %s", guardID)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := CreateOpaqueToken("booking-123", "guard-456")
	if err != nil {
		t.Fatalf("CreateOpaqueToken failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, _, err := ParseOpaqueToken(tampered); err == nil {
		t.Error("expected error for tampered token, got nil")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	if _, _, err := ParseOpaqueToken("not-a-token"); err == nil {
		t.Error("expected error for garbage token, got nil")
	}
}
