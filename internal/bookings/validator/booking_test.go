package validator

import (
	"strings"
	"testing"
	"time"

	"guardpost/pkg/config"
	"guardpost/pkg/logger"
	"guardpost/pkg/model"
)

const (
	testClientID  = "64b0c8f2e13f4a5b6c7d8e9f"
	testCompanyID = "64b0c8f2e13f4a5b6c7d8ea0"
)

func newTestValidator(t *testing.T) *BookingValidator {
	t.Helper()
	cfg := &config.Config{
		MinHourlyRateCents: 2000,
		MaxHourlyRateCents: 100000,
	}
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	return NewBookingValidator(cfg, log)
}

func validBooking() *model.BookingRequest {
	start := time.Now().Add(24 * time.Hour)
	return &model.BookingRequest{
		ClientID:        testClientID,
		CompanyID:       testCompanyID,
		Status:          model.StatusMatching,
		Address:         "Herzl 12",
		City:            "Tel Aviv",
		StartTime:       start,
		EndTime:         start.Add(8 * time.Hour),
		HourlyRateCents: 9500,
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name    string
		mutate  func(b *model.BookingRequest)
		wantErr string
	}{
		{"valid booking", func(b *model.BookingRequest) {}, ""},
		{"missing client id", func(b *model.BookingRequest) { b.ClientID = "" }, "ClientID is required"},
		{"malformed client id", func(b *model.BookingRequest) { b.ClientID = "not-an-object-id" }, "valid MongoDB ObjectID"},
		{"missing company id", func(b *model.BookingRequest) { b.CompanyID = "" }, "CompanyID is required"},
		{"unknown status", func(b *model.BookingRequest) { b.Status = "pending" }, "Status must be one of"},
		{"address too short", func(b *model.BookingRequest) { b.Address = "x" }, "Address must be at least 2"},
		{"rate below minimum", func(b *model.BookingRequest) { b.HourlyRateCents = 500 }, "between 2000 and 100000 cents"},
		{"rate above maximum", func(b *model.BookingRequest) { b.HourlyRateCents = 200000 }, "between 2000 and 100000 cents"},
		{"end before start", func(b *model.BookingRequest) {
			b.EndTime = b.StartTime.Add(-time.Hour)
		}, "must be after StartTime"},
		{"start in the past", func(b *model.BookingRequest) {
			b.StartTime = time.Now().Add(-2 * time.Hour)
			b.EndTime = b.StartTime.Add(8 * time.Hour)
		}, "start_time cannot be in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := validBooking()
			tt.mutate(booking)

			err := v.Validate(booking)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateBookingEqualTimesRejected(t *testing.T) {
	v := newTestValidator(t)

	booking := validBooking()
	booking.EndTime = booking.StartTime
	if err := v.Validate(booking); err == nil {
		t.Fatal("Validate() = nil for zero-length booking, want error")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator(t)

	start := time.Now().Add(48 * time.Hour)
	end := start.Add(4 * time.Hour)
	badEnd := start.Add(-time.Hour)
	lowRate := int64(100)

	tests := []struct {
		name    string
		update  *model.BookingUpdate
		wantErr string
	}{
		{"empty update", &model.BookingUpdate{}, ""},
		{"address only", &model.BookingUpdate{Address: "Rothschild 45"}, ""},
		{"both times valid", &model.BookingUpdate{StartTime: &start, EndTime: &end}, ""},
		{"end before start", &model.BookingUpdate{StartTime: &start, EndTime: &badEnd}, "end_time must be after start_time"},
		{"rate out of range", &model.BookingUpdate{HourlyRateCents: &lowRate}, "cents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateUpdate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateUpdate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateUpdate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}
