package sanitizer

import (
	"testing"

	"github.com/nyaruka/phonenumbers"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"spaces only", "   ", ""},
		{"leading and trailing", "  Herzl 12, Tel Aviv  ", "Herzl 12, Tel Aviv"},
		{"inner runs collapsed", "Main   Gate \t Warehouse", "Main Gate Warehouse"},
		{"tabs and newlines", "north\nentrance", "north entrance"},
		{"already clean", "Dizengoff Center", "Dizengoff Center"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalizeIdempotent(t *testing.T) {
	input := "  Azrieli   Towers  "
	once := TrimAndNormalize(input)
	twice := TrimAndNormalize(once)
	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestSanitizeCity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Tel Aviv", "telaviv"},
		{"  NEW YORK  ", "newyork"},
		{"Be'er-Sheva", "beersheva"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := SanitizeCity(tt.input); got != tt.expected {
			t.Errorf("SanitizeCity(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeCities(t *testing.T) {
	got := SanitizeCities([]string{"Tel Aviv", "tel-aviv", "", "Haifa"})
	want := []string{"telaviv", "haifa"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	// Fixtures come from the library's own region metadata, so they stay
	// valid numbers across metadata updates.
	ilMobile := phonenumbers.GetExampleNumberForType("IL", phonenumbers.MOBILE)
	if ilMobile == nil {
		t.Fatal("no example IL mobile number in the phone metadata")
	}
	ilE164 := phonenumbers.Format(ilMobile, phonenumbers.E164)
	ilNational := phonenumbers.Format(ilMobile, phonenumbers.NATIONAL)

	usNumber := phonenumbers.GetExampleNumberForType("US", phonenumbers.FIXED_LINE_OR_MOBILE)
	if usNumber == nil {
		t.Fatal("no example US number in the phone metadata")
	}
	usE164 := phonenumbers.Format(usNumber, phonenumbers.E164)
	usNational := phonenumbers.Format(usNumber, phonenumbers.NATIONAL)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"israeli national", ilNational, ilE164},
		{"already e164", ilE164, ilE164},
		{"us national", usNational, usE164},
		{"garbage", "not-a-phone", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClampPriority(t *testing.T) {
	if got := ClampPriority(-5, 0, 100); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
	if got := ClampPriority(500, 0, 100); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}
	if got := ClampPriority(42, 0, 100); got != 42 {
		t.Errorf("expected passthrough, got %d", got)
	}
}
