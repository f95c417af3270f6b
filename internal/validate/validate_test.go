package validate

import (
	"errors"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	f, err := Validate("Jane", "jane@x.com", "+1234567890")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if f.Phone != "+1234567890" {
		t.Errorf("phone = %q, want %q", f.Phone, "+1234567890")
	}
	if f.PhotoURI != nil {
		t.Error("Validate() should not attach a photo")
	}
}

func TestValidate_Normalizes(t *testing.T) {
	// Given padded input and a phone with internal spaces
	f, err := Validate("  Jane Doe ", "\tjane@x.com ", " +38 050 123 45 67 ")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// Then name and email are trimmed and the phone is compacted
	if f.Name != "Jane Doe" {
		t.Errorf("name = %q, want %q", f.Name, "Jane Doe")
	}
	if f.Email != "jane@x.com" {
		t.Errorf("email = %q, want %q", f.Email, "jane@x.com")
	}
	if f.Phone != "+380501234567" {
		t.Errorf("phone = %q, want %q", f.Phone, "+380501234567")
	}
}

func TestValidate_MissingField(t *testing.T) {
	tests := []struct {
		name     string
		rawName  string
		rawEmail string
		rawPhone string
	}{
		{name: "empty name", rawName: "", rawEmail: "jane@x.com", rawPhone: "1234567890"},
		{name: "blank name", rawName: "   ", rawEmail: "jane@x.com", rawPhone: "1234567890"},
		{name: "blank email", rawName: "Jane", rawEmail: " \t", rawPhone: "1234567890"},
		{name: "blank phone", rawName: "Jane", rawEmail: "jane@x.com", rawPhone: "\n"},
		{name: "all blank", rawName: "", rawEmail: "", rawPhone: ""},
		// Missing wins over every later rule.
		{name: "blank name with bad email", rawName: " ", rawEmail: "not-an-email", rawPhone: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.rawName, tt.rawEmail, tt.rawPhone)
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Validate() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestValidate_InvalidEmail(t *testing.T) {
	tests := []string{
		"not-an-email",
		"jane@x",
		"@x.com",
		"jane@.com",
		"jane@x.",
		"ja ne@x.com",
		"jane@@x.com",
		"ja\u00a0ne@x.com",
		"ja\vne@x.com",
		"jane@x\u2003y.com",
	}
	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			_, err := Validate("Jane", email, "1234567890")
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidEmail", email, err)
			}
		})
	}
}

func TestValidate_EmailBeforePhone(t *testing.T) {
	_, err := Validate("Jane", "bad", "123")
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Validate() error = %v, want ErrInvalidEmail", err)
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		phone   string
		want    string
		wantErr bool
	}{
		{phone: "123", wantErr: true},
		{phone: "123456789", wantErr: true},
		{phone: "1234567890", want: "1234567890"},
		{phone: "123456789012345", want: "123456789012345"},
		{phone: "1234567890123456", wantErr: true},
		{phone: "+1234567890", want: "+1234567890"},
		{phone: "++1234567890", wantErr: true},
		{phone: "123-456-7890", wantErr: true},
		{phone: "(050) 1234567", wantErr: true},
		{phone: "050 123 45 67", want: "0501234567"},
		{phone: "1234567890+", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f, err := Validate("Jane", "jane@x.com", tt.phone)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPhone) {
					t.Errorf("Validate(%q) error = %v, want ErrInvalidPhone", tt.phone, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%q) error = %v", tt.phone, err)
			}
			if f.Phone != tt.want {
				t.Errorf("phone = %q, want %q", f.Phone, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	_, err := Validate("", "", "")
	if got := Message(err); got != "Fill in all form fields." {
		t.Errorf("Message() = %q", got)
	}

	other := errors.New("disk full")
	if got := Message(other); got != "disk full" {
		t.Errorf("Message(other) = %q, want %q", got, "disk full")
	}
}

func TestForm_AttachesPhoto(t *testing.T) {
	f, err := Form("Jane", "jane@x.com", "1234567890", "file:///p.jpg")
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	if f.PhotoURI == nil || *f.PhotoURI != "file:///p.jpg" {
		t.Errorf("PhotoURI = %v, want file:///p.jpg", f.PhotoURI)
	}

	f, err = Form("Jane", "jane@x.com", "1234567890", "")
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	if f.PhotoURI != nil {
		t.Error("empty photo should be nil")
	}
}
