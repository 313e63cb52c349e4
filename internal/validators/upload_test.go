package validators

import (
	"testing"

	"github.com/salonkit/salon-scheduler/internal/httperr"
)

func TestValidateAttachment(t *testing.T) {
	if err := ValidateAttachment("image/jpeg", 1024); err != nil {
		t.Fatalf("jpeg must be accepted: %v", err)
	}
	if err := ValidateAttachment("application/pdf", MaxAttachmentBytes); err != nil {
		t.Fatalf("pdf at the limit must be accepted: %v", err)
	}

	if err := ValidateAttachment("image/jpeg", MaxAttachmentBytes+1); !httperr.IsBusiness(err, "attachment_too_large") {
		t.Fatalf("expected attachment_too_large, got %v", err)
	}
	if err := ValidateAttachment("image/jpeg", 0); !httperr.IsBusiness(err, "attachment_too_large") {
		t.Fatalf("empty payload must be rejected, got %v", err)
	}
	if err := ValidateAttachment("application/zip", 10); !httperr.IsBusiness(err, "attachment_type_not_allowed") {
		t.Fatalf("expected attachment_type_not_allowed, got %v", err)
	}
}

func TestIsEmailFormatValid(t *testing.T) {
	valid := []string{"ana@example.com", "a.b+tag@sub.example.org"}
	for _, e := range valid {
		if !IsEmailFormatValid(e) {
			t.Fatalf("%q must be valid", e)
		}
	}

	invalid := []string{"", "semarroba", "a@", "@dominio.com"}
	for _, e := range invalid {
		if IsEmailFormatValid(e) {
			t.Fatalf("%q must be invalid", e)
		}
	}
}
