package validators

import "github.com/salonkit/salon-scheduler/internal/httperr"

// ======================================================
// UPLOAD VALIDATION
// ======================================================

const MaxAttachmentBytes = 5 << 20 // 5 MiB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

func ValidateAttachment(contentType string, sizeBytes int64) error {
	if sizeBytes <= 0 || sizeBytes > MaxAttachmentBytes {
		return httperr.ErrBusiness("attachment_too_large")
	}
	if !allowedAttachmentTypes[contentType] {
		return httperr.ErrBusiness("attachment_type_not_allowed")
	}
	return nil
}
