package upload

import (
	"fmt"
	"slices"

	"atscan/internal/errors"
	"atscan/internal/types"
)

// DefaultMaxFileSizeBytes is the upload size cap (5 MiB)
const DefaultMaxFileSizeBytes int64 = 5 * 1024 * 1024

// DefaultAllowedMimeTypes is the default upload allow-list. Product
// iterations have shipped PDF-only; the list is configuration, not policy.
var DefaultAllowedMimeTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Gate validates candidate files before they may enter the analysis flow.
// Validation is a pure predicate: no side effects, no state.
type Gate struct {
	maxSizeBytes int64
	allowedTypes []string
}

// NewGate creates an upload gate. Zero or empty arguments fall back to the
// defaults so a partially configured gate still enforces both policies.
func NewGate(maxSizeBytes int64, allowedTypes []string) *Gate {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxFileSizeBytes
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedMimeTypes
	}
	return &Gate{maxSizeBytes: maxSizeBytes, allowedTypes: allowedTypes}
}

// Validate checks file against the size and type policy. The size check runs
// first: an oversized file is rejected as FILE_TOO_LARGE regardless of type.
func (g *Gate) Validate(file types.UploadFile) error {
	if file.SizeBytes > g.maxSizeBytes {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit: %d bytes", g.maxSizeBytes, file.SizeBytes), nil).
			WithContext("file_name", file.Name).
			WithContext("size_bytes", file.SizeBytes)
	}

	if !slices.Contains(g.allowedTypes, file.MimeType) {
		return errors.NewValidationError(errors.ErrCodeUnsupportedType,
			fmt.Sprintf("Unsupported mime type: %s", file.MimeType), nil).
			WithContext("file_name", file.Name).
			WithContext("mime_type", file.MimeType)
	}

	return nil
}

// MaxSizeBytes returns the configured size cap
func (g *Gate) MaxSizeBytes() int64 {
	return g.maxSizeBytes
}

// AllowedTypes returns the configured allow-list
func (g *Gate) AllowedTypes() []string {
	return slices.Clone(g.allowedTypes)
}
