package upload

import (
	"testing"

	"atscan/internal/errors"
	"atscan/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		file         types.UploadFile
		maxSize      int64
		allowedTypes []string
		expectedCode string // empty means accepted
	}{
		{
			name: "valid pdf under limit",
			file: types.UploadFile{Name: "resume.pdf", SizeBytes: 2 * 1024 * 1024, MimeType: "application/pdf"},
		},
		{
			name: "valid docx under limit",
			file: types.UploadFile{Name: "resume.docx", SizeBytes: 1024, MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		},
		{
			name: "exactly at size limit is accepted",
			file: types.UploadFile{Name: "resume.pdf", SizeBytes: 5242880, MimeType: "application/pdf"},
		},
		{
			name:         "one byte over limit",
			file:         types.UploadFile{Name: "resume.pdf", SizeBytes: 5242881, MimeType: "application/pdf"},
			expectedCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:         "six megabyte pdf",
			file:         types.UploadFile{Name: "resume.pdf", SizeBytes: 6 * 1024 * 1024, MimeType: "application/pdf"},
			expectedCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:         "oversized file with unsupported type reports size first",
			file:         types.UploadFile{Name: "movie.mp4", SizeBytes: 50 * 1024 * 1024, MimeType: "video/mp4"},
			expectedCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:         "unsupported type - plain text",
			file:         types.UploadFile{Name: "resume.txt", SizeBytes: 1024, MimeType: "text/plain"},
			expectedCode: errors.ErrCodeUnsupportedType,
		},
		{
			name:         "unsupported type - legacy doc",
			file:         types.UploadFile{Name: "resume.doc", SizeBytes: 1024, MimeType: "application/msword"},
			expectedCode: errors.ErrCodeUnsupportedType,
		},
		{
			name:         "empty mime type",
			file:         types.UploadFile{Name: "resume", SizeBytes: 1024, MimeType: ""},
			expectedCode: errors.ErrCodeUnsupportedType,
		},
		{
			name:         "pdf-only allow list rejects docx",
			file:         types.UploadFile{Name: "resume.docx", SizeBytes: 1024, MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
			allowedTypes: []string{"application/pdf"},
			expectedCode: errors.ErrCodeUnsupportedType,
		},
		{
			name:         "pdf-only allow list accepts pdf",
			file:         types.UploadFile{Name: "resume.pdf", SizeBytes: 1024, MimeType: "application/pdf"},
			allowedTypes: []string{"application/pdf"},
		},
		{
			name:    "custom smaller size limit",
			file:    types.UploadFile{Name: "resume.pdf", SizeBytes: 2048, MimeType: "application/pdf"},
			maxSize: 1024,

			expectedCode: errors.ErrCodeFileTooLarge,
		},
		{
			name: "zero byte file is accepted by the gate",
			file: types.UploadFile{Name: "empty.pdf", SizeBytes: 0, MimeType: "application/pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.maxSize, tt.allowedTypes)
			err := gate.Validate(tt.file)

			if tt.expectedCode == "" {
				if err != nil {
					t.Errorf("expected file to pass validation, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected rejection with code %s, got nil", tt.expectedCode)
			}
			if got := errors.CodeOf(err); got != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, got)
			}
		})
	}
}

func TestGateDefaults(t *testing.T) {
	gate := NewGate(0, nil)

	if gate.MaxSizeBytes() != 5242880 {
		t.Errorf("expected default size cap 5242880, got %d", gate.MaxSizeBytes())
	}

	allowed := gate.AllowedTypes()
	if len(allowed) != 2 {
		t.Fatalf("expected 2 default mime types, got %d", len(allowed))
	}
	if allowed[0] != "application/pdf" {
		t.Errorf("unexpected default allow-list: %v", allowed)
	}
}
