package common

import (
	"os"
	"path/filepath"
	"testing"

	"atscan/internal/errors"
)

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "pdf by extension",
			filename: "resume.pdf",
			data:     []byte("%PDF-1.7"),
			want:     "application/pdf",
		},
		{
			name:     "docx by extension",
			filename: "resume.docx",
			data:     []byte("PK\x03\x04"),
			want:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		{
			name:     "uppercase extension",
			filename: "RESUME.PDF",
			data:     []byte("%PDF-1.7"),
			want:     "application/pdf",
		},
		{
			name:     "unknown extension sniffs pdf content",
			filename: "resume.bin",
			data:     []byte("%PDF-1.7 rest of file"),
			want:     "application/pdf",
		},
		{
			name:     "unknown extension with text content",
			filename: "resume",
			data:     []byte("plain text resume"),
			want:     "text/plain; charset=utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMimeType(tt.filename, tt.data); got != tt.want {
				t.Errorf("DetectMimeType(%s) = %s, want %s", tt.filename, got, tt.want)
			}
		})
	}
}

func TestReadResumeFile(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	fp := NewFileProcessor(logger)

	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	content := []byte("%PDF-1.7 test resume")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}

	file, err := fp.ReadResumeFile(path)
	if err != nil {
		t.Fatalf("ReadResumeFile: %v", err)
	}
	if file.Name != "resume.pdf" {
		t.Errorf("Name = %s", file.Name)
	}
	if file.SizeBytes != int64(len(content)) {
		t.Errorf("SizeBytes = %d, want %d", file.SizeBytes, len(content))
	}
	if file.MimeType != "application/pdf" {
		t.Errorf("MimeType = %s", file.MimeType)
	}
	if string(file.Data) != string(content) {
		t.Error("Data does not match file content")
	}
}

func TestReadResumeFileErrors(t *testing.T) {
	fp := NewFileProcessor(nil)

	tests := []struct {
		name     string
		filename string
		wantCode string
	}{
		{"empty filename", "", errors.ErrCodeFileNotFound},
		{"missing file", filepath.Join(t.TempDir(), "nope.pdf"), errors.ErrCodeFileNotFound},
		{"directory", t.TempDir(), errors.ErrCodeFileNotReadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fp.ReadResumeFile(tt.filename)
			if code := errors.CodeOf(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"text", false},
		{"markdown", false},
		{"yaml", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateOutputFormat(tt.format, supported)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	if err := ValidateOutputFormat("anything", nil); err != nil {
		t.Errorf("no restrictions should accept any format, got %v", err)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %s, want %s", tt.size, got, tt.want)
		}
	}
}
