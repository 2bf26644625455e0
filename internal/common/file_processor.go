package common

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"atscan/internal/errors"
	"atscan/internal/types"
)

// mimeByExtension maps resume file extensions to their MIME types. The
// extension wins over content sniffing because DOCX files sniff as plain
// zip archives.
var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadResumeFile reads a candidate resume from disk and packages it with its
// size and detected MIME type. It does not enforce the upload policy; that
// is the gate's job.
func (fp *FileProcessor) ReadResumeFile(filename string) (types.UploadFile, error) {
	if filename == "" {
		return types.UploadFile{}, errors.NewValidationError(errors.ErrCodeFileNotFound,
			"Filename cannot be empty", nil)
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return types.UploadFile{}, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return types.UploadFile{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file: %s", filename), err)
	}
	if info.IsDir() {
		return types.UploadFile{}, errors.NewValidationError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Path is a directory, not a file: %s", filename), nil)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return types.UploadFile{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	file := types.UploadFile{
		Name:      filepath.Base(filename),
		SizeBytes: info.Size(),
		MimeType:  DetectMimeType(filename, data),
		Data:      data,
	}

	if fp.logger != nil {
		fp.logger.Debug("Resume file read",
			"file", file.Name,
			"size", FormatFileSize(file.SizeBytes),
			"mime_type", file.MimeType)
	}

	return file, nil
}

// DetectMimeType resolves the MIME type of a resume file, preferring the
// extension and falling back to content sniffing
func DetectMimeType(filename string, data []byte) string {
	if mime, ok := mimeByExtension[GetFileExtension(filename)]; ok {
		return mime
	}
	return http.DetectContentType(data)
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates the output file path, creating the parent
// directory when needed. An empty filename means stdout and is valid.
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return errors.NewValidationError("INVALID_OUTPUT_FILE",
					fmt.Sprintf("Cannot create directory %s", dir), err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
