package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxAttachmentSize is 5MB in bytes, the usual MMS-style ceiling
	MaxAttachmentSize = 5 * 1024 * 1024
)

// allowedAttachmentTypes maps permitted extensions to their content types
var allowedAttachmentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// AttachmentError represents an attachment validation error
type AttachmentError struct {
	Code    string
	Message string
}

func (e *AttachmentError) Error() string {
	return e.Message
}

// ValidateAttachmentFile validates the uploaded attachment format and size
func ValidateAttachmentFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxAttachmentSize {
		return &AttachmentError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxAttachmentSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedAttachmentTypes[ext]; !ok {
		return &AttachmentError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only png, jpg, gif and pdf files are allowed",
		}
	}

	return nil
}

// AttachmentContentType returns the content type for an attachment filename,
// falling back to application/octet-stream for unknown extensions
func AttachmentContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := allowedAttachmentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
