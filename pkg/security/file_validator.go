package security

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// UploadPolicy is a whitelist of extensions plus a size cap.
type UploadPolicy struct {
	Extensions map[string]bool
	MaxBytes   int
}

var (
	// Identity documents, diplomas and business licences.
	DocumentPolicy = UploadPolicy{
		Extensions: map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true},
		MaxBytes:   10 << 20,
	}
	ResumePolicy = UploadPolicy{
		Extensions: map[string]bool{".pdf": true, ".doc": true, ".docx": true},
		MaxBytes:   5 << 20,
	}
	ImagePolicy = UploadPolicy{
		Extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true},
		MaxBytes:   5 << 20,
	}
)

var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".webp": {{0x52, 0x49, 0x46, 0x46}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}},
}

// application/octet-stream is deliberately absent.
var strictMIMETypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/zip": true,
}

// Validate checks extension whitelist, size, magic bytes and sniffed MIME
// type, in that order.
func (p UploadPolicy) Validate(filename string, data []byte) FileValidationResult {
	detected := http.DetectContentType(data)
	result := FileValidationResult{DetectedMIME: detected}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !p.Extensions[ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}
	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if p.MaxBytes > 0 && len(data) > p.MaxBytes {
		result.Error = "file is too large"
		return result
	}
	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	// Word documents are often sniffed as octet-stream; the magic bytes
	// already matched above.
	if detected == "application/octet-stream" {
		if ext != ".doc" && ext != ".docx" {
			result.Error = "file type could not be determined"
			return result
		}
	} else if !strictMIMETypes[detected] {
		result.Error = "MIME type not allowed: " + detected
		return result
	}

	result.Valid = true
	return result
}

// ContentType returns the MIME type to store the object with.
func (r FileValidationResult) ContentType() string {
	switch r.Extension {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return r.DetectedMIME
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func IsImageExtension(ext string) bool {
	return ImagePolicy.Extensions[strings.ToLower(ext)]
}
