package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxEvidenceSize caps dispute evidence uploads (25 MB).
const MaxEvidenceSize = 25 * 1024 * 1024

// Accepted dispute evidence types: screenshots, short recordings, raw logs.
var allowedEvidenceExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
	".txt":  true,
	".log":  true,
}

// ValidateEvidenceFile rejects oversized or unexpected evidence files before
// anything reaches R2.
func ValidateEvidenceFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxEvidenceSize {
		return fmt.Errorf("evidence file too large (max %d MB)", MaxEvidenceSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedEvidenceExts[ext] {
		return fmt.Errorf("unsupported evidence file type %q", ext)
	}
	return nil
}
