package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/disintegration/imaging"
)

const (
	MaxReceiptSize   = 10 * 1024 * 1024 // 10MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
)

var (
	ErrReceiptEmpty         = fmt.Errorf("%w: receipt file is empty", domain.ErrInvalidInput)
	ErrReceiptTooLarge      = fmt.Errorf("%w: file too large, maximum size is 10MB", domain.ErrInvalidInput)
	ErrReceiptInvalidFormat = fmt.Errorf("%w: receipt must be an image", domain.ErrInvalidInput)
	ErrReceiptInvalidData   = fmt.Errorf("%w: invalid image data", domain.ErrInvalidInput)
	ErrReceiptTooSmall      = fmt.Errorf("%w: image too small, minimum 50x50 pixels", domain.ErrInvalidInput)
)

// receiptContentTypes maps accepted extensions to content types. The bool
// marks formats imaging can decode and therefore verify.
var receiptContentTypes = map[string]struct {
	contentType string
	decodable   bool
}{
	".jpg":  {"image/jpeg", true},
	".jpeg": {"image/jpeg", true},
	".png":  {"image/png", true},
	".gif":  {"image/gif", true},
	".bmp":  {"image/bmp", true},
	".tif":  {"image/tiff", true},
	".tiff": {"image/tiff", true},
	".webp": {"image/webp", false},
	".heic": {"image/heic", false},
}

// ValidateReceipt checks size and extension, decodes formats imaging
// supports, and fills in ContentType.
func ValidateReceipt(receipt *domain.ReceiptFile) error {
	if len(receipt.Data) == 0 {
		return ErrReceiptEmpty
	}
	if len(receipt.Data) > MaxReceiptSize {
		return ErrReceiptTooLarge
	}

	format, ok := receiptContentTypes[strings.ToLower(filepath.Ext(receipt.Name))]
	if !ok {
		return ErrReceiptInvalidFormat
	}

	if format.decodable {
		img, err := imaging.Decode(bytes.NewReader(receipt.Data))
		if err != nil {
			return ErrReceiptInvalidData
		}
		bounds := img.Bounds()
		if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
			return ErrReceiptTooSmall
		}
	}

	receipt.ContentType = format.contentType
	return nil
}
