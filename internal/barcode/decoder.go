package barcode

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"go-food-scanner/internal/logger"
)

// Symbology identifies a barcode format the decoder is configured to recognize
type Symbology string

const (
	SymbologyEAN13   Symbology = "EAN13"
	SymbologyEAN8    Symbology = "EAN8"
	SymbologyUPCA    Symbology = "UPCA"
	SymbologyCode128 Symbology = "CODE128"
	SymbologyCode39  Symbology = "CODE39"
	SymbologyQR      Symbology = "QRCODE"
)

// DefaultSymbologies returns the fixed symbol set used for retail food packaging
func DefaultSymbologies() []Symbology {
	return []Symbology{
		SymbologyEAN13,
		SymbologyEAN8,
		SymbologyUPCA,
		SymbologyCode128,
		SymbologyCode39,
		SymbologyQR,
	}
}

// SymbolHit is one raw decode produced by a single pass over a single image
// variant. Hits are transient; the detector deduplicates them into Codes.
type SymbolHit struct {
	Symbology Symbology
	Payload   []byte
}

// Decoder runs the symbol-decode primitive against one image variant.
// Decoding is best-effort: any failure yields an empty hit list and never
// aborts the caller's multi-pass loop.
type Decoder interface {
	Decode(img image.Image, symbologies []Symbology) []SymbolHit
}

type zxingDecoder struct{}

// NewDecoder creates a decoder backed by the ZXing port
func NewDecoder() Decoder {
	return &zxingDecoder{}
}

func readerFor(symbology Symbology) gozxing.Reader {
	switch symbology {
	case SymbologyEAN13:
		return oned.NewEAN13Reader()
	case SymbologyEAN8:
		return oned.NewEAN8Reader()
	case SymbologyUPCA:
		return oned.NewUPCAReader()
	case SymbologyCode128:
		return oned.NewCode128Reader()
	case SymbologyCode39:
		return oned.NewCode39Reader()
	case SymbologyQR:
		return qrcode.NewQRCodeReader()
	}
	return nil
}

func (d *zxingDecoder) Decode(img image.Image, symbologies []Symbology) (hits []SymbolHit) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Debug("Barcode decode pass aborted")
			hits = nil
		}
	}()

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	for _, symbology := range symbologies {
		reader := readerFor(symbology)
		if reader == nil {
			continue
		}

		// A decode error here just means no symbol of this type in the variant
		result, err := reader.Decode(bitmap, hints)
		if err != nil {
			continue
		}
		hits = append(hits, SymbolHit{
			Symbology: symbology,
			Payload:   []byte(result.GetText()),
		})
	}
	return hits
}
