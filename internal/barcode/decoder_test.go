package barcode

import (
	"image"
	"testing"
)

func TestDecode_UniformImage(t *testing.T) {
	decoder := NewDecoder()

	img := image.NewGray(image.Rect(0, 0, 200, 200))
	hits := decoder.Decode(img, DefaultSymbologies())

	if len(hits) != 0 {
		t.Errorf("Expected no hits on a uniform image, got %v", hits)
	}
}

func TestDecode_QRHit(t *testing.T) {
	decoder := NewDecoder()

	canvas := drawOnWhite([]image.Image{makeQR(t, "hello-decoder", 240)}, 40)
	hits := decoder.Decode(canvas, []Symbology{SymbologyQR})

	if len(hits) != 1 {
		t.Fatalf("Expected one hit, got %d", len(hits))
	}
	if hits[0].Symbology != SymbologyQR {
		t.Errorf("Expected QRCODE symbology, got %s", hits[0].Symbology)
	}
	if string(hits[0].Payload) != "hello-decoder" {
		t.Errorf("Expected payload hello-decoder, got %q", hits[0].Payload)
	}
}

func TestDecode_SingleHitPerSymbology(t *testing.T) {
	decoder := NewDecoder()

	// One decode call per symbology yields at most one hit per variant, even
	// when the image carries multiple symbols of that type
	qrImg := makeQR(t, "twice-on-canvas", 240)
	canvas := drawOnWhite([]image.Image{qrImg, qrImg}, 40)
	hits := decoder.Decode(canvas, []Symbology{SymbologyQR})

	if len(hits) != 1 {
		t.Fatalf("Expected exactly one hit, got %d: %v", len(hits), hits)
	}
	if string(hits[0].Payload) != "twice-on-canvas" {
		t.Errorf("Expected payload twice-on-canvas, got %q", hits[0].Payload)
	}
}

func TestDecode_SymbologyFilter(t *testing.T) {
	decoder := NewDecoder()

	// A QR symbol must not decode when only linear symbologies are requested
	canvas := drawOnWhite([]image.Image{makeQR(t, "filtered-out", 240)}, 40)
	hits := decoder.Decode(canvas, []Symbology{SymbologyEAN13, SymbologyCode128})

	if len(hits) != 0 {
		t.Errorf("Expected no hits with linear-only symbol set, got %v", hits)
	}
}

func TestDefaultSymbologies(t *testing.T) {
	symbologies := DefaultSymbologies()
	if len(symbologies) != 6 {
		t.Errorf("Expected 6 default symbologies, got %d", len(symbologies))
	}
	if symbologies[0] != SymbologyEAN13 {
		t.Errorf("Expected EAN13 first, got %s", symbologies[0])
	}
}
