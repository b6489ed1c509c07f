package barcode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"reflect"
	"testing"

	bbarcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
)

func newTestDetector() Detector {
	return NewDetector(NewPreprocessor(), NewDecoder(), DefaultSymbologies(), 1920, 1920)
}

// drawOnWhite places the symbol on a white canvas with a quiet zone around it
func drawOnWhite(symbols []image.Image, margin int) *image.RGBA {
	width := margin
	height := 0
	for _, s := range symbols {
		b := s.Bounds()
		width += b.Dx() + margin
		if b.Dy() > height {
			height = b.Dy()
		}
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height+2*margin))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x := margin
	for _, s := range symbols {
		b := s.Bounds()
		target := image.Rect(x, margin, x+b.Dx(), margin+b.Dy())
		draw.Draw(canvas, target, s, b.Min, draw.Src)
		x += b.Dx() + margin
	}
	return canvas
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func makeQR(t *testing.T, payload string, size int) image.Image {
	t.Helper()
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		t.Fatalf("Failed to encode QR: %v", err)
	}
	scaled, err := bbarcode.Scale(code, size, size)
	if err != nil {
		t.Fatalf("Failed to scale QR: %v", err)
	}
	return scaled
}

func makeEAN13(t *testing.T, payload string) image.Image {
	t.Helper()
	code, err := ean.Encode(payload)
	if err != nil {
		t.Fatalf("Failed to encode EAN-13: %v", err)
	}
	scaled, err := bbarcode.Scale(code, 380, 160)
	if err != nil {
		t.Fatalf("Failed to scale EAN-13: %v", err)
	}
	return scaled
}

func TestDetectCodes_InvalidImageBytes(t *testing.T) {
	detector := newTestDetector()

	_, err := detector.DetectCodes([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("Expected error for undecodable bytes")
	}
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("Expected ErrImageLoad, got %v", err)
	}
}

func TestDetectCodes_NoBarcode(t *testing.T) {
	detector := newTestDetector()

	img := createTestImage(400, 300, color.RGBA{255, 255, 255, 255})
	codes, err := detector.DetectCodes(pngBytes(t, img))
	if err != nil {
		t.Fatalf("Expected no error for barcode-free image, got %v", err)
	}
	if len(codes) != 0 {
		t.Errorf("Expected no codes, got %v", codes)
	}
}

func TestDetectCodes_QRCode(t *testing.T) {
	detector := newTestDetector()

	canvas := drawOnWhite([]image.Image{makeQR(t, "8801043014830", 240)}, 40)
	codes, err := detector.DetectCodes(pngBytes(t, canvas))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("Expected exactly one code, got %d: %v", len(codes), codes)
	}
	if codes[0].Symbology != SymbologyQR {
		t.Errorf("Expected QRCODE symbology, got %s", codes[0].Symbology)
	}
	if codes[0].Text != "8801043014830" {
		t.Errorf("Expected payload 8801043014830, got %q", codes[0].Text)
	}
}

func TestDetectCodes_EAN13(t *testing.T) {
	detector := newTestDetector()

	canvas := drawOnWhite([]image.Image{makeEAN13(t, "4006381333931")}, 60)
	codes, err := detector.DetectCodes(pngBytes(t, canvas))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(codes) == 0 {
		t.Fatal("Expected EAN-13 to be decoded")
	}
	if codes[0].Symbology != SymbologyEAN13 {
		t.Errorf("Expected EAN13 symbology, got %s", codes[0].Symbology)
	}
	if codes[0].Text != "4006381333931" {
		t.Errorf("Expected payload 4006381333931, got %q", codes[0].Text)
	}
}

func TestDetectCodes_DeduplicatesIdenticalPayloads(t *testing.T) {
	detector := newTestDetector()

	// The same payload rendered twice must surface exactly once
	qrImg := makeQR(t, "8801043014830", 240)
	canvas := drawOnWhite([]image.Image{qrImg, qrImg}, 40)

	codes, err := detector.DetectCodes(pngBytes(t, canvas))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	count := 0
	for _, code := range codes {
		if code.Text == "8801043014830" && code.Symbology == SymbologyQR {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one deduplicated code, got %d (all: %v)", count, codes)
	}
}

func TestDetectCodes_Deterministic(t *testing.T) {
	detector := newTestDetector()

	canvas := drawOnWhite([]image.Image{makeEAN13(t, "4006381333931")}, 60)
	data := pngBytes(t, canvas)

	first, err := detector.DetectCodes(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := detector.DetectCodes(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results across runs, got %v then %v", first, second)
	}
}
