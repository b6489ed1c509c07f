package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrImageLoad indicates the input bytes could not be decoded as an image
var ErrImageLoad = errors.New("cannot decode input as an image")

// Code is a deduplicated barcode surfaced to the caller, in first-seen order
// across decode passes
type Code struct {
	Symbology Symbology `json:"symbology"`
	Text      string    `json:"text"`
}

// Detector orchestrates barcode decoding across multiple image variants
type Detector interface {
	DetectCodes(data []byte) ([]Code, error)
}

type detector struct {
	preprocessor Preprocessor
	decoder      Decoder
	symbologies  []Symbology
	maxWidth     int
	maxHeight    int
}

// NewDetector creates a detector that decodes the given symbol set over the
// original, grayscale and preprocessed variants of each input image.
// Photographs of barcodes vary in contrast and color cast; trying multiple
// representations cheaply improves recall without a trained localizer.
func NewDetector(preprocessor Preprocessor, decoder Decoder, symbologies []Symbology, maxWidth, maxHeight int) Detector {
	if len(symbologies) == 0 {
		symbologies = DefaultSymbologies()
	}
	return &detector{
		preprocessor: preprocessor,
		decoder:      decoder,
		symbologies:  symbologies,
		maxWidth:     maxWidth,
		maxHeight:    maxHeight,
	}
}

func (d *detector) DetectCodes(data []byte) ([]Code, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	img = d.preprocessor.Downscale(img, d.maxWidth, d.maxHeight)

	// Fan out the three independent decode passes. Results are merged in
	// fixed pass order (original, grayscale, preprocessed), not completion
	// order, so output stays deterministic.
	passes := make([][]SymbolHit, 3)
	var group errgroup.Group
	group.Go(func() error {
		passes[0] = d.decoder.Decode(img, d.symbologies)
		return nil
	})
	group.Go(func() error {
		passes[1] = d.decoder.Decode(d.preprocessor.Grayscale(img), d.symbologies)
		return nil
	})
	group.Go(func() error {
		passes[2] = d.decoder.Decode(d.preprocessor.Normalize(img), d.symbologies)
		return nil
	})
	_ = group.Wait() // decode passes are best-effort and never error

	seen := make(map[string]bool)
	codes := []Code{}
	for _, hits := range passes {
		for _, hit := range hits {
			key := string(hit.Symbology) + "\x00" + string(hit.Payload)
			if seen[key] {
				continue
			}
			seen[key] = true
			codes = append(codes, Code{
				Symbology: hit.Symbology,
				Text:      strings.ToValidUTF8(string(hit.Payload), "�"),
			})
		}
	}
	return codes, nil
}
