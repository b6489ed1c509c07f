package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-food-scanner/internal/logger"

	"github.com/sirupsen/logrus"
)

// Detection is one object reported by the vision model. Only the label is
// consumed by the resolution pipeline.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Detector abstracts the object-detection model serving endpoint
type Detector interface {
	Detect(ctx context.Context, imageData []byte) ([]Detection, error)
}

// HTTPDetector calls a remote model server with the raw image and reads back
// labeled detections
type HTTPDetector struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDetector creates a detector client for the given model endpoint
func NewHTTPDetector(endpoint string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
	}
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

func (d *HTTPDetector) Detect(ctx context.Context, imageData []byte) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("invalid vision endpoint: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision model returned status %d", resp.StatusCode)
	}

	var payload detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint":   d.endpoint,
		"detections": len(payload.Detections),
	}).Debug("Vision detection completed")

	return payload.Detections, nil
}
