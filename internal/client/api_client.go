package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// apiClient is a small GET-only JSON client shared by the open-data
// collaborators. Transient failures are retried up to three times; 4xx
// responses are not retried.
type apiClient struct {
	baseURL       string
	defaultParams url.Values
	httpClient    *http.Client
}

func newAPIClient(baseURL string, defaultParams url.Values, timeout time.Duration) *apiClient {
	if defaultParams == nil {
		defaultParams = url.Values{}
	}
	return &apiClient{
		baseURL:       baseURL,
		defaultParams: defaultParams,
		httpClient: &http.Client{
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

// getJSON performs a GET against baseURL+path with merged query parameters
// and decodes the JSON response into out
func (c *apiClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	query := url.Values{}
	for key, values := range c.defaultParams {
		query[key] = values
	}
	for key, values := range params {
		query[key] = values
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("invalid request URL: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// Client errors are not retryable
			return fmt.Errorf("client error: status code %d", resp.StatusCode)
		default:
			lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		}
	}

	return fmt.Errorf("request failed after 3 attempts: %w", lastErr)
}
