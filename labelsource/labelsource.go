// Package labelsource downloads drug label records from the openFDA label search endpoint.
package labelsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/logging"
	"golang.org/x/text/encoding/charmap"
)

// ErrSourceUnavailable is returned when the label source cannot be reached or answers with a non-success status.
var ErrSourceUnavailable = errors.New("label source unavailable")

// brandNameFilter restricts the search to labels that carry a harmonized brand name.
const brandNameFilter = "_exists_:openfda.brand_name"

// Client fetches label batches from the label search endpoint
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewClient creates a label source client. limit is the number of records requested per fetch.
func NewClient(baseURL string, limit int) *Client {
	return &Client{
		baseURL: baseURL,
		limit:   limit,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// WithHTTPClient replaces the underlying http client (used by tests).
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// Fetch downloads one batch of raw labels. Any transport failure or non-2xx answer
// is reported as ErrSourceUnavailable; nothing is retried.
func (c *Client) Fetch(ctx context.Context) ([]entities.RawLabel, error) {
	requestURL, err := c.searchURL()
	if err != nil {
		return nil, fmt.Errorf("invalid label source url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build label request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, response.StatusCode)
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrSourceUnavailable, err)
	}

	// Some label mirrors still answer in latin-1
	var reader io.Reader = bytes.NewReader(bodyBytes)
	if !utf8.Valid(bodyBytes) {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	}

	var payload entities.LabelResponse
	if err := json.NewDecoder(reader).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode label response: %w", err)
	}

	logging.Debug("Label batch downloaded", "records", len(payload.Results), "bytes", len(bodyBytes))
	return payload.Results, nil
}

func (c *Client) searchURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("search", brandNameFilter)
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
