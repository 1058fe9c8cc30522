// Package remote implements extract.Extractor against an external
// feature-extraction model service speaking a small JSON protocol:
//
//	POST {baseURL}/extract  {"sample": "<base64>"}
//	200  {"vector": [ ... ]}
//	4xx/5xx {"error": "reason"}
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/extract"
)

// DefaultTimeout bounds one extraction round trip. A timeout surfaces as an
// extraction error, never as an indefinite hang.
const DefaultTimeout = 10 * time.Second

var _ extract.Extractor = (*Extractor)(nil)

// Extractor calls a remote model service over HTTP.
type Extractor struct {
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// Option is a functional option for Extractor.
type Option func(*Extractor)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.httpClient.Timeout = d
	}
}

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = c
	}
}

// New builds an Extractor for a model service at baseURL producing vectors
// of the given dimension. A trailing slash is stripped.
func New(baseURL string, dimension int, opts ...Option) *Extractor {
	e := &Extractor{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		dimension:  dimension,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Dimension() int { return e.dimension }

type extractRequest struct {
	Sample string `json:"sample"`
}

type extractResponse struct {
	Vector []float32 `json:"vector"`
	Error  string    `json:"error,omitempty"`
}

func (e *Extractor) Extract(ctx context.Context, sample []byte) ([]float32, error) {
	body, err := json.Marshal(extractRequest{Sample: base64.StdEncoding.EncodeToString(sample)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", common.ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", common.ErrExtraction, err)
	}

	var parsed extractResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrExtraction, err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := parsed.Error
		if reason == "" {
			reason = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", common.ErrExtraction, reason)
	}

	if len(parsed.Vector) != e.dimension {
		return nil, fmt.Errorf("%w: model returned %d values, want %d",
			common.ErrExtraction, len(parsed.Vector), e.dimension)
	}
	return parsed.Vector, nil
}
