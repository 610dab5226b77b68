package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 60 * time.Second

// Config is injected at construction; call sites never read the environment.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the forecasting, optimization and chatbot backend. Each
// method issues exactly one request and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Registry
}

func NewClient(cfg Config, reg *metrics.Registry) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, http: httpClient, metrics: reg}, nil
}

func (c *Client) DetectAnomalies(ctx context.Context) (*DetectAnomaliesResponse, error) {
	var out DetectAnomaliesResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/anomalies/detect", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RawAnomalyRows(ctx context.Context) ([]RawAnomalyRow, error) {
	var out rawAnomalyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/anomalies/raw", nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) Predict(ctx context.Context, productID string) (*PredictResponse, error) {
	var out PredictResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/predict", productRequest{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, productID string) (*HistoryResponse, error) {
	var out HistoryResponse
	path := "/api/history?" + url.Values{"product_id": {productID}}.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OptimizeInventory(ctx context.Context) (*OptimizeResponse, error) {
	var out OptimizeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/inventory/optimize", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecommendProcurement(ctx context.Context, productID string) (*RecommendResponse, error) {
	var out RecommendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/procurement/recommend", productRequest{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcurementSuggestions(ctx context.Context) (*SuggestionsResponse, error) {
	var out SuggestionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/procurement/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Ask(ctx context.Context, question, screenContent string) (*AskResponse, error) {
	var out AskResponse
	req := askRequest{Question: question, ScreenContent: screenContent}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chatbot/ask", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out productsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) LoadData(ctx context.Context) (*LoadDataResponse, error) {
	var out LoadDataResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/load-data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadCSV forwards a sales CSV as the multipart field "file".
func (c *Client) UploadCSV(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var out UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload_csv", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if !out.Success && out.Error != "" {
		return &out, &APIError{Endpoint: "/api/upload_csv", StatusCode: http.StatusOK, Message: out.Error}
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}

	start := time.Now()
	outcome := "ok"
	defer func() {
		if c.metrics != nil {
			c.metrics.BackendLatencySec.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("backend %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_error"
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, payload)}
		log.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("backend request failed")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
