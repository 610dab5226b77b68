package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *metrics.Registry) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	reg := metrics.NewRegistry()
	c, err := NewClient(Config{BaseURL: srv.URL + "/"}, reg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, reg
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "  "}, nil); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestPredict(t *testing.T) {
	c, reg := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body productRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID != "P1" {
			t.Errorf("bad body: %+v %v", body, err)
		}
		_, _ = io.WriteString(w, `{"product_id":"P1","forecasts":[{"forecast_date":"2024-02-01","predicted_demand":12.5,"confidence_lower":11,"confidence_upper":14}]}`)
	})

	got, err := c.Predict(context.Background(), "P1")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(got.Forecasts) != 1 || got.Forecasts[0].PredictedDemand != 12.5 {
		t.Fatalf("unexpected forecasts: %+v", got.Forecasts)
	}
	if n := testutil.CollectAndCount(reg.BackendLatencySec); n != 1 {
		t.Fatalf("want 1 observed series, got %d", n)
	}
}

func TestHistory_EncodesProductID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("product_id"); got != "A&B" {
			t.Errorf("product_id = %q", got)
		}
		_, _ = io.WriteString(w, `{"product_id":"A&B","history":[{"date":"2024-01-01","demand":3}]}`)
	})

	got, err := c.History(context.Background(), "A&B")
	if err != nil || len(got.History) != 1 {
		t.Fatalf("History: %+v %v", got, err)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 400, `{"error":"product_id is required"}`, "product_id is required"},
		{"message field", 500, `{"message":"Failed to optimize inventory"}`, "Failed to optimize inventory"},
		{"error wins over message", 500, `{"error":"boom","message":"later"}`, "boom"},
		{"plain text", 502, "upstream down\n", "upstream down"},
		{"empty body", 503, "", "Service Unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := c.OptimizeInventory(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("want *APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.status || apiErr.Message != tc.want {
				t.Fatalf("got %d %q, want %d %q", apiErr.StatusCode, apiErr.Message, tc.status, tc.want)
			}
		})
	}
}

func TestUploadCSV_Multipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "sales.csv" || !strings.HasPrefix(string(data), "Date,") {
			t.Errorf("unexpected upload %s: %q", hdr.Filename, data)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","products_count":2}`)
	})

	got, err := c.UploadCSV(context.Background(), "sales.csv", strings.NewReader("Date,P1\n2024-01-01,4\n"))
	if err != nil || !got.Success || got.ProductsCount != 2 {
		t.Fatalf("UploadCSV: %+v %v", got, err)
	}
}

func TestAsk(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body askRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Question != "why?" || body.ScreenContent != "dashboard" {
			t.Errorf("bad ask body: %+v", body)
		}
		_, _ = io.WriteString(w, `{"answer":"because"}`)
	})

	got, err := c.Ask(context.Background(), "why?", "dashboard")
	if err != nil || got.Answer != "because" {
		t.Fatalf("Ask: %+v %v", got, err)
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Products(context.Background())
	var apiErr *APIError
	if err == nil || errors.As(err, &apiErr) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.DashboardSummary(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
