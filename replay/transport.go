package replay

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
)

// Ensure Transport implements http.RoundTripper
var _ http.RoundTripper = (*Transport)(nil)

// Transport answers HTTP requests from a Store instead of the network:
// 200 with the recorded body on a hit, 404 on a miss.
type Transport struct {
	store   Store
	logger  logger.Logger
	metrics MetricsRecorder
}

// TransportOption is a functional option for configuring Transport
type TransportOption func(*Transport)

func WithTransportLogger(l logger.Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithTransportMetrics(m MetricsRecorder) TransportOption {
	return func(t *Transport) {
		if m != nil {
			t.metrics = m
		}
	}
}

// NewTransport creates a Transport serving from store
func NewTransport(store Store, opts ...TransportOption) *Transport {
	t := &Transport{
		store:   store,
		logger:  logger.NoopLogger{},
		metrics: NoopMetrics{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var data []byte
	if req.Body != nil {
		var err error
		data, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	target := req.URL.String()
	key := Key(models.Method(req.Method), target, string(data))

	body, found := t.store.Get(req.Context(), key)
	if !found {
		t.metrics.RecordReplay("miss")
		t.logger.Debug("No recorded response", "method", req.Method, "url", target, "key", key)
		return newResponse(req, http.StatusNotFound, ""), nil
	}

	t.metrics.RecordReplay("hit")
	t.logger.Debug("Replaying recorded response", "method", req.Method, "url", target, "key", key)

	return newResponse(req, http.StatusOK, body), nil
}

func newResponse(req *http.Request, status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
