package httpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
	"github.com/status-im/rest-executor/transcript"
)

// ContentType is declared on every request regardless of the payload
const ContentType = "application/json"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Client sends REST commands to the site described by a config.Config.
// It is safe for concurrent use; LastCommand is last-writer-wins.
type Client struct {
	http          *resty.Client
	reporter      transcript.Reporter
	logger        logger.Logger
	statusHandler IHttpStatusHandler
	clock         func() time.Time
	sleep         SleepFunc

	mu          sync.RWMutex
	lastCommand string
}

// New creates a new Client. Without WithTransport, requests go through a
// fresh http.Transport whose dial timeout comes from WithConnectionTimeout.
func New(opts ...Option) *Client {
	o := newClientOptions()
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: o.connectionTimeout,
			}).DialContext,
		}
	}

	rc := resty.NewWithClient(&http.Client{Transport: transport}).
		SetAllowGetMethodPayload(true).
		SetLogger(restyLogger{o.logger})

	return &Client{
		http:          rc,
		reporter:      o.reporter,
		logger:        o.logger,
		statusHandler: o.statusHandler,
		clock:         o.clock,
		sleep:         o.sleep,
	}
}

// LastCommand returns the most recently attempted target URL
func (c *Client) LastCommand() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastCommand
}

func (c *Client) setLastCommand(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCommand = target
}

// NormalizeCommand makes command start with "/". A leading "\" is taken
// as the path separator and replaced with "/".
func NormalizeCommand(command string) string {
	if strings.HasPrefix(command, `\`) {
		return "/" + command[1:]
	}
	if strings.HasPrefix(command, "/") {
		return command
	}
	return "/" + command
}

// BasicAuthorization builds the Authorization header value for the credentials
func BasicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString(asciiBytes(username+":"+password))
}

// Execute performs exactly one request and returns the response body.
// Any failure is returned as a *TransportError; nothing is retried here.
func (c *Client) Execute(ctx context.Context, cfg *config.Config, command string, method models.Method, data string) (string, error) {
	if cfg == nil {
		cfg = config.New()
	}

	target := cfg.SiteURL + NormalizeCommand(command)
	c.setLastCommand(target)

	if !method.IsValid() {
		return "", c.fail(&TransportError{Op: "build", Method: method, URL: target,
			Err: fmt.Errorf("unsupported method '%s'", method)})
	}

	if err := cfg.Validate(); err != nil {
		return "", c.fail(&TransportError{Op: "build", Method: method, URL: target, Err: err})
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", ContentType)

	if cfg.HasCredentials() {
		req.SetHeader("Authorization", BasicAuthorization(cfg.Username, cfg.Password))
	}

	if data != "" {
		req.SetBody(asciiBytes(data))
	}

	start := c.clock()
	resp, err := req.Execute(method.String(), target)
	c.observeDuration(method, c.clock().Sub(start))

	if err != nil {
		return "", c.fail(&TransportError{Op: "send", Method: method, URL: target, Err: err})
	}

	if resp.IsError() {
		return "", c.fail(&TransportError{
			Op:         "status",
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Body:       decodeBody(resp.Body()),
			Err:        errors.New(http.StatusText(resp.StatusCode())),
		})
	}

	body := decodeBody(resp.Body())

	c.onRequest("success")
	c.logger.Debug("Command succeeded",
		"method", method.String(),
		"url", target,
		"status", resp.StatusCode(),
		"bytes", len(body))

	c.reporter.Report(models.NewTranscriptEntry(c.clock(), target, method, data, body))

	return body, nil
}

func (c *Client) fail(err *TransportError) error {
	c.onRequest("error")
	c.logger.Debug("Command failed", "method", err.Method.String(), "url", err.URL, "error", err)
	return err
}

func (c *Client) onRequest(status string) {
	if c.statusHandler != nil {
		c.statusHandler.OnRequest(status)
	}
}

func (c *Client) observeDuration(method models.Method, d time.Duration) {
	if o, ok := c.statusHandler.(durationObserver); ok {
		o.ObserveRequestDuration(method.String(), d)
	}
}

// asciiBytes encodes s as single-byte text, replacing every non-ASCII rune with '?'
func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7F {
			out = append(out, '?')
			continue
		}
		out = append(out, byte(r))
	}
	return out
}

// decodeBody reads a response body as UTF-8, dropping a leading BOM and
// replacing invalid sequences with U+FFFD
func decodeBody(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

// restyLogger routes resty's own diagnostics to the client logger
type restyLogger struct {
	l logger.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(fmt.Sprintf(format, v...))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...))
}
