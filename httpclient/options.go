package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/transcript"
)

// RetryOptions configures bounded retry behavior for commands
type RetryOptions struct {
	MaxAttempts int           // Total attempts, including the first one
	Sleep       time.Duration // Fixed pause between two attempts
	LogPrefix   string
}

// DefaultRetryOptions returns default retry options
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts: 10,
		Sleep:       1000 * time.Millisecond,
		LogPrefix:   "REST",
	}
}

// SleepFunc pauses between attempts and returns early with an error when ctx ends
type SleepFunc func(ctx context.Context, d time.Duration) error

type Option func(*Options)

type Options struct {
	connectionTimeout time.Duration
	transport         http.RoundTripper
	reporter          transcript.Reporter
	logger            logger.Logger
	statusHandler     IHttpStatusHandler
	clock             func() time.Time
	sleep             SleepFunc
}

func newClientOptions() *Options {
	return &Options{
		connectionTimeout: 10 * time.Second,
		reporter:          transcript.NoopReporter{},
		logger:            logger.NoopLogger{},
		clock:             time.Now,
		sleep:             sleepContext,
	}
}

// WithConnectionTimeout sets the dial timeout of the default transport
func WithConnectionTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.connectionTimeout = timeout
		}
	}
}

// WithTransport replaces the HTTP transport, e.g. with a replay.Transport
func WithTransport(transport http.RoundTripper) Option {
	return func(o *Options) {
		if transport != nil {
			o.transport = transport
		}
	}
}

// WithReporter sets where successful commands are reported
func WithReporter(reporter transcript.Reporter) Option {
	return func(o *Options) {
		if reporter != nil {
			o.reporter = reporter
		}
	}
}

// WithLogger sets the logger for the client
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatusHandler sets the handler notified of attempts and retries
func WithStatusHandler(handler IHttpStatusHandler) Option {
	return func(o *Options) {
		o.statusHandler = handler
	}
}

// WithClock replaces time.Now for durations and transcript timestamps
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSleepFunc replaces the pause between retry attempts
func WithSleepFunc(sleep SleepFunc) Option {
	return func(o *Options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}
