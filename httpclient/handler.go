package httpclient

import "time"

// IHttpStatusHandler is an interface for handling command attempt statuses
type IHttpStatusHandler interface {
	// OnRequest handles an attempt with its status result ("success" or "error")
	OnRequest(status string)
	// OnRetry handles retry events, once before every pause between attempts
	OnRetry()
}

// Optional extensions a status handler may implement, e.g. metrics.Recorder.
type durationObserver interface {
	ObserveRequestDuration(method string, d time.Duration)
}

type exhaustionRecorder interface {
	RecordExhausted()
}
