package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/httpclient"
	"github.com/status-im/rest-executor/metrics"
	"github.com/status-im/rest-executor/models"
	"github.com/status-im/rest-executor/replay"
	"github.com/status-im/rest-executor/transcript"
)

type execOptions struct {
	method   string
	data     string
	retry    bool
	attempts int
	sleep    time.Duration

	site     string
	user     string
	password string
	timeout  time.Duration

	transcript       bool
	transcriptFile   string
	transcriptFormat string

	replay      bool
	replayFrom  string
	record      bool
	metricsFile string
}

func newExecCommand(root *rootOptions) *cobra.Command {
	opts := &execOptions{}

	cmd := &cobra.Command{
		Use:   "exec <command>",
		Short: "Send one command and print the response body",
		Example: `  restcmd exec rest/api/2/issue/KEY-1
  restcmd exec --method POST --data '{"fields":{}}' --retry rest/api/2/issue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, root, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.method, "method", "X", "GET", "HTTP method: GET, PUT, POST, DELETE")
	flags.StringVarP(&opts.data, "data", "d", "", "Request payload")
	flags.BoolVar(&opts.retry, "retry", false, "Retry failed attempts")
	flags.IntVar(&opts.attempts, "attempts", 0, "Maximum attempts when retrying")
	flags.DurationVar(&opts.sleep, "sleep", 0, "Pause between attempts when retrying")
	flags.StringVar(&opts.site, "site", "", "Site base URL")
	flags.StringVar(&opts.user, "user", "", "Basic auth username")
	flags.StringVar(&opts.password, "password", "", "Basic auth password")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout")
	flags.BoolVar(&opts.transcript, "transcript", false, "Append successful exchanges to the transcript")
	flags.StringVar(&opts.transcriptFile, "transcript-file", "", "Transcript file path")
	flags.StringVar(&opts.transcriptFormat, "transcript-format", "", "Transcript format: text or jsonl")
	flags.BoolVar(&opts.replay, "replay", false, "Answer from the replay store instead of the network")
	flags.StringVar(&opts.replayFrom, "replay-from", "", "Seed the replay store from a jsonl transcript and answer from it")
	flags.BoolVar(&opts.record, "record", false, "Record successful responses into the replay store")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	return cmd
}

// apply overlays the flags that were set on the command line
func (o *execOptions) apply(cmd *cobra.Command, file *config.File) {
	flags := cmd.Flags()

	if flags.Changed("site") {
		file.Site.SiteURL = o.site
	}
	if flags.Changed("user") {
		file.Site.Username = o.user
	}
	if flags.Changed("password") {
		file.Site.Password = o.password
	}
	if flags.Changed("timeout") {
		file.Site.Timeout = o.timeout
	}
	if flags.Changed("attempts") {
		file.Retry.MaxAttempts = o.attempts
	}
	if flags.Changed("sleep") {
		file.Retry.Sleep = o.sleep
	}
	if flags.Changed("transcript") {
		file.Transcript.Enabled = o.transcript
	}
	if flags.Changed("transcript-file") {
		file.Transcript.Path = o.transcriptFile
	}
	if flags.Changed("transcript-format") {
		file.Transcript.Format = o.transcriptFormat
	}
	if flags.Changed("metrics-file") {
		file.Metrics.Textfile = o.metricsFile
		file.Metrics.Enabled = true
	}
}

func runExec(cmd *cobra.Command, root *rootOptions, opts *execOptions, command string) error {
	file, err := root.loadFile(cmd)
	if err != nil {
		return err
	}
	opts.apply(cmd, file)

	if err := file.Validate(); err != nil {
		return err
	}

	method, err := models.ParseMethod(opts.method)
	if err != nil {
		return err
	}

	format, err := transcript.ParseFormat(file.Transcript.Format)
	if err != nil {
		return err
	}

	log := newLogger(file, cmd.ErrOrStderr())

	var (
		recorder metrics.Recorder = metrics.NewNoopMetrics()
		registry *prometheus.Registry
	)
	if file.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		recorder = metrics.NewPrometheusMetrics(metrics.Config{Namespace: file.Metrics.Namespace}, registry)
	}

	var reporter transcript.Reporter = transcript.NewFileReporter(
		transcript.WithEnabled(file.Transcript.Enabled),
		transcript.WithPath(file.Transcript.Path),
		transcript.WithFormat(format),
		transcript.WithLogger(log),
		transcript.WithMetrics(recorder),
	)

	clientOpts := []httpclient.Option{
		httpclient.WithLogger(log),
		httpclient.WithStatusHandler(recorder),
	}

	ctx := cmd.Context()

	if opts.replay || opts.replayFrom != "" || opts.record {
		store, err := replay.NewStore(file.Replay, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if opts.replayFrom != "" {
			n, err := seedStore(ctx, store, opts.replayFrom)
			if err != nil {
				return err
			}
			log.Info("Loaded replay transcript", "path", opts.replayFrom, "entries", n)
		}

		if opts.replay || opts.replayFrom != "" {
			clientOpts = append(clientOpts, httpclient.WithTransport(
				replay.NewTransport(store, replay.WithTransportLogger(log), replay.WithTransportMetrics(recorder))))
		}

		if opts.record {
			reporter = transcript.Multi(reporter, replay.NewRecorder(store, log))
		}
	}

	client := httpclient.New(append(clientOpts, httpclient.WithReporter(reporter))...)
	site := file.Site.Clone()

	var body string
	if opts.retry {
		retryOpts := httpclient.DefaultRetryOptions()
		retryOpts.MaxAttempts = file.Retry.MaxAttempts
		retryOpts.Sleep = file.Retry.Sleep
		body, err = client.ExecuteWithRetry(ctx, site, command, method, retryOpts, opts.data)
	} else {
		body, err = client.Execute(ctx, site, command, method, opts.data)
	}

	if registry != nil && file.Metrics.Textfile != "" {
		if werr := prometheus.WriteToTextfile(file.Metrics.Textfile, registry); werr != nil {
			log.Warn("Failed to write metrics file", "path", file.Metrics.Textfile, "error", werr)
		}
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
	return err
}

func seedStore(ctx context.Context, store replay.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open replay transcript: %w", err)
	}
	defer f.Close()

	return replay.LoadTranscript(ctx, store, f)
}
