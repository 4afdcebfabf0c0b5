package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
	pretty     bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "restcmd",
		Short:         "Send REST commands to a configured site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the YAML config file (default $CONFIG_FILE or "+config.DefaultConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human readable logs")

	cmd.AddCommand(newExecCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

// loadFile reads the config file, then REST_* overrides and the global flags.
// A missing file is only an error when it was named with --config.
func (o *rootOptions) loadFile(cmd *cobra.Command) (*config.File, error) {
	path := o.configPath
	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_FILE")
		if path == "" {
			path = config.DefaultConfigFile
		}
	}

	var (
		file *config.File
		err  error
	)

	if _, statErr := os.Stat(path); !explicit && errors.Is(statErr, fs.ErrNotExist) {
		file = config.NewFile()
	} else {
		file, err = config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	file.ApplyEnv()

	if cmd.Flags().Changed("log-level") {
		file.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("pretty") {
		file.Log.Pretty = o.pretty
	}

	return file, nil
}

func newLogger(file *config.File, w io.Writer) *logger.ZeroLogger {
	return logger.New(file.Log.Level, file.Log.Pretty, w)
}

func redacted(file *config.File) config.File {
	out := *file
	if out.Site.Password != "" {
		out.Site.Password = "********"
	}
	return out
}
