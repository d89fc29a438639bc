// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package launcher runs the diffserv tools with a common harness: command line
// parsing, configuration loading, logging setup and signal handling.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/private/prom"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/private/app/command"
	libconfig "github.com/scionproto/diffserv/private/config"
)

// Configuration keys read by the launcher.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
	cfgLogConsoleDisableCaller   = "log.console.disable_caller"
)

// Application models a diffserv command line application.
type Application struct {
	// TOMLConfig holds the application-specific TOML configuration. It must
	// accept the [log] section, which the launcher also reads.
	TOMLConfig libconfig.Config

	// Samplers contains additional configuration samplers listed under the
	// sample subcommand.
	Samplers []func(command.Pather) *cobra.Command

	// Commands contains additional subcommands.
	Commands []func(command.Pather) *cobra.Command

	// ShortName is the short name of the application. If empty, the
	// executable name is used.
	ShortName string

	// Registerer is used to register the log entry counters. If nil, the
	// counters are not registered.
	Registerer prometheus.Registerer

	// Main is the custom logic of the application. If nil, only the harness
	// runs.
	Main func(ctx context.Context) error

	// ErrorWriter specifies where error output should be printed. If nil,
	// os.Stderr is used.
	ErrorWriter io.Writer

	// OutputWriter is the output of the subcommands. If nil, os.Stdout is
	// used.
	OutputWriter io.Writer

	cmd    *cobra.Command
	config *viper.Viper
}

// Run sets up the common harness and passes control to Main. Run uses
// os.Args and exits the process on error.
func (a *Application) Run() {
	if err := a.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(a.getErrorWriter(), "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// Execute runs the application with the given command line arguments. The
// context passed to Main is cancelled on SIGINT and SIGTERM.
func (a *Application) Execute(args []string) error {
	executable := filepath.Base(os.Args[0])
	shortName := a.getShortName(executable)

	a.cmd = newCommandTemplate(executable, shortName, a.TOMLConfig, a.Samplers...)
	for _, c := range a.Commands {
		a.cmd.AddCommand(c(a.cmd))
	}
	a.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return a.executeCommand(cmd.Context())
	}
	a.cmd.SetArgs(args)
	a.cmd.SetOut(a.getOutputWriter())
	a.cmd.SetErr(a.getErrorWriter())

	a.config = viper.New()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktraceLevel, log.DefaultStacktraceLevel)
	// The configuration file location is specified through command-line flags.
	// Once the comand-line flags are parsed, we register the location of the
	// config file with the viper config.
	if err := a.config.BindPFlag(cfgConfigFile, a.cmd.Flags().Lookup(cfgConfigFile)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.cmd.ExecuteContext(ctx)
}

func (a *Application) executeCommand(ctx context.Context) error {
	file := a.config.GetString(cfgConfigFile)
	// Load launcher configurations from the same config file as the custom
	// application configuration.
	a.config.SetConfigType("toml")
	a.config.SetConfigFile(file)
	if err := a.config.ReadInConfig(); err != nil {
		return serrors.Wrap("loading generic config from file", err, "file", file)
	}
	if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", file)
	}
	a.TOMLConfig.InitDefaults()

	logEntriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Name:      "log_emitted_entries_total",
			Help:      "Total number of log entries emitted.",
		},
		[]string{prom.LabelLevel},
	)
	if a.Registerer != nil {
		if err := a.Registerer.Register(logEntriesTotal); err != nil {
			return serrors.Wrap("registering log metrics", err)
		}
	}
	opt := log.WithEntriesCounter(log.NewEntriesCounter(logEntriesTotal))
	if err := log.Setup(a.getLogging(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()
	defer log.HandlePanic()

	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	if a.Main == nil {
		return nil
	}
	return a.Main(ctx)
}

func (a *Application) getLogging() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktraceLevel),
			DisableCaller:   a.config.GetBool(cfgLogConsoleDisableCaller),
		},
	}
}

func (a *Application) getShortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) getErrorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}

func (a *Application) getOutputWriter() io.Writer {
	if a.OutputWriter != nil {
		return a.OutputWriter
	}
	return os.Stdout
}

func newCommandTemplate(executable, shortName string, config libconfig.Sampler,
	samplers ...func(command.Pather) *cobra.Command) *cobra.Command {

	cmd := &cobra.Command{
		Use:           executable,
		Short:         shortName,
		Example:       fmt.Sprintf("  %s --config %s", executable, "config.toml"),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}
	all := append([]func(command.Pather) *cobra.Command{command.NewSampleConfig(config)},
		samplers...)
	cmd.AddCommand(
		command.NewSample(cmd, all...),
		command.NewGendocs(cmd),
	)
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	cmd.MarkFlagRequired(cfgConfigFile)
	return cmd
}
