// Package cmd implements the iedriver command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/iedriver/errext"
	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/log"
)

const waitLoggerCloseTimeout = time.Second * 5

// This is to keep all fields needed for the main/root iedriver command
type rootCommand struct {
	globalState *globalState

	cmd            *cobra.Command
	stopLoggersCh  chan struct{}
	loggersWg      chan struct{}
	loggerIsRemote bool
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{
		globalState:   gs,
		stopLoggersCh: make(chan struct{}),
	}
	// the base command when called without any subcommands.
	rootCmd := &cobra.Command{
		Use:               "iedriver",
		Short:             "a wire protocol server for Internet Explorer style browsers",
		Long:              "\n" + banner(gs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: c.persistentPreRunE,
		RunE:              c.runServer,
		Version:           versionString(),
	}

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.Flags().AddFlagSet(configFlagSet())
	rootCmd.SetArgs(gs.args[1:])
	rootCmd.SetOut(gs.stdOut)
	rootCmd.SetErr(gs.stdErr)
	rootCmd.SetVersionTemplate("iedriver {{.Version}}\n")

	rootCmd.AddCommand(
		getCmdVersion(gs),
		getCmdAlert(gs, acceptAlert),
		getCmdAlert(gs, dismissAlert),
	)

	c.cmd = rootCmd
	return c
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	err := c.setupLoggers(c.stopLoggersCh)
	if err != nil {
		return err
	}
	select {
	case <-c.loggersWg:
	default:
		c.loggerIsRemote = true
	}

	stdlog.SetOutput(c.globalState.logger.Writer())
	c.globalState.logger.Debugf("iedriver version: %s", versionString())
	return nil
}

func (c *rootCommand) execute() {
	ctx, cancel := context.WithCancel(c.globalState.ctx)
	c.globalState.ctx = ctx

	exitCode := -1
	defer func() {
		cancel()
		c.stopLoggers()
		c.globalState.osExit(exitCode)
	}()

	err := c.cmd.Execute()
	if err == nil {
		exitCode = 0
		return
	}

	var ecerr errext.HasExitCode
	exitCode = int(exitcodes.GenericError)
	if errors.As(err, &ecerr) {
		exitCode = int(ecerr.ExitCode())
	}

	errText, fields := errext.Format(err)
	c.globalState.logger.WithFields(fields).Error(errText)
	if c.loggerIsRemote {
		c.globalState.fallbackLogger.WithFields(fields).Error(errText)
	}
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	gs := newGlobalState(context.Background())

	newRootCommand(gs).execute()
}

func (c *rootCommand) stopLoggers() {
	done := make(chan struct{})
	go func() {
		close(c.stopLoggersCh)
		if c.loggersWg != nil {
			<-c.loggersWg
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitLoggerCloseTimeout):
		c.globalState.fallbackLogger.Errorf("The logger didn't stop in %s", waitLoggerCloseTimeout)
	}
}

func rootCmdPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	// TODO: refactor this config, the default value management with pflag is
	// simply terrible... :/
	//
	// We need to use `gs.flags.<value>` both as the destination and as
	// the value here, since the config values could have already been set by
	// their respective environment variables. However, we then also have to
	// explicitly set the DefValue to the respective default value from
	// `gs.defaultFlags.<value>`, so that the `iedriver --help` message is
	// not messed up...

	flags.StringVar(&gs.flags.logOutput, "log-output", gs.flags.logOutput,
		"change the output for driver logs, possible values are stderr,stdout,none,file[=./path.fileformat]")
	flags.Lookup("log-output").DefValue = gs.defaultFlags.logOutput

	flags.StringVar(&gs.flags.logFormat, "log-format", gs.flags.logFormat, "log output format, possible values are text,json,raw")
	flags.Lookup("log-format").DefValue = gs.defaultFlags.logFormat

	flags.StringVarP(&gs.flags.configFilePath, "config", "c", gs.flags.configFilePath, "JSON config file")
	// And we also need to explicitly set the default value for the usage message here, so things
	// like `IEDRIVER_CONFIG="blah" iedriver -h` don't produce a weird usage message
	flags.Lookup("config").DefValue = gs.defaultFlags.configFilePath
	if err := cobra.MarkFlagFilename(flags, "config"); err != nil {
		panic(err)
	}

	flags.BoolVar(&gs.flags.noColor, "no-color", gs.flags.noColor, "disable colored output")
	flags.Lookup("no-color").DefValue = "false"

	flags.BoolVarP(&gs.flags.verbose, "verbose", "v", gs.defaultFlags.verbose, "enable verbose logging")
	flags.BoolVarP(&gs.flags.quiet, "quiet", "q", gs.defaultFlags.quiet, "disable the banner")
	return flags
}

// RawFormatter it does nothing with the message just prints it
type RawFormatter struct{}

// Format renders a single log entry
func (f RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// The returned channel will be closed when the logger has finished flushing
// and closing its output after stop is closed. It is closed right away if
// the logger writes synchronously.
func (c *rootCommand) setupLoggers(stop <-chan struct{}) error {
	gs := c.globalState
	c.loggersWg = make(chan struct{})
	close(c.loggersWg)

	if gs.flags.verbose {
		gs.logger.SetLevel(logrus.DebugLevel)
	}

	if gs.flags.noColor {
		gs.stdOut.Writer = colorable.NewNonColorable(gs.stdOut.Writer)
		gs.stdErr.Writer = colorable.NewNonColorable(gs.stdErr.Writer)
	}

	switch line := gs.flags.logOutput; {
	case line == "stderr":
		gs.logger.SetOutput(gs.stdErr)
	case line == "stdout":
		gs.logger.SetOutput(gs.stdOut)
	case line == "none":
		gs.logger.SetOutput(io.Discard)
	case strings.HasPrefix(line, "file"):
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-stop
			cancel()
		}()
		hook, done, err := log.FileHookFromConfigLine(ctx, gs.fs, gs.fallbackLogger, line)
		if err != nil {
			cancel()
			return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
		c.loggersWg = make(chan struct{})
		go func() {
			<-done
			close(c.loggersWg)
		}()
		gs.logger.AddHook(hook)
		gs.logger.SetOutput(io.Discard)
	default:
		return errext.WithExitCodeIfNone(fmt.Errorf("unsupported log output '%s'", line), exitcodes.InvalidConfig)
	}

	switch gs.flags.logFormat {
	case "raw":
		gs.logger.SetFormatter(&RawFormatter{})
		gs.logger.Debug("Logger format: RAW")
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
		gs.logger.Debug("Logger format: JSON")
	default:
		gs.logger.SetFormatter(&logrus.TextFormatter{ForceColors: gs.stdErr.isTTY, DisableColors: gs.flags.noColor})
		gs.logger.Debug("Logger format: TEXT")
	}
	return nil
}

func banner(gs *globalState) string {
	text := strings.Join([]string{
		` _          _      _                `,
		`(_)___   __| |_ __(_)_   _____ _ __ `,
		`| / _ \ / _' | '__| \ \ / / _ \ '__|`,
		`| |  __/| (_| | |  | |\ V /  __/ |   `,
		`|_|\___| \__,_|_|  |_| \_/ \___|_|   `,
	}, "\n")
	if gs.flags.noColor || !gs.stdOut.isTTY {
		return text
	}
	c := color.New(color.FgCyan)
	c.EnableColor()
	return c.Sprint(text)
}
