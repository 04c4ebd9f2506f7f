package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liuxd6825/iedriver/api"
	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/errext"
	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/trace"
)

const serverShutdownTimeout = 5 * time.Second

func (c *rootCommand) runServer(cmd *cobra.Command, _ []string) error {
	gs := c.globalState

	cliConf, err := getConfig(cmd.Flags())
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	conf, err := getConsolidatedConfig(gs, cliConf)
	if err != nil {
		return err
	}

	if !gs.flags.verbose {
		if level, err := logrus.ParseLevel(conf.LogLevel.String); err == nil {
			gs.logger.SetLevel(level)
		}
	}
	var filter *regexp.Regexp
	if conf.LogFilter.String != "" {
		filter = regexp.MustCompile(conf.LogFilter.String)
	}
	logger := log.New(gs.logger, filter)

	catalog := atoms.Default()
	if conf.AtomsDir.String != "" {
		catalog, err = atoms.Load(gs.fs, conf.AtomsDir.String)
		if err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
	}

	tp, err := trace.TracerProviderFromConfigLine(gs.ctx, conf.TracesOutput.String)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			gs.logger.WithError(err).Warn("couldn't flush the pending traces")
		}
	}()
	opts := conf.SessionOptions()
	opts.Tracer = trace.NewTracer(tp, map[string]string{"iedriver.version": versionString()})

	driver := &api.Driver{
		Registry: session.NewRegistry(),
		Finder:   common.NewElementFinder(catalog, logger),
		Options:  opts,
		Version:  versionString(),
		Logger:   logger,
	}

	listener, err := net.Listen("tcp", conf.Address.String)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.CannotStartServer)
	}
	srv := api.GetServer(conf.Address.String, driver)

	if !gs.flags.quiet {
		printToStdout(gs, fmt.Sprintf("\n%s\n\n", banner(gs)))
	}
	valueColor := color.New(color.Bold)
	if gs.flags.noColor || !gs.stdOut.isTTY {
		valueColor.DisableColor()
	}
	printToStdout(gs, fmt.Sprintf("listening on %s (atoms %s)\n",
		valueColor.Sprint("http://"+listener.Addr().String()), catalog.Version()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	sigC := make(chan os.Signal, 2)
	gs.signalNotify(sigC, os.Interrupt, syscall.SIGTERM)
	defer gs.signalStop(sigC)

	var result error
	select {
	case err := <-serveErr:
		driver.Registry.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errext.WithExitCodeIfNone(err, exitcodes.CannotStartServer)
	case sig := <-sigC:
		gs.logger.WithField("sig", sig).Debug("Stopping the server after signal")
		result = &errext.InterruptError{Reason: fmt.Sprintf("stopped by signal %s", sig)}
	case <-gs.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := api.Shutdown(ctx, srv, driver); err != nil {
		gs.logger.WithError(err).Warn("the server did not shut down cleanly")
	}
	return result
}
