package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/grovetools/tabpresence/config"
	"github.com/grovetools/tabpresence/internal/browser"
	"github.com/grovetools/tabpresence/internal/daemon/engine"
	"github.com/grovetools/tabpresence/internal/daemon/pidfile"
	"github.com/grovetools/tabpresence/internal/daemon/server"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/internal/daemon/watcher"
	"github.com/grovetools/tabpresence/internal/discord"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// NewRunCmd returns the foreground daemon command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the presence daemon in the foreground",
		Long: `Poll the browser's active tab and mirror it to Discord Rich Presence.

The Discord application id is read from DISCORD_CLIENT_ID (a .env file in
the working directory is loaded first) or client_id in tabpresence.yml.
Presence is cleared on SIGINT or SIGTERM.

Examples:
  # Safari with ./sites.json
  tabpresence run

  # Chrome over the DevTools protocol, polling every second
  tabpresence run --browser cdp --interval 1s`,
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}
	addSettingsFlags(cmd)
	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger("daemon")

	if cwd, err := os.Getwd(); err == nil {
		if err := config.LoadDotEnv(cwd); err != nil {
			return err
		}
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	clientID, err := settings.ResolveClientID()
	if err != nil {
		return err
	}
	interval, _ := settings.PollInterval()

	sitesPath, err := filepath.Abs(settings.Sites)
	if err != nil {
		return err
	}
	siteCfg, err := config.LoadSites(sitesPath)
	if err != nil {
		return err
	}

	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create state directories: %w", err)
	}
	pidPath := paths.PidFilePath()
	if err := pidfile.Acquire(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.Errorf("Failed to release pidfile: %v", err)
		}
	}()

	src, err := browser.New(browser.Kind(settings.Browser), browser.Options{CDPURL: settings.CDPURL})
	if err != nil {
		return err
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	sink := discord.NewClient(clientID, discord.Options{Logger: logging.NewLogger("discord")})
	defer sink.Close()

	st := store.New(src.Name(), sitesPath, interval)
	eng := engine.New(src, sink, siteCfg, st, logger, engine.Options{
		Interval:     interval,
		LogEveryTick: *settings.LogEveryTick,
	})
	srv := server.New(st, siteCfg, logging.NewLogger("server"))

	validate := func(path string) error {
		_, err := config.LoadSites(path)
		return err
	}
	w, err := watcher.New(sitesPath, 0, validate, st.RecordConfigChange, logging.NewLogger("watcher"))
	if err != nil {
		logger.WithError(err).Warn("Site config watcher disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"pid":      os.Getpid(),
		"browser":  src.Name(),
		"interval": interval.String(),
		"sites":    sitesPath,
	}).Info("Starting daemon")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eng.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(settings.Socket)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if w != nil {
		g.Go(func() error {
			w.Start(gctx)
			return nil
		})
	}

	runErr := g.Wait()
	if runErr == nil {
		logger.Info("Received stop signal, clearing presence")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Failed to clear presence on shutdown")
	}
	return runErr
}
