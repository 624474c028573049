package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-mail-gateway/gateway"
	"github.com/jrsteele09/go-mail-gateway/identity"
	"github.com/jrsteele09/go-mail-gateway/internal/config"
	"github.com/jrsteele09/go-mail-gateway/internal/metrics"
	"github.com/jrsteele09/go-mail-gateway/mail"
	"github.com/jrsteele09/go-mail-gateway/server"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

type serveOptions struct {
	port    string
	envFile string
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.apply(cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			return run()
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load before reading configuration")
	return cmd
}

// apply loads the env file and lets flags override the environment.
// An explicitly named env file must exist.
func (o serveOptions) apply(envFileRequired bool) error {
	if o.envFile != "" {
		if err := config.LoadEnvFile(o.envFile, envFileRequired); err != nil {
			return err
		}
	}
	if o.port != "" {
		if err := os.Setenv(config.PortEnvVar, o.port); err != nil {
			return fmt.Errorf("set %s: %w", config.PortEnvVar, err)
		}
	}
	return nil
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())
	warnInsecureDefaults(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := buildServer(ctx, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	returnError = shutdown(httpServer)
	log.Info().Msg("Server stopped")
	return returnError
}

// buildServer wires the session store, identity provider, mail client and
// metrics into the HTTP server. The session sweeper runs until ctx is done.
func buildServer(ctx context.Context, c config.Config) (*server.Server, error) {
	provider, err := identity.NewOIDCProvider(ctx, c)
	if err != nil {
		return nil, err
	}

	store := sessions.NewInMemoryRepo(c.GetMaxSessionAge())
	go store.StartSweeper(ctx, sweepInterval)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	metrics.RegisterSessionGauge(reg, store.Len)

	gw := gateway.New(
		store,
		provider,
		mail.Instrument(mail.GmailFactory(), m),
		mail.NewLister(c.GetMailPageSize(), c.GetMailHeaders()),
	)
	return server.New(c, server.Dependencies{
		Gateway:  gw,
		Metrics:  m,
		Gatherer: reg,
	})
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func warnInsecureDefaults(c config.Config) {
	if c.IsInsecureSessionSecret() {
		log.Warn().Msg("SESSION_SECRET is not set; using an insecure development secret")
	}
	if c.GetClientID() == "" || c.GetClientSecret() == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET is not set; logins will fail")
	}
	if !c.GetCookieSecure() && c.GetEnv() != "DEV" {
		log.Warn().Msg("COOKIE_SECURE is off outside DEV; session cookies will be sent over plain HTTP")
	}
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Msgf("Server listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
