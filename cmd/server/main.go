package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/identity/mojang"
	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/jrsteele09/mc-auth/metrics"
	"github.com/jrsteele09/mc-auth/otp"
	"github.com/jrsteele09/mc-auth/server"
	"github.com/jrsteele09/mc-auth/store/sqlstore"
	"github.com/jrsteele09/mc-auth/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlstore.Open(ctx, c, log.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	var recorder metrics.Recorder = metrics.NewNoop()
	var gatherer prometheus.Gatherer
	if c.GetMetricsEnabled() {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.New(registry)
		gatherer = registry
	}

	generator := token.NewGenerator(
		token.WithPrefix(token.Access, c.GetAccessTokenPrefix()),
		token.WithPrefix(token.Exchange, c.GetExchangeTokenPrefix()),
	)
	lookup := mojang.NewClient(
		mojang.WithBaseURLs(c.GetMojangAPIURL(), c.GetMojangSessionURL()),
		mojang.WithUserAgent(c.GetUserAgent()),
		mojang.WithTimeout(c.GetIdentityTimeout()),
	)
	appStore := sqlstore.NewAppStore(db)
	otpStore := sqlstore.NewOTPStore(db)

	grantService, err := auth.NewGrantService(auth.Repos{
		Apps:     appStore,
		Grants:   sqlstore.NewGrantStore(db),
		OTPs:     otpStore,
		Accounts: sqlstore.NewAccountStore(db),
	}, generator, lookup,
		auth.WithOAuthConfig(c),
		auth.WithLogger(log.Logger),
		auth.WithMetrics(recorder),
	)
	if err != nil {
		return err
	}
	appService, err := apps.NewService(appStore, generator, otp.NewVerifier(otpStore, otp.WithGenerator(generator)))
	if err != nil {
		return err
	}

	handler, err := server.New(c, server.Deps{
		Grants:   grantService,
		Apps:     appService,
		DB:       db,
		Metrics:  recorder,
		Gatherer: gatherer,
	})
	if err != nil {
		return err
	}

	go reap(ctx, grantService, c.GetReaperInterval())

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

// loadConfig reads the environment. Outside of production a missing session
// secret is replaced by a random one, which logs everybody out on restart.
func loadConfig() (config.Config, error) {
	c, err := config.New()
	if err != nil {
		return nil, err
	}
	if len(c.GetSessionSecret()) > 0 || c.GetEnv() != "DEV" {
		return c, nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	if err := os.Setenv("SESSION_SECRET", hex.EncodeToString(secret)); err != nil {
		return nil, err
	}
	log.Warn().Msg("SESSION_SECRET not set, using a random secret")
	return config.New()
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func reap(ctx context.Context, gs *auth.GrantService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := gs.Reap(ctx)
			if err != nil {
				log.Error().Err(err).Msg("reaper failed")
				continue
			}
			log.Debug().Int64("grants", res.Grants).Int64("otps", res.OTPs).Msg("reaped")
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
