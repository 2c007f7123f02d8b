// Package main runs a local stand-in for the registration service so the
// mutuals command can be tried end to end without network access.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/mutuals/internal/config"
	"github.com/phrazzld/mutuals/internal/platform/logger"
	"github.com/phrazzld/mutuals/internal/stubapi"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("stubserver", pflag.ExitOnError)
	addr := fs.String("addr", ":8089", "listen address")
	failFirst := fs.Int("fail-first", 0, "answer 503 to this many deliveries")
	omitUsers := fs.Bool("omit-users", false, "leave data.users out of the registration response")
	usersFile := fs.String("users", "", "JSON file holding the users array to serve")
	logLevel := fs.String("log-level", "info", "log level")
	_ = fs.Parse(os.Args[1:])

	l, err := logger.Setup(config.LogConfig{Level: *logLevel, Format: "text"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	opts := stubapi.Options{FailFirst: *failFirst, OmitUsers: *omitUsers}
	if *usersFile != "" {
		users, err := loadUsers(*usersFile)
		if err != nil {
			l.Error("failed to load users", "path", *usersFile, "error", err)
			os.Exit(1)
		}
		opts.Users = users
	}

	stub := stubapi.NewServer(opts, l)
	if err := serve(*addr, stub.Router(), l); err != nil {
		l.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadUsers(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users []json.RawMessage
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("users file must hold a JSON array: %w", err)
	}
	return users, nil
}

// serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(addr string, handler http.Handler, l *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.Info("stub server listening",
			"addr", addr,
			"register", stubapi.RegisterPath,
			"webhook", stubapi.WebhookPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		l.Info("shutting down stub server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
