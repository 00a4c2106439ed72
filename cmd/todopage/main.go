// main is the entry point for the todo page server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cirocosta/todopage/internal/api"
	"github.com/cirocosta/todopage/internal/config"
	"github.com/cirocosta/todopage/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = os.Args[1:]

	switch cmd {
	case "run":
		if err := runServer(); err != nil {
			fmt.Fprintf(os.Stderr, "todopage: %v\n", err)
			os.Exit(1)
		}
	case "openapi-gen":
		if err := generateOpenAPI(); err != nil {
			fmt.Fprintf(os.Stderr, "todopage: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Usage: todopage <command> [options]

Commands:
  run          Start the HTTP server
  openapi-gen  Generate OpenAPI documentation

Run 'todopage <command> -h' for more information on a command.
`)
}

func runServer() error {
	configPath := flag.String("config", "", "YAML config file; environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	// create context that listens for interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTP.Addr,
			"env", cfg.App.Env,
			"store", cfg.Store.Driver,
			"cache", cfg.Cache.Driver,
			"identity", cfg.Identity.Mode,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func generateOpenAPI() error {
	output := flag.String("o", "openapi.json", "Output file path")
	version := flag.String("version", "dev", "Version written in the document")
	cookieName := flag.String("cookie", "sb-access-token", "Session cookie name documented for cookie auth")
	flag.Parse()

	r := api.NewRouter(api.Deps{
		Service:    api.NewMockTodoService(),
		Version:    *version,
		CookieName: *cookieName,
	})

	data, err := r.OpenAPIJSON()
	if err != nil {
		return err
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("write openapi document to file '%s': %w", *output, err)
	}

	fmt.Printf("OpenAPI document generated at %s\n", *output)
	return nil
}
