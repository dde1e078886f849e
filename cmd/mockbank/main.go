package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/gobank/internal/logging"
	"github.com/me/gobank/internal/mockbank"
)

func main() {
	addr := flag.String("addr", ":8091", "Listen address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	tokenTTL := flag.Duration("token-ttl", time.Hour, "Issued token lifetime (short values exercise the refresh path)")
	flag.Parse()

	logger := logging.NewLogger(logging.ParseLevel(*logLevel), *logFormat)

	bank := mockbank.NewServer(logger, mockbank.WithTokenTTL(*tokenTTL))
	httpServer := &http.Server{
		Addr:    *addr,
		Handler: bank.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock bank starting", "addr", *addr, "token_ttl", tokenTTL.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
