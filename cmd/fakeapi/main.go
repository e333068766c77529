// Command fakeapi serves the in-memory leads backend for local runs of the CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/fakeapi"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
)

var companies = []string{"Acme", "Globex", "Initech", "Umbrella"}

func main() {
	addr := flag.String("a", "localhost:5000", "listen address")
	seed := flag.Int("seed", 50, "number of leads to create at startup")
	level := flag.String("l", "info", "log level")
	flag.Parse()

	logger := logging.New(*level, "text", os.Stderr)

	api := fakeapi.New()
	for i := 1; i <= *seed; i++ {
		company := companies[i%len(companies)]
		api.AddLead(models.LeadInput{
			FirstName: fmt.Sprintf("Lead%d", i),
			LastName:  "Example",
			Email:     fmt.Sprintf("lead%d@example.com", i),
			Company:   company,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	srv := &http.Server{Addr: *addr, Handler: api, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "fake backend listening", "addr", *addr, "leads", *seed)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "shutdown failed", "error", err)
		}
		logger.Info(ctx, "fake backend stopped")
	}
}
