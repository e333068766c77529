package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/leadgrid/internal/buildinfo"
	"github.com/dmitrijs2005/leadgrid/internal/client/cli"
	"github.com/dmitrijs2005/leadgrid/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := cli.NewApp(ctx, cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	app.Run(ctx)

}
