package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/projectkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/projectkeeper/internal/client/cli"
	"github.com/dmitrijs2005/projectkeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
