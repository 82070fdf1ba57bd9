package main

import (
	"context"
	"log"

	"github.com/commoni/commoni/internal/buildinfo"
	"github.com/commoni/commoni/internal/server"
	"github.com/commoni/commoni/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(log.Writer())

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
