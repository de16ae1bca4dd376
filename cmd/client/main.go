package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tubeboost/internal/buildinfo"
	"github.com/dmitrijs2005/tubeboost/internal/client/cli"
	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/config"
	"github.com/dmitrijs2005/tubeboost/internal/client/router"
	"github.com/dmitrijs2005/tubeboost/internal/client/services"
	"github.com/dmitrijs2005/tubeboost/internal/client/storage"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	baseURL, err := client.ResolveBaseURL(cfg.APIURL, cfg.Origin)
	if err != nil {
		log.Fatalf("%v", err)
	}

	headers := client.NewDefaults()
	api := client.NewRESTClient(baseURL, nil, headers, logger)

	session, err := services.NewSessionStore(ctx, api, db, headers, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	routes, err := router.New(router.DefaultRoutes(), logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cli.Deps{
		Session: session,
		Routes:  routes,
		Content: api,
		Orders:  services.NewOrderService(api, session, logger),
		DeviceCookie: func(ctx context.Context) (string, error) {
			return services.RegistrationCookie(ctx, db)
		},
		Log:     logger,
		Backend: api.BaseURL(),
	})

	logger.Info(ctx, "client started", "api", api.BaseURL())
	app.Run(ctx)
}
