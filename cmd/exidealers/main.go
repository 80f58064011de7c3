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

	"github.com/exidealers/marketplace/config"
	"github.com/exidealers/marketplace/internal/api"
	"github.com/exidealers/marketplace/internal/app"
	"github.com/exidealers/marketplace/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "develop"

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	sweep    = flag.Bool("sweep", false, "run the price alert sweep once, then exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		return
	}
	if *h {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database schema recreated")
		return
	}

	if *sweep {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		report, err := application.RunAlertSweep(ctx)
		if err != nil {
			zap.L().Error("price alert sweep failed", zap.Error(err))
			return
		}
		zap.L().Info("price alert sweep done",
			zap.Int("checked", report.Checked),
			zap.Int("notified", report.Notified),
			zap.Int("failed", report.Failed))
		return
	}

	webserver.Init(application)
	api.Init()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		err := webserver.Listen()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err == nil {
			err = errors.New("web server stopped")
		}
		return err
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
			zap.L().Info("shutting down")
		case <-ctx.Done():
		}
		return webserver.Shutdown()
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
