package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Diblo/csgo-league-bot/internal/httpapi"
	"github.com/Diblo/csgo-league-bot/internal/league"
	"github.com/Diblo/csgo-league-bot/internal/match"
	"github.com/Diblo/csgo-league-bot/internal/panel"
	"github.com/Diblo/csgo-league-bot/internal/store"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	addr := envOr("LISTEN_ADDR", ":8080")

	var cfgStore store.ConfigStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := store.OpenPostgres(dsn)
		if err != nil {
			log.Fatal("opening config store", zap.Error(err))
		}
		cfgStore = pg
	} else {
		log.Warn("DATABASE_URL not set, arena configuration will not persist")
		cfgStore = store.NewMemory()
	}

	api := league.NewClient(
		envOr("LEAGUE_API_URL", "http://localhost:3000/api"),
		os.Getenv("LEAGUE_API_KEY"),
		log.Named("league"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	panels := panel.NewHub(ctx, log.Named("panel"))
	coord := match.NewCoordinator(ctx, match.Deps{
		Config: cfgStore,
		Queue:  api,
		Scorer: api,
		Alloc:  api,
		Panels: panels,
		Log:    log.Named("match"),
	}, match.Options{})

	handler := httpapi.SetupRoutes(coord, cfgStore, panels, log.Named("http"))
	srv := &http.Server{Addr: addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		coord.Shutdown()
		panels.Shutdown()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
