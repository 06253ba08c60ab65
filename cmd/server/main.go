package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"commonfields/internal/api"
	"commonfields/internal/config"
	"commonfields/internal/dsl"
	"commonfields/internal/logger"
	"commonfields/internal/pg"
	"commonfields/internal/plugins"
	"commonfields/internal/store"
)

func main() {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return config.LoadWithPath("config.json", os.Args[1:]) },
			func(cfg config.Config) logger.Config {
				return logger.Config{Level: cfg.LogLevel, Service: "commonfields"}
			},
			plugins.Default,
			loadEntities,
			store.New,
			api.NewRouter,
		),
		logger.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(migrate, serveHTTP),
	).Run()
}

// migrate: без DBURL работаем только в памяти.
func migrate(lc fx.Lifecycle, cfg config.Config, entities map[string]*dsl.Entity, log *zap.Logger) error {
	if cfg.DBURL == "" {
		log.Info("no database configured, in-memory only")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := pg.Open(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})

	if !cfg.AutoMigrate {
		return nil
	}
	ddl, err := pg.GenerateDDL(entities)
	if err != nil {
		return err
	}
	if err := pg.ApplyDDL(ctx, db, ddl); err != nil {
		return err
	}
	log.Info("schema applied", zap.Int("entities", len(entities)))
	return nil
}

func serveHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server started", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
