package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/huddle/internal/infrastructure/configs"
	"github.com/hilthontt/huddle/internal/infrastructure/logging"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
	"github.com/hilthontt/huddle/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/huddle/internal/presentation/handler/health"
	relayHandler "github.com/hilthontt/huddle/internal/presentation/handler/relay"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Application struct {
	config        configs.Config
	relayHandler  *relayHandler.Handler
	healthHandler *healthHandler.Handler
	logger        *zap.SugaredLogger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	relayHandler *relayHandler.Handler,
	healthHandler *healthHandler.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		relayHandler:  relayHandler,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	// The relay endpoint holds connections open indefinitely, so it stays
	// outside the request timeout group.
	r.Get("/ws", app.relayHandler.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.loggerMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.Get("/rooms/{code}", app.relayHandler.GetRoomHandler)
			r.Get("/rooms/{code}/audit", app.relayHandler.GetRoomAuditHandler)

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})

		r.Handle("/metrics", metrics.Handler())
		r.Handle("/debug/vars", expvar.Handler())
	})

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      otelhttp.NewHandler(mux, "huddle-http"),
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught",
			logging.Args(logging.General, logging.Shutdown, map[logging.ExtraKey]any{
				"signal": s.String(),
			})...)

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started",
		logging.Args(logging.General, logging.Startup, map[logging.ExtraKey]any{
			"addr": srv.Addr,
		})...)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped",
		logging.Args(logging.General, logging.Shutdown, map[logging.ExtraKey]any{
			"addr": srv.Addr,
		})...)

	return nil
}
