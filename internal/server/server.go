// Package server assembles the HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/handler"
	"github.com/zizouhuweidi/trivia/internal/ratelimit"
	"github.com/zizouhuweidi/trivia/internal/service"
	"github.com/zizouhuweidi/trivia/internal/validation"
	"golang.org/x/time/rate"
)

const (
	apiPrefix = "/api"

	// Idle clients are dropped from the in-memory limiter after this long
	memoryStoreExpiry = 3 * time.Minute
)

var (
	allowHeaders = []string{echo.HeaderContentType, echo.HeaderAuthorization, "true"}
	allowMethods = []string{http.MethodGet, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions}
)

// New builds the echo instance serving the trivia API.
// rdb is optional; without it rate limits are kept in memory.
func New(cfg *config.Config, triviaService *service.TriviaService, rdb *redis.Client, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)
	e.Validator = validation.NewRequestValidator()

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      func(c echo.Context) bool { return !isAPI(c) },
		AllowOrigins: []string{"*"},
		AllowHeaders: allowHeaders,
		AllowMethods: allowMethods,
	}))

	// Routes
	api := e.Group(apiPrefix, stampAllowHeaders)
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: &failOpenStore{store: newLimiterStore(cfg.RateLimit, rdb), logger: logger},
		}))
	}
	handler.NewTriviaHandler(triviaService).Register(api)

	// Health check endpoint
	e.GET("/health", handler.Health)

	return e
}

// Serve runs e on addr until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func isAPI(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/")
}

// stampAllowHeaders advertises the CORS headers and methods on every API response, preflight or not.
func stampAllowHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowHeaders, strings.Join(allowHeaders, ","))
		h.Set(echo.HeaderAccessControlAllowMethods, strings.Join(allowMethods, ","))
		return next(c)
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}

func newLimiterStore(cfg config.RateLimitConfig, rdb *redis.Client) middleware.RateLimiterStore {
	if rdb != nil {
		return ratelimit.NewRedisStore(rdb, cfg.Burst, time.Second)
	}
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: memoryStoreExpiry,
	})
}

// failOpenStore lets requests through when the limit store is unavailable
type failOpenStore struct {
	store  middleware.RateLimiterStore
	logger *log.Logger
}

func (s *failOpenStore) Allow(identifier string) (bool, error) {
	allow, err := s.store.Allow(identifier)
	if err != nil {
		s.logger.Warn("rate limit store unavailable", "err", err)
		return true, nil
	}
	return allow, nil
}
