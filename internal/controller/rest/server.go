// Package rest exposes the booking and slot services over HTTP.
package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func NewServer(
	addr string,
	jwtSecret string,
	bookings *service.BookingService,
	slots *service.SlotService,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = errorHandler(logger)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.GET("/health", health)

	v1 := e.Group("/v1", JWTAuth([]byte(jwtSecret)))

	bh := &bookingHandler{bookings: bookings}
	v1.POST("/bookings", bh.create)
	v1.GET("/bookings", bh.list)
	v1.GET("/bookings/:id", bh.get)
	v1.PATCH("/bookings/:id", bh.edit)
	v1.POST("/bookings/:id/confirm", bh.confirm)
	v1.POST("/bookings/:id/cancel", bh.cancel)
	v1.DELETE("/bookings/:id", bh.delete)

	sh := &slotHandler{slots: slots}
	v1.POST("/slots", sh.create)
	v1.GET("/slots", sh.list)
	v1.GET("/slots/:id", sh.get)
	v1.PATCH("/slots/:id", sh.update)

	return &Server{
		echo:   e,
		addr:   addr,
		logger: logger,
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.echo.Shutdown(ctx)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}
