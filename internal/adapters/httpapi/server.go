// Package httpapi is the thin request layer over the scheduler core. It
// mirrors the surface the engine's backend client expects: session CRUD,
// watch control, slot queries and the mail/calendar passthroughs.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

// Server hosts the HTTP request layer
type Server struct {
	echo       *echo.Echo
	service    *core.SchedulerService
	logger     *zap.Logger
	listenAddr string
}

// NewServer creates the request layer
func NewServer(service *core.SchedulerService, logger *zap.Logger, listenAddr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}

	e.POST("/start", s.handleStart)
	e.POST("/reset", s.handleReset)
	e.GET("/status", s.handleStatus)
	e.POST("/watch/start", s.handleWatchStart)
	e.POST("/watch/stop", s.handleWatchStop)
	e.GET("/recruiterSlots", s.handleRecruiterSlots)
	e.POST("/sendEmail", s.handleSendEmail)
	e.POST("/receiveEmail", s.handleReceiveEmail)
	e.POST("/createEvent", s.handleCreateEvent)

	return s
}

// Start begins serving in a background goroutine
func (s *Server) Start() error {
	s.logger.Info("HTTP API starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.echo.Start(s.listenAddr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router, used by tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
