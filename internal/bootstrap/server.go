package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	httpadapter "github.com/lerianstudio/eventledger/internal/adapters/http"
)

// Server wraps the Fiber app the Service exposes over HTTP.
type Server struct {
	app           *fiber.App
	serverAddress string
	svc           *Service
}

// NewServer builds the HTTP server for svc.
func NewServer(svc *Service) *Server {
	app := httpadapter.NewRouter(httpadapter.Deps{
		Registry:   svc.Registry,
		Dispatcher: svc.Dispatcher,
		Hub:        svc.Hub,
		Authn:      svc.Authn,
		JWT:        svc.JWT,
		Gatherer:   svc.Gatherer,
		Logger:     svc.Logger,
	})

	return &Server{app: app, serverAddress: svc.Config.ServerAddress, svc: svc}
}

// Run starts the server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func (s *Server) Run() error {
	go func() {
		if err := s.app.Listen(s.serverAddress); err != nil {
			s.svc.Logger.Errorf("http server stopped: %v", err)
		}
	}()

	s.svc.Logger.Infof("listening on %s", s.serverAddress)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.svc.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.app.ShutdownWithContext(ctx)
}
