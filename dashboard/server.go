// Package dashboard exposes the management HTTP API: reservation listing
// for the calendar view, meal-status updates for the kitchen panel, and
// table administration. Tables are managed only here; the chat side treats
// them as read-only.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
)

type Config struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	AllowOrigins []string      `envconfig:"ALLOW_ORIGINS" split_words:"true" default:"*"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	cfg  Config
	repo contractx.Repository
	http *http.Server
}

func New(cfg Config, repo contractx.Repository) (*Server, error) {
	if repo == nil {
		return nil, errors.New("dashboard: repository is required")
	}

	s := &Server{cfg: cfg, repo: repo}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/reservations", s.listReservations)
		api.GET("/reservations/:id", s.getReservation)
		api.DELETE("/reservations/:id", s.deleteReservation)
		api.PUT("/reservations/:id/meals", s.updateReservationMeals)

		api.GET("/tables", s.listTables)
		api.POST("/tables", s.createTable)
		api.PUT("/tables/:id", s.updateTable)
		api.DELETE("/tables/:id", s.deleteTable)
	}

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	log.Info().Str("addr", s.cfg.Addr).Msg("dashboard listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
