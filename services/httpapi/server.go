// Package httpapi exposes the node's status surface over HTTP: liveness,
// health, and a JSON snapshot of block-tree statistics. Grounded on the
// teacher's echo wiring (services/blockvalidation/Server.go's httpServer),
// trimmed to the handful of routes a status surface for this node needs.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the node's status HTTP endpoints.
type Server struct {
	echo   *echo.Echo
	store  blockchain.Store
	logger ulogger.Logger

	startTime time.Time
}

// New builds a Server backed by store.
func New(store blockchain.Store, logger ulogger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET},
	}))

	s := &Server{echo: e, store: store, logger: logger, startTime: time.Now()}

	e.GET("/alive", s.handleAlive)
	e.GET("/health", s.handleHealth)
	e.GET("/stats", s.handleStats)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start begins serving on addr. Blocks until the server stops; run it in
// its own goroutine.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleAlive(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("gophercoin node alive. uptime: %s\n", time.Since(s.startTime)))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type statsResponse struct {
	Tip              string  `json:"tip"`
	BlockCount       int     `json:"blockCount"`
	AverageBlockSize float64 `json:"averageBlockSize"`
	BlockDelaysMs    []int64 `json:"blockDelaysMs"`
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, statsResponse{
		Tip:              s.store.Tip().String(),
		BlockCount:       s.store.BlockCount(),
		AverageBlockSize: s.store.AverageBlockSize(),
		BlockDelaysMs:    s.store.BlockDelaysMs(),
	})
}
