package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"artnet2magichome/internal/bridge"
	"artnet2magichome/internal/logger"
	"github.com/gin-gonic/gin"
)

// Source provides the bridge view served by the API.
type Source interface {
	Snapshot() bridge.Snapshot
}

// Server exposes health and bridge state over HTTP.
type Server struct {
	addr   string
	source Source
	log    logger.Logger
	srv    *http.Server
}

// NewServer конструктор.
func NewServer(addr string, source Source, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := &Server{
		addr:   addr,
		source: source,
		log:    log,
	}
	r.srv = &http.Server{
		Addr:              addr,
		Handler:           r.newAPI(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return r
}

// Start serves in the background until ctx is done.
func (r *Server) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.srv.Shutdown(shutdownCtx)
	}()
	go func() {
		r.log.With(logger.Fields{"module": "status"}).Infof("status API on %s", r.addr)
		if err := r.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.With(logger.Fields{"module": "status"}).Errorf("status API stopped: %v", err)
		}
	}()
}

func (r *Server) newAPI() *gin.Engine {
	eng := gin.New()
	eng.Use(gin.Recovery())

	apiV1 := eng.Group("/v1")
	apiV1.GET("/health", r.health)
	apiV1.GET("/state", r.state)

	return eng
}

func (r *Server) health(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

func (r *Server) state(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, r.source.Snapshot())
}
