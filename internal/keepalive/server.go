package keepalive

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// HTTP сервер, который пингует хостинг чтобы процесс не усыпили.
// Заодно отдает метрики. К хранилищам не обращается
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func New(addr string, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Estou vivo!")
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Блокируется до отмены контекста, затем аккуратно гасит сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("keepalive server started", zap.String("addr", s.srv.Addr))

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return ctx.Err()
}
